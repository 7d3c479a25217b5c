package telegram

import (
	"context"
	"fmt"
)

// DocumentFetcher adapts the Telegram file API to the bot.Fetcher
// interface: it resolves an opaque file ID and streams the bytes to a
// destination path.
type DocumentFetcher struct {
	client *Client
}

func NewDocumentFetcher(client *Client) *DocumentFetcher {
	return &DocumentFetcher{client: client}
}

func (f *DocumentFetcher) FetchTo(ctx context.Context, remoteID, destPath string) error {
	file, err := f.client.GetFile(ctx, remoteID)
	if err != nil {
		return fmt.Errorf("resolving file handle: %w", err)
	}
	if file.FilePath == "" {
		return fmt.Errorf("telegram returned no file path for %s", remoteID)
	}
	return f.client.DownloadTo(ctx, file.FilePath, destPath)
}
