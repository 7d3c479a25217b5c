package testutil

import (
	"context"
	"os"
)

// FetchCall records one invocation of MockFetcher.FetchTo.
type FetchCall struct {
	RemoteID string
	DestPath string
}

// MockFetcher is an in-memory bot.Fetcher for tests. It writes Content to
// the destination path on success. When Err is set, it fails after
// optionally leaving a zero-byte placeholder behind (WritePlaceholder),
// mimicking a transfer that died after creating the file.
type MockFetcher struct {
	Content          []byte
	Err              error
	WritePlaceholder bool
	Calls            []FetchCall
}

func NewMockFetcher(content []byte) *MockFetcher {
	return &MockFetcher{Content: content}
}

func (f *MockFetcher) FetchTo(_ context.Context, remoteID, destPath string) error {
	f.Calls = append(f.Calls, FetchCall{RemoteID: remoteID, DestPath: destPath})

	if f.Err != nil {
		if f.WritePlaceholder {
			os.WriteFile(destPath, nil, 0644)
		}
		return f.Err
	}
	return os.WriteFile(destPath, f.Content, 0644)
}
