// Package telegram implements a minimal Telegram Bot API client: long
// polling, replies, and file downloads. Only the methods the bot needs
// are wired.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"lexibot/internal/bot"
)

const defaultAPIHost = "https://api.telegram.org"

// apiResponse is the envelope every Bot API call returns.
type apiResponse[T any] struct {
	Ok          bool   `json:"ok"`
	Result      T      `json:"result"`
	Description string `json:"description"`
}

// Client is a Telegram Bot API client bound to one bot token.
type Client struct {
	baseURL    string // e.g. https://api.telegram.org/bot<token>
	httpClient *http.Client
	logger     bot.Logger
}

// NewClient creates a client for the given bot token.
func NewClient(token string, logger bot.Logger) *Client {
	if logger == nil {
		logger = bot.NewNopLogger()
	}
	return &Client{
		baseURL: defaultAPIHost + "/bot" + token,
		// No client-level timeout: getUpdates long polls are bounded by
		// their context, and file downloads can legitimately be slow.
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// GetMe verifies the token and returns the bot's own account.
func (c *Client) GetMe(ctx context.Context) (User, error) {
	data, err := c.doGet(ctx, "getMe", nil)
	if err != nil {
		return User{}, fmt.Errorf("get me: %w", err)
	}
	var resp apiResponse[User]
	if err := json.Unmarshal(data, &resp); err != nil {
		return User{}, fmt.Errorf("get me: parse response: %w", err)
	}
	if !resp.Ok {
		return User{}, fmt.Errorf("get me: API error: %s", resp.Description)
	}
	return resp.Result, nil
}

// GetUpdates long-polls for new updates starting at offset. timeoutSec is
// the server-side poll window.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error) {
	params := url.Values{
		"offset":  {strconv.FormatInt(offset, 10)},
		"timeout": {strconv.Itoa(timeoutSec)},
	}
	data, err := c.doGet(ctx, "getUpdates", params)
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}

	var resp apiResponse[[]Update]
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("get updates: parse response: %w", err)
	}
	if !resp.Ok {
		return nil, fmt.Errorf("get updates: API error: %s", resp.Description)
	}
	return resp.Result, nil
}

// SendMessage sends a plain-text reply to a chat. It satisfies the
// bot.Messenger interface.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	data, err := c.doPost(ctx, "sendMessage", payload)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	var resp apiResponse[json.RawMessage]
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("send message: parse response: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("send message: API error: %s", resp.Description)
	}
	return nil
}

// GetFile resolves a file ID to a server-side file path.
func (c *Client) GetFile(ctx context.Context, fileID string) (File, error) {
	c.logger.Debug("telegram getFile", "file_id", fileID)

	params := url.Values{"file_id": {fileID}}
	data, err := c.doGet(ctx, "getFile", params)
	if err != nil {
		return File{}, fmt.Errorf("get file: %w", err)
	}

	var resp apiResponse[File]
	if err := json.Unmarshal(data, &resp); err != nil {
		return File{}, fmt.Errorf("get file: parse response: %w", err)
	}
	if !resp.Ok {
		return File{}, fmt.Errorf("get file: API error: %s", resp.Description)
	}
	return resp.Result, nil
}

// DownloadTo streams the file at filePath from Telegram servers to
// destPath on disk. The download URL uses /file/bot<token>/ — a different
// prefix from the API base URL; derived from baseURL to keep testability.
func (c *Client) DownloadTo(ctx context.Context, filePath, destPath string) error {
	fileURL := strings.Replace(c.baseURL, "/bot", "/file/bot", 1) + "/" + filePath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return fmt.Errorf("download file: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("download file: create destination: %w", err)
	}

	written, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("download file: write destination: %w", err)
	}

	c.logger.Debug("file downloaded", "path", destPath, "size", written)
	return nil
}

func (c *Client) doGet(ctx context.Context, method string, params url.Values) ([]byte, error) {
	u := c.baseURL + "/" + method
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) doPost(ctx context.Context, method string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}
