package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"lexibot/internal/bot"
)

// testClient points a Client at a local test server, preserving the
// /bot<token> prefix the real API uses.
func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("TEST-TOKEN", bot.NewNopLogger())
	c.baseURL = srv.URL + "/botTEST-TOKEN"
	return c
}

func TestClient_GetMe(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTEST-TOKEN/getMe" {
			t.Errorf("path = %q, want /botTEST-TOKEN/getMe", r.URL.Path)
		}
		io.WriteString(w, `{"ok": true, "result": {"id": 99, "username": "LexiconTrackBot"}}`)
	}))

	user, err := c.GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe() error = %v", err)
	}
	if user.ID != 99 || user.Username != "LexiconTrackBot" {
		t.Errorf("user = %+v, want ID 99 / LexiconTrackBot", user)
	}
}

func TestClient_GetMe_APIError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"ok": false, "description": "Unauthorized"}`)
	}))

	if _, err := c.GetMe(context.Background()); err == nil {
		t.Fatal("GetMe() expected error for ok=false response")
	}
}

func TestClient_GetUpdates(t *testing.T) {
	var gotQuery string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `{"ok": true, "result": [
			{"update_id": 10, "message": {"message_id": 1, "from": {"id": 42}, "chat": {"id": 100}, "text": "hi"}},
			{"update_id": 11}
		]}`)
	}))

	updates, err := c.GetUpdates(context.Background(), 10, 30)
	if err != nil {
		t.Fatalf("GetUpdates() error = %v", err)
	}

	if gotQuery != "offset=10&timeout=30" {
		t.Errorf("query = %q, want offset=10&timeout=30", gotQuery)
	}
	if len(updates) != 2 {
		t.Fatalf("updates = %d, want 2", len(updates))
	}
	if updates[0].Message == nil || updates[0].Message.Text != "hi" {
		t.Errorf("first update = %+v, want text message", updates[0])
	}
}

func TestClient_SendMessage(t *testing.T) {
	var gotBody map[string]any
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		io.WriteString(w, `{"ok": true, "result": {}}`)
	}))

	if err := c.SendMessage(context.Background(), 100, "hello"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if got := gotBody["chat_id"].(float64); got != 100 {
		t.Errorf("chat_id = %v, want 100", got)
	}
	if got := gotBody["text"]; got != "hello" {
		t.Errorf("text = %q, want hello", got)
	}
}

func TestClient_GetFile(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("file_id"); got != "file-abc" {
			t.Errorf("file_id = %q, want file-abc", got)
		}
		io.WriteString(w, `{"ok": true, "result": {"file_id": "file-abc", "file_path": "music/file_1.mp3"}}`)
	}))

	file, err := c.GetFile(context.Background(), "file-abc")
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
	if file.FilePath != "music/file_1.mp3" {
		t.Errorf("file path = %q, want music/file_1.mp3", file.FilePath)
	}
}

func TestClient_DownloadTo(t *testing.T) {
	const content = "mp3 bytes"
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Downloads use the /file/bot<token>/ prefix, not the API prefix.
		if r.URL.Path != "/file/botTEST-TOKEN/music/file_1.mp3" {
			t.Errorf("path = %q, want /file/botTEST-TOKEN/music/file_1.mp3", r.URL.Path)
		}
		io.WriteString(w, content)
	}))

	dest := filepath.Join(t.TempDir(), "song.mp3")
	if err := c.DownloadTo(context.Background(), "music/file_1.mp3", dest); err != nil {
		t.Fatalf("DownloadTo() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(got) != content {
		t.Errorf("file content = %q, want %q", got, content)
	}
}

func TestClient_DownloadTo_NotFound(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	dest := filepath.Join(t.TempDir(), "song.mp3")
	if err := c.DownloadTo(context.Background(), "music/gone.mp3", dest); err == nil {
		t.Fatal("DownloadTo() expected error for 404 response")
	}
}

func TestDocumentFetcher_FetchTo(t *testing.T) {
	t.Run("resolves then downloads", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/botTEST-TOKEN/getFile", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"ok": true, "result": {"file_id": "f", "file_path": "music/f.mp3"}}`)
		})
		mux.HandleFunc("/file/botTEST-TOKEN/music/f.mp3", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "bytes")
		})
		c := testClient(t, mux)

		dest := filepath.Join(t.TempDir(), "out.mp3")
		if err := NewDocumentFetcher(c).FetchTo(context.Background(), "f", dest); err != nil {
			t.Fatalf("FetchTo() error = %v", err)
		}
		if _, err := os.Stat(dest); err != nil {
			t.Errorf("downloaded file missing: %v", err)
		}
	})

	t.Run("empty file path is an error", func(t *testing.T) {
		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"ok": true, "result": {"file_id": "f"}}`)
		}))

		dest := filepath.Join(t.TempDir(), "out.mp3")
		if err := NewDocumentFetcher(c).FetchTo(context.Background(), "f", dest); err == nil {
			t.Fatal("FetchTo() expected error for missing file path")
		}
	})
}

func TestMessageFromUpdate(t *testing.T) {
	t.Run("text message", func(t *testing.T) {
		u := Update{UpdateID: 1, Message: &Message{
			From: &User{ID: 42},
			Chat: Chat{ID: 100},
			Text: "/start",
		}}

		msg, ok := MessageFromUpdate(u)
		if !ok {
			t.Fatal("MessageFromUpdate() = false, want true")
		}
		if msg.SenderID != 42 || msg.ChatID != 100 || msg.Text != "/start" {
			t.Errorf("message = %+v", msg)
		}
		if msg.File != nil {
			t.Error("text message carries a file")
		}
	})

	t.Run("document attachment", func(t *testing.T) {
		u := Update{UpdateID: 2, Message: &Message{
			From:     &User{ID: 42},
			Chat:     Chat{ID: 100},
			Document: &Document{FileID: "f1", FileName: "song.mp3", MIMEType: "audio/mpeg", FileSize: 2048},
		}}

		msg, ok := MessageFromUpdate(u)
		if !ok {
			t.Fatal("MessageFromUpdate() = false, want true")
		}
		if msg.File == nil {
			t.Fatal("document message has no file")
		}
		if msg.File.RemoteID != "f1" || msg.File.Name != "song.mp3" || msg.File.Size != 2048 {
			t.Errorf("file = %+v", msg.File)
		}
	})

	t.Run("audio attachment carries title", func(t *testing.T) {
		u := Update{UpdateID: 3, Message: &Message{
			From:  &User{ID: 42},
			Chat:  Chat{ID: 100},
			Audio: &Audio{FileID: "f2", Title: "Some Song", MIMEType: "audio/mpeg"},
		}}

		msg, ok := MessageFromUpdate(u)
		if !ok {
			t.Fatal("MessageFromUpdate() = false, want true")
		}
		if msg.File == nil || msg.File.Title != "Some Song" {
			t.Errorf("file = %+v, want audio title", msg.File)
		}
	})

	t.Run("update without message is skipped", func(t *testing.T) {
		if _, ok := MessageFromUpdate(Update{UpdateID: 4}); ok {
			t.Error("MessageFromUpdate() = true for empty update")
		}
	})

	t.Run("message without sender is skipped", func(t *testing.T) {
		u := Update{UpdateID: 5, Message: &Message{Chat: Chat{ID: 100}, Text: "x"}}
		if _, ok := MessageFromUpdate(u); ok {
			t.Error("MessageFromUpdate() = true for message without sender")
		}
	})
}
