package bot_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lexibot/internal/bot"
	"lexibot/internal/config"
	"lexibot/internal/testutil"
)

const adminID int64 = 42

type handlerFixture struct {
	handler   *bot.Handler
	cfg       *config.Config
	fetcher   *testutil.MockFetcher
	library   *testutil.MockLibrary
	history   *testutil.MemoryHistory
	messenger *testutil.MockMessenger
	saver     *testutil.MockConfigSaver
}

func newHandlerFixture(t *testing.T, cfg *config.Config) *handlerFixture {
	t.Helper()

	f := &handlerFixture{
		cfg:       cfg,
		fetcher:   testutil.NewMockFetcher([]byte("mp3 bytes")),
		library:   testutil.NewMockLibrary(bot.Track{Title: "Test Title", Artist: "Test Artist", Succeeded: true}),
		history:   testutil.NewMemoryHistory(),
		messenger: testutil.NewMockMessenger(),
		saver:     testutil.NewMockConfigSaver(),
	}
	f.handler = bot.NewHandler(
		cfg,
		f.saver,
		f.fetcher,
		f.library.Factory(),
		f.history,
		f.messenger,
		nil,
		bot.NewNopLogger(),
		testutil.NewFixedClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)),
	)
	return f
}

func configuredConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		BotToken:      "123:token",
		AdminUserID:   adminID,
		DownloadDir:   t.TempDir(),
		LexiconAPIURL: config.DefaultLexiconAPIURL,
	}
}

func mp3Message(sender int64, name string) bot.Message {
	return bot.Message{
		ChatID:   100,
		SenderID: sender,
		File: &bot.InboundFile{
			RemoteID: "remote-1",
			Name:     name,
			Size:     2048,
			MIMEType: "audio/mpeg",
		},
	}
}

func TestHandler_HandleMessage_Document(t *testing.T) {
	ctx := context.Background()

	t.Run("unconfigured bot reports configuration error", func(t *testing.T) {
		f := newHandlerFixture(t, &config.Config{BotToken: "123:token"})

		f.handler.HandleMessage(ctx, mp3Message(adminID, "Song.mp3"))

		if !f.messenger.Contains("Configuration error") {
			t.Errorf("replies = %q, want configuration error", f.messenger.Texts())
		}
		if len(f.fetcher.Calls) != 0 {
			t.Error("fetcher was called for unconfigured bot")
		}
	})

	t.Run("non-admin sender is rejected before any activity", func(t *testing.T) {
		f := newHandlerFixture(t, configuredConfig(t))

		f.handler.HandleMessage(ctx, mp3Message(999, "Song.mp3"))

		if !f.messenger.Contains("Permission error") {
			t.Errorf("replies = %q, want permission error", f.messenger.Texts())
		}
		if len(f.fetcher.Calls) != 0 {
			t.Error("fetcher was called for non-admin sender")
		}
		if len(f.library.AddCalls) != 0 {
			t.Error("library was called for non-admin sender")
		}
		if len(f.history.Records) != 0 {
			t.Error("history was recorded for non-admin sender")
		}
	})

	t.Run("non-mp3 file gets a polite rejection", func(t *testing.T) {
		f := newHandlerFixture(t, configuredConfig(t))

		msg := mp3Message(adminID, "document.pdf")
		msg.File.MIMEType = "application/pdf"
		f.handler.HandleMessage(ctx, msg)

		if !f.messenger.Contains("Please send only MP3 files.") {
			t.Errorf("replies = %q, want MP3-only notice", f.messenger.Texts())
		}
		if len(f.fetcher.Calls) != 0 {
			t.Error("fetcher was called for non-MP3 file")
		}
	})

	t.Run("downloads with lexicon disabled, preserving name case", func(t *testing.T) {
		cfg := configuredConfig(t)
		f := newHandlerFixture(t, cfg)

		f.handler.HandleMessage(ctx, mp3Message(adminID, "Song.MP3"))

		dest := filepath.Join(cfg.DownloadDir, "Song.MP3")
		if _, err := os.Stat(dest); err != nil {
			t.Fatalf("downloaded file missing: %v", err)
		}
		if len(f.library.AddCalls) != 0 {
			t.Errorf("library called %d times with lexicon disabled, want 0", len(f.library.AddCalls))
		}
		if !f.messenger.Contains("Download complete") {
			t.Errorf("replies = %q, want download-complete notice", f.messenger.Texts())
		}
		if len(f.history.Records) != 1 {
			t.Fatalf("history records = %d, want 1", len(f.history.Records))
		}
		if got := f.history.Records[0].Entry.FileName; got != "Song.MP3" {
			t.Errorf("history file name = %q, want Song.MP3", got)
		}
	})

	t.Run("adds to lexicon when enabled", func(t *testing.T) {
		cfg := configuredConfig(t)
		cfg.LexiconEnabled = true
		f := newHandlerFixture(t, cfg)

		f.handler.HandleMessage(ctx, mp3Message(adminID, "Song.mp3"))

		if len(f.library.AddCalls) != 1 {
			t.Fatalf("library add calls = %d, want 1", len(f.library.AddCalls))
		}
		wantPath := filepath.Join(cfg.DownloadDir, "Song.mp3")
		if f.library.AddCalls[0] != wantPath {
			t.Errorf("library called with %q, want %q", f.library.AddCalls[0], wantPath)
		}
		if !f.messenger.Contains("Title: Test Title") || !f.messenger.Contains("Artist: Test Artist") {
			t.Errorf("replies = %q, want track metadata", f.messenger.Texts())
		}
		if got := f.library.BaseURLs; len(got) != 1 || got[0] != config.DefaultLexiconAPIURL {
			t.Errorf("library base URLs = %q, want [%q]", got, config.DefaultLexiconAPIURL)
		}
		if len(f.history.Records) != 1 || !f.history.Records[0].LibraryAdded {
			t.Errorf("history not marked with library result: %+v", f.history.Records)
		}
	})

	t.Run("lexicon failure keeps the downloaded file and says so", func(t *testing.T) {
		cfg := configuredConfig(t)
		cfg.LexiconEnabled = true
		f := newHandlerFixture(t, cfg)
		f.library.Err = errors.New("server exploded")

		f.handler.HandleMessage(ctx, mp3Message(adminID, "Song.mp3"))

		if !f.messenger.Contains("Lexicon error") {
			t.Errorf("replies = %q, want lexicon error", f.messenger.Texts())
		}
		if !f.messenger.Contains("downloaded but not added") {
			t.Errorf("replies = %q, want downloaded-but-not-added notice", f.messenger.Texts())
		}
		dest := filepath.Join(cfg.DownloadDir, "Song.mp3")
		if _, err := os.Stat(dest); err != nil {
			t.Errorf("downloaded file missing after lexicon failure: %v", err)
		}
	})

	t.Run("download failure reports download error", func(t *testing.T) {
		f := newHandlerFixture(t, configuredConfig(t))
		f.fetcher.Err = errors.New("timed out")

		f.handler.HandleMessage(ctx, mp3Message(adminID, "Song.mp3"))

		if !f.messenger.Contains("Download error") {
			t.Errorf("replies = %q, want download error", f.messenger.Texts())
		}
		if len(f.history.Records) != 0 {
			t.Error("failed download was recorded in history")
		}
	})
}

func TestHandler_HandleMessage_Commands(t *testing.T) {
	ctx := context.Background()

	t.Run("start on configured bot welcomes back", func(t *testing.T) {
		f := newHandlerFixture(t, configuredConfig(t))

		f.handler.HandleMessage(ctx, bot.Message{ChatID: 1, SenderID: adminID, Text: "/start"})

		if !f.messenger.Contains("Welcome back") {
			t.Errorf("replies = %q, want welcome back", f.messenger.Texts())
		}
	})

	t.Run("start on fresh bot begins setup and claims admin", func(t *testing.T) {
		cfg := &config.Config{BotToken: "123:token", LexiconAPIURL: config.DefaultLexiconAPIURL}
		f := newHandlerFixture(t, cfg)

		f.handler.HandleMessage(ctx, bot.Message{ChatID: 1, SenderID: 7, Text: "/start"})

		if cfg.AdminUserID != 7 {
			t.Errorf("admin ID = %d, want 7", cfg.AdminUserID)
		}
		if f.saver.Saves == 0 {
			t.Error("config was not saved after claiming admin")
		}
		if !f.messenger.Contains("provide the directory") {
			t.Errorf("replies = %q, want directory prompt", f.messenger.Texts())
		}
	})

	t.Run("setup from non-admin is rejected", func(t *testing.T) {
		f := newHandlerFixture(t, configuredConfig(t))

		f.handler.HandleMessage(ctx, bot.Message{ChatID: 1, SenderID: 999, Text: "/setup"})

		if !f.messenger.Contains("Permission error") {
			t.Errorf("replies = %q, want permission error", f.messenger.Texts())
		}
	})

	t.Run("help lists commands", func(t *testing.T) {
		f := newHandlerFixture(t, configuredConfig(t))

		f.handler.HandleMessage(ctx, bot.Message{ChatID: 1, SenderID: adminID, Text: "/help"})

		if !f.messenger.Contains("/setup") {
			t.Errorf("replies = %q, want help text", f.messenger.Texts())
		}
	})

	t.Run("command with bot mention is recognized", func(t *testing.T) {
		f := newHandlerFixture(t, configuredConfig(t))

		f.handler.HandleMessage(ctx, bot.Message{ChatID: 1, SenderID: adminID, Text: "/help@LexiconTrackBot"})

		if !f.messenger.Contains("/setup") {
			t.Errorf("replies = %q, want help text", f.messenger.Texts())
		}
	})
}
