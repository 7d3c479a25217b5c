package history_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lexibot/internal/bot"
	"lexibot/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func entryAt(name string, at time.Time) bot.HistoryEntry {
	return bot.HistoryEntry{
		FileName:     name,
		Path:         "/music/" + name,
		SizeBytes:    1024,
		MIMEType:     "audio/mpeg",
		DownloadedAt: at,
	}
}

func TestStore_Record(t *testing.T) {
	store := openStore(t)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := store.Record(entryAt("song.mp3", at))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if id == "" {
		t.Fatal("Record() returned empty ID")
	}

	entries, err := store.ListRecent(10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	got := entries[0]
	if got.ID != id {
		t.Errorf("ID = %q, want %q", got.ID, id)
	}
	if got.FileName != "song.mp3" {
		t.Errorf("file name = %q, want song.mp3", got.FileName)
	}
	if got.DownloadedAt != "2025-03-01T12:00:00Z" {
		t.Errorf("downloaded at = %q, want 2025-03-01T12:00:00Z", got.DownloadedAt)
	}
	if got.LibraryAdded {
		t.Error("fresh record already marked as library-added")
	}
}

func TestStore_MarkLibraryResult(t *testing.T) {
	store := openStore(t)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := store.Record(entryAt("song.mp3", at))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if err := store.MarkLibraryResult(id, true, "Title", "Artist"); err != nil {
		t.Fatalf("MarkLibraryResult() error = %v", err)
	}

	entries, err := store.ListRecent(10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	got := entries[0]
	if !got.LibraryAdded {
		t.Error("record not marked as library-added")
	}
	if got.TrackTitle != "Title" || got.TrackArtist != "Artist" {
		t.Errorf("track = %q/%q, want Title/Artist", got.TrackTitle, got.TrackArtist)
	}
}

func TestStore_MarkLibraryResult_UnknownID(t *testing.T) {
	store := openStore(t)

	err := store.MarkLibraryResult("no-such-id", true, "T", "A")
	if err == nil {
		t.Fatal("MarkLibraryResult() expected error for unknown ID")
	}
	if !strings.Contains(err.Error(), "no-such-id") {
		t.Errorf("error = %q, want the unknown ID in the message", err)
	}
}

func TestStore_ListRecent(t *testing.T) {
	store := openStore(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	names := []string{"first.mp3", "second.mp3", "third.mp3"}
	for i, name := range names {
		if _, err := store.Record(entryAt(name, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Record(%s) error = %v", name, err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		entries, err := store.ListRecent(10)
		if err != nil {
			t.Fatalf("ListRecent() error = %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("entries = %d, want 3", len(entries))
		}
		want := []string{"third.mp3", "second.mp3", "first.mp3"}
		for i := range want {
			if entries[i].FileName != want[i] {
				t.Errorf("entry %d = %q, want %q", i, entries[i].FileName, want[i])
			}
		}
	})

	t.Run("respects the limit", func(t *testing.T) {
		entries, err := store.ListRecent(2)
		if err != nil {
			t.Fatalf("ListRecent() error = %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("entries = %d, want 2", len(entries))
		}
		if entries[0].FileName != "third.mp3" {
			t.Errorf("first entry = %q, want third.mp3", entries[0].FileName)
		}
	})
}
