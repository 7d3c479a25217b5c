package testutil

import (
	"fmt"

	"lexibot/internal/bot"
)

// HistoryRecord is one entry captured by MemoryHistory.
type HistoryRecord struct {
	ID           string
	Entry        bot.HistoryEntry
	LibraryAdded bool
	TrackTitle   string
	TrackArtist  string
}

// MemoryHistory is an in-memory bot.HistoryStore.
type MemoryHistory struct {
	Records []HistoryRecord
	Err     error
}

func NewMemoryHistory() *MemoryHistory { return &MemoryHistory{} }

func (h *MemoryHistory) Record(entry bot.HistoryEntry) (string, error) {
	if h.Err != nil {
		return "", h.Err
	}
	id := fmt.Sprintf("entry-%d", len(h.Records)+1)
	h.Records = append(h.Records, HistoryRecord{ID: id, Entry: entry})
	return id, nil
}

func (h *MemoryHistory) MarkLibraryResult(id string, added bool, title, artist string) error {
	for i := range h.Records {
		if h.Records[i].ID == id {
			h.Records[i].LibraryAdded = added
			h.Records[i].TrackTitle = title
			h.Records[i].TrackArtist = artist
			return nil
		}
	}
	return fmt.Errorf("no record with id %s", id)
}
