package testutil

import (
	"context"

	"lexibot/internal/bot"
)

// MockLibrary is an in-memory bot.LibraryClient.
type MockLibrary struct {
	Track     bot.Track
	Err       error
	Reachable bool

	AddCalls   []string
	ProbeCalls int

	// BaseURLs records the URL each factory-built client was bound to.
	BaseURLs []string
}

func NewMockLibrary(track bot.Track) *MockLibrary {
	return &MockLibrary{Track: track, Reachable: true}
}

func (l *MockLibrary) AddTrack(_ context.Context, path string) (bot.Track, error) {
	l.AddCalls = append(l.AddCalls, path)
	if l.Err != nil {
		return bot.Track{}, l.Err
	}
	return l.Track, nil
}

func (l *MockLibrary) TestConnection(_ context.Context) bool {
	l.ProbeCalls++
	return l.Reachable
}

// Factory returns a bot.LibraryFactory that hands out this mock and
// records the base URL it was requested for.
func (l *MockLibrary) Factory() bot.LibraryFactory {
	return func(baseURL string) bot.LibraryClient {
		l.BaseURLs = append(l.BaseURLs, baseURL)
		return l
	}
}
