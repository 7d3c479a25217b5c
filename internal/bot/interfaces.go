package bot

import (
	"context"
	"time"

	"lexibot/internal/config"
)

// InboundFile is a transient descriptor for a message attachment.
// RemoteID is the opaque handle the fetcher resolves to bytes.
type InboundFile struct {
	RemoteID string
	Name     string
	Title    string
	Size     int64
	MIMEType string
}

// DisplayName returns the sanitized filename the download will use.
func (f InboundFile) DisplayName() string {
	return SanitizeFilename(f.resolveName())
}

// resolveName picks the declared name, or synthesizes one from whatever
// descriptive title metadata is available.
func (f InboundFile) resolveName() string {
	if f.Name != "" {
		return f.Name
	}
	title := f.Title
	if title == "" {
		title = "audio"
	}
	return title + ".mp3"
}

// StoredFile is the on-disk artifact produced by a completed download.
// The file at Path exists and SizeBytes is greater than zero.
type StoredFile struct {
	Path      string
	SizeBytes int64
	ModTime   time.Time
}

// Track is the normalized result of a library-ingestion call. Succeeded
// can be true even when Title and Artist are unknown: the service may
// confirm ingestion without returning metadata.
type Track struct {
	Title     string
	Artist    string
	Succeeded bool
}

// Message is a transport-neutral view of an inbound chat message.
type Message struct {
	ChatID   int64
	SenderID int64
	Text     string
	File     *InboundFile
}

// HistoryEntry describes one completed download for the history store.
type HistoryEntry struct {
	FileName     string
	Path         string
	SizeBytes    int64
	MIMEType     string
	DownloadedAt time.Time
}

// Fetcher resolves an opaque remote file handle to bytes at destPath.
type Fetcher interface {
	FetchTo(ctx context.Context, remoteID, destPath string) error
}

// Messenger sends user-facing replies to a chat.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// LibraryClient talks to the external music-library service.
type LibraryClient interface {
	AddTrack(ctx context.Context, path string) (Track, error)
	TestConnection(ctx context.Context) bool
}

// LibraryFactory builds a LibraryClient for a base URL. The handler
// constructs a client per operation so configuration changes made during
// setup take effect immediately.
type LibraryFactory func(baseURL string) LibraryClient

// HistoryStore records completed downloads.
type HistoryStore interface {
	Record(entry HistoryEntry) (string, error)
	MarkLibraryResult(id string, added bool, title, artist string) error
}

// ConfigSaver persists configuration updated during setup.
type ConfigSaver interface {
	Save(cfg *config.Config) error
}

// Metrics counts pipeline outcomes.
type Metrics interface {
	DownloadStarted()
	DownloadCompleted()
	DownloadFailed()
	LibraryAdded()
	LibraryFailed()
}

// NopMetrics discards all counts. Use in tests.
type NopMetrics struct{}

func (NopMetrics) DownloadStarted()   {}
func (NopMetrics) DownloadCompleted() {}
func (NopMetrics) DownloadFailed()    {}
func (NopMetrics) LibraryAdded()      {}
func (NopMetrics) LibraryFailed()     {}
