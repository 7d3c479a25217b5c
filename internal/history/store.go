// Package history persists a record of completed downloads in SQLite.
package history

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lexibot/internal/bot"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Entry is one stored download record.
type Entry struct {
	ID           string
	FileName     string
	Path         string
	SizeBytes    int64
	MIMEType     string
	DownloadedAt string
	LibraryAdded bool
	TrackTitle   string
	TrackArtist  string
}

// Store implements the bot.HistoryStore interface on SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path and runs any
// pending migrations. path can be ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one completed download and returns its generated ID.
func (s *Store) Record(entry bot.HistoryEntry) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO downloads (id, file_name, path, size_bytes, mime_type, downloaded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, entry.FileName, entry.Path, entry.SizeBytes, entry.MIMEType,
		entry.DownloadedAt.UTC().Format("2006-01-02T15:04:05Z"),
	)
	if err != nil {
		return "", fmt.Errorf("recording download: %w", err)
	}
	return id, nil
}

// MarkLibraryResult updates a download record with the outcome of the
// library-ingestion call.
func (s *Store) MarkLibraryResult(id string, added bool, title, artist string) error {
	res, err := s.db.Exec(
		`UPDATE downloads SET library_added = ?, track_title = ?, track_artist = ? WHERE id = ?`,
		added, title, artist, id,
	)
	if err != nil {
		return fmt.Errorf("updating download record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no download record with id %s", id)
	}
	return nil
}

// ListRecent returns up to limit downloads, newest first.
func (s *Store) ListRecent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, file_name, path, size_bytes, mime_type, downloaded_at,
		        library_added, track_title, track_artist
		 FROM downloads ORDER BY downloaded_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing downloads: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.FileName, &e.Path, &e.SizeBytes, &e.MIMEType,
			&e.DownloadedAt, &e.LibraryAdded, &e.TrackTitle, &e.TrackArtist); err != nil {
			return nil, fmt.Errorf("scanning download row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating download rows: %w", err)
	}
	return entries, nil
}
