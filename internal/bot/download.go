package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DownloadManager materializes inbound files into a download directory
// with safe naming, collision handling, and cleanup on failure.
type DownloadManager struct {
	dir    string
	logger Logger
}

// NewDownloadManager creates a manager that writes into dir.
func NewDownloadManager(dir string, logger Logger) *DownloadManager {
	return &DownloadManager{dir: dir, logger: logger}
}

// DownloadFile resolves file to bytes on disk and returns the stored
// artifact. It either returns a StoredFile whose path exists with size
// greater than zero, or an error — never a success value with a missing
// file. Partial writes are removed on any failure.
func (m *DownloadManager) DownloadFile(ctx context.Context, file InboundFile, fetcher Fetcher) (StoredFile, error) {
	name := file.resolveName()
	if name == "" || file.RemoteID == "" {
		return StoredFile{}, NewDownloadError("invalid file information provided")
	}

	safeName := SanitizeFilename(name)
	destPath := m.resolveCollision(filepath.Join(m.dir, safeName))

	m.logger.Info("starting download", "name", safeName, "size", file.Size, "dest", destPath)

	if err := fetcher.FetchTo(ctx, file.RemoteID, destPath); err != nil {
		m.removePartial(destPath)
		return StoredFile{}, WrapDownloadError(err, "failed to download file")
	}

	info, err := os.Stat(destPath)
	if err != nil || info.Size() == 0 {
		m.removePartial(destPath)
		return StoredFile{}, NewDownloadError("file was not saved correctly")
	}

	m.logger.Info("download complete", "path", destPath, "size", info.Size())

	return StoredFile{
		Path:      destPath,
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

// resolveCollision returns the first unused path, suffixing the stem with
// _1, _2, ... when the destination already exists. The counter is scoped
// to this single operation.
func (m *DownloadManager) resolveCollision(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)

	candidate := path
	for n := 1; pathExists(candidate); n++ {
		candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
	return candidate
}

// removePartial deletes a partially written file. Deletion failures are
// logged only so they never mask the original error.
func (m *DownloadManager) removePartial(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		m.logger.Error("failed to remove partial download", "path", path, "error", err)
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
