package bot

import (
	"fmt"
	"os"
	"strings"
)

// invalidFilenameChars are replaced with underscores during sanitization.
const invalidFilenameChars = `<>:"/\|?*`

// SanitizeFilename makes a raw name safe for filesystem usage.
// Invalid characters become underscores, leading and trailing spaces and
// dots are stripped, and an empty result falls back to "unnamed_file".
func SanitizeFilename(raw string) string {
	sanitized := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidFilenameChars, r) {
			return '_'
		}
		return r
	}, raw)

	sanitized = strings.Trim(sanitized, " .")

	if sanitized == "" {
		return "unnamed_file"
	}
	return sanitized
}

// ValidateDirectory reports whether path is a writable directory,
// creating it first if it does not exist. The creation side effect is
// intentional first-run convenience.
func ValidateDirectory(path string) bool {
	if path == "" {
		return false
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			return false
		}
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}

	// Probe writability by creating and removing a temp file.
	f, err := os.CreateTemp(path, ".lexibot-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

// IsAudioFile reports whether a declared name or MIME type indicates an
// MP3 file. The extension check is case-insensitive.
func IsAudioFile(name, mimeType string) bool {
	if name != "" && strings.HasSuffix(strings.ToLower(name), ".mp3") {
		return true
	}
	return mimeType == "audio/mpeg"
}

var fileSizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatFileSize renders a byte count in a human-readable form.
func FormatFileSize(sizeBytes int64) string {
	if sizeBytes == 0 {
		return "0B"
	}

	size := float64(sizeBytes)
	i := 0
	for size >= 1024 && i < len(fileSizeUnits)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.1f%s", size, fileSizeUnits[i])
}
