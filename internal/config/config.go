package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultLexiconAPIURL is the standard local Lexicon API endpoint.
const DefaultLexiconAPIURL = "http://localhost:48624/v1"

// DefaultLexiconIngestPath is the track-ingestion endpoint path. Some
// Lexicon deployments expose /track instead; the path is configurable
// rather than replicated inconsistently.
const DefaultLexiconIngestPath = "/tracks"

// Config is the flat configuration record for lexibot, persisted as JSON.
type Config struct {
	BotToken          string `json:"bot_token"`
	AdminUserID       int64  `json:"admin_user_id"`
	DownloadDir       string `json:"download_dir"`
	LexiconEnabled    bool   `json:"lexicon_enabled"`
	LexiconAPIURL     string `json:"lexicon_api_url"`
	LexiconIngestPath string `json:"lexicon_ingest_path,omitempty"`
	MetricsAddr       string `json:"metrics_addr,omitempty"`
	HistoryDB         string `json:"history_db,omitempty"`
}

// NewConfig creates a Config with default values. The bot token falls
// back to the TELEGRAM_BOT_TOKEN environment variable.
func NewConfig() *Config {
	return &Config{
		BotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		LexiconAPIURL: DefaultLexiconAPIURL,
	}
}

// IsConfigured reports whether the bot has everything it needs to run
// the download pipeline.
func (c *Config) IsConfigured() bool {
	return c.BotToken != "" && c.AdminUserID != 0 && c.DownloadDir != ""
}

// IngestPath returns the configured track-ingestion endpoint path.
func (c *Config) IngestPath() string {
	if c.LexiconIngestPath != "" {
		return c.LexiconIngestPath
	}
	return DefaultLexiconIngestPath
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Load reads a Config from the specified file path. A missing file is
// not an error: it yields a default Config so first-run setup can begin.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewConfig(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	if cfg.BotToken == "" {
		cfg.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if cfg.LexiconAPIURL == "" {
		cfg.LexiconAPIURL = DefaultLexiconAPIURL
	}
	return cfg, nil
}

// Save writes a Config to the specified file path, creating parent
// directories as needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the
// provided Config. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := Save(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// Store persists configuration to a fixed path. It satisfies the
// bot.ConfigSaver interface.
type Store struct {
	Path string
}

func (s *Store) Save(cfg *Config) error {
	return Save(s.Path, cfg)
}
