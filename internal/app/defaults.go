package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment
// variables first. Environment variables:
//   - LEXIBOT_CONFIG_PATH: config file location (default: ~/.config/lexibot.json)
//   - LEXIBOT_HOME: base directory for lexibot data (default: ~/.local/share/lexibot)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"history_db":  filepath.Join(baseDir, "history.db"),
	}, nil
}

// getConfigPath returns the config file path, checking LEXIBOT_CONFIG_PATH
// first, then falling back to the default ~/.config/lexibot.json.
func getConfigPath() (string, error) {
	if path := os.Getenv("LEXIBOT_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "lexibot.json"), nil
}

// getBaseDir returns the base directory for lexibot data, checking
// LEXIBOT_HOME first, then falling back to the XDG default
// ~/.local/share/lexibot.
func getBaseDir() (string, error) {
	if path := os.Getenv("LEXIBOT_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "lexibot"), nil
}
