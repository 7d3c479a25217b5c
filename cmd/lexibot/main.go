package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"lexibot/internal/app"
	"lexibot/internal/bot"
	"lexibot/internal/config"
	"lexibot/internal/history"
	"lexibot/internal/lexicon"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Best effort: a missing .env file is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file from its default (or overridden)
// location, returning the config and the path it was read from.
func loadConfig() (*config.Config, map[string]string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.Load(defaults["config_path"])
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, defaults, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.NewApp(cfg, defaults["config_path"], defaults["log_dir"], defaults["history_db"])
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.Run(ctx)
}

var rootCmd = &cobra.Command{
	Use:   "lexibot",
	Short: "Telegram bot that saves audio files and adds them to a Lexicon library",
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the message-polling loop",
	RunE:  runServe,
}

// setup command flags
var (
	setupDownloadDir    string
	setupLexiconEnabled string
	setupLexiconURL     string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the bot from the command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}

		if !bot.ValidateDirectory(setupDownloadDir) {
			return fmt.Errorf("download directory %q does not exist or is not writable", setupDownloadDir)
		}
		cfg.DownloadDir = setupDownloadDir

		switch strings.ToLower(setupLexiconEnabled) {
		case "":
			// flag not given, leave as-is
		case "yes", "y", "true", "1":
			cfg.LexiconEnabled = true
		case "no", "n", "false", "0":
			cfg.LexiconEnabled = false
		default:
			return fmt.Errorf("--lexicon-enabled must be yes or no, got %q", setupLexiconEnabled)
		}

		if setupLexiconURL != "" {
			cfg.LexiconAPIURL = setupLexiconURL
		}

		if cfg.LexiconEnabled {
			client := lexicon.NewClient(cfg.LexiconAPIURL, cfg.IngestPath(), nil)
			if client.TestConnection(cmd.Context()) {
				fmt.Printf("Lexicon API reachable at %s\n", cfg.LexiconAPIURL)
			} else {
				fmt.Printf("Warning: could not reach Lexicon API at %s\n", cfg.LexiconAPIURL)
			}
		}

		if err := config.Save(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Printf("Configuration saved to %s\n", defaults["config_path"])
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig()
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Bot Token:       %s\n", redactToken(cfg.BotToken))
		fmt.Printf("Admin User ID:   %d\n", cfg.AdminUserID)
		fmt.Printf("Download Dir:    %s\n", cfg.DownloadDir)
		fmt.Printf("Lexicon Enabled: %t\n", cfg.LexiconEnabled)
		fmt.Printf("Lexicon API URL: %s\n", cfg.LexiconAPIURL)
		fmt.Printf("Ingest Path:     %s\n", cfg.IngestPath())
		if cfg.MetricsAddr != "" {
			fmt.Printf("Metrics Addr:    %s\n", cfg.MetricsAddr)
		}
		return nil
	},
}

// history command flags
var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent downloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}

		dbPath := cfg.HistoryDB
		if dbPath == "" {
			dbPath = defaults["history_db"]
		}

		store, err := history.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening history store: %w", err)
		}
		defer store.Close()

		entries, err := store.ListRecent(historyLimit)
		if err != nil {
			return fmt.Errorf("listing history: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No downloads recorded yet.")
			return nil
		}

		for _, e := range entries {
			line := fmt.Sprintf("%s  %s (%s)", e.DownloadedAt, e.FileName, bot.FormatFileSize(e.SizeBytes))
			if e.LibraryAdded {
				line += fmt.Sprintf("  [lexicon: %s - %s]", e.TrackArtist, e.TrackTitle)
			}
			fmt.Println(line)
		}
		return nil
	},
}

// redactToken keeps just enough of the token to identify the bot.
func redactToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if i := strings.Index(token, ":"); i > 0 {
		return token[:i] + ":***"
	}
	return "***"
}

func init() {
	setupCmd.Flags().StringVar(&setupDownloadDir, "download-dir", "", "directory where audio files are saved (required)")
	setupCmd.Flags().StringVar(&setupLexiconEnabled, "lexicon-enabled", "", "enable Lexicon integration (yes|no)")
	setupCmd.Flags().StringVar(&setupLexiconURL, "lexicon-url", "", "Lexicon API base URL")
	setupCmd.MarkFlagRequired("download-dir")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of entries to show")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
}
