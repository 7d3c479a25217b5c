// Package app wires configuration into a running bot: transport, library
// client, history store, metrics, and the message-polling loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"lexibot/internal/bot"
	"lexibot/internal/config"
	"lexibot/internal/history"
	"lexibot/internal/lexicon"
	"lexibot/internal/metrics"
	"lexibot/internal/telegram"
)

// pollWindow is the server-side long-poll timeout for getUpdates. Each
// poll request is bounded by a slightly larger client-side deadline.
const (
	pollWindow     = 30 * time.Second
	pollDeadline   = 50 * time.Second
	pollRetryDelay = 3 * time.Second
)

// App is the application layer between the CLI and the bot handler. It
// constructs all dependencies from config and manages their lifecycle.
type App struct {
	cfg     *config.Config
	client  *telegram.Client
	handler *bot.Handler
	store   *history.Store
	rec     *metrics.Recorder
	logger  bot.Logger
	logFile *os.File
}

// NewApp creates a fully wired App from the given config. configPath is
// where setup-conversation changes are persisted; logDir and historyDB
// come from GetDefaults unless overridden by config. The caller must
// call Close when done.
func NewApp(cfg *config.Config, configPath, logDir, historyDB string) (*App, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("no bot token provided: set TELEGRAM_BOT_TOKEN or add bot_token to %s", configPath)
	}

	runID := uuid.New().String()[:8]
	slogger, logFile, err := newLogger(logDir, runID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	if cfg.HistoryDB != "" {
		historyDB = cfg.HistoryDB
	}
	store, err := history.Open(historyDB)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("opening history store: %w", err)
	}

	client := telegram.NewClient(cfg.BotToken, logger)
	fetcher := telegram.NewDocumentFetcher(client)
	rec := metrics.NewRecorder()

	newLibrary := func(baseURL string) bot.LibraryClient {
		return lexicon.NewClient(baseURL, cfg.IngestPath(), logger)
	}

	handler := bot.NewHandler(
		cfg,
		&config.Store{Path: configPath},
		fetcher,
		newLibrary,
		store,
		client,
		rec,
		logger,
		bot.RealClock{},
	)

	return &App{
		cfg:     cfg,
		client:  client,
		handler: handler,
		store:   store,
		rec:     rec,
		logger:  logger,
		logFile: logFile,
	}, nil
}

// Run starts the message-polling loop and blocks until ctx is canceled.
// Handler errors never abort the loop; polling errors are logged and
// retried after a short delay.
func (a *App) Run(ctx context.Context) error {
	me, err := a.client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("verifying bot token: %w", err)
	}
	a.logger.Info("bot started", "username", me.Username)

	a.serveMetrics(ctx)

	var offset int64
	for {
		updates, err := a.poll(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				a.logger.Info("bot stopping")
				return nil
			}
			a.logger.Error("polling failed", "error", err)
			select {
			case <-time.After(pollRetryDelay):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			msg, ok := telegram.MessageFromUpdate(update)
			if !ok {
				continue
			}
			a.handler.HandleMessage(ctx, msg)
		}
	}
}

func (a *App) poll(ctx context.Context, offset int64) ([]telegram.Update, error) {
	ctx, cancel := context.WithTimeout(ctx, pollDeadline)
	defer cancel()
	return a.client.GetUpdates(ctx, offset, int(pollWindow.Seconds()))
}

// serveMetrics exposes the Prometheus endpoint when metrics_addr is set.
func (a *App) serveMetrics(ctx context.Context) {
	if a.cfg.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.rec.Handler())
	srv := &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	go func() {
		a.logger.Info("metrics listening", "addr", a.cfg.MetricsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
}

// Close releases the history store and log file.
func (a *App) Close() error {
	var errs []error
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing history store: %w", err))
	}
	if err := a.logFile.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing log file: %w", err))
	}
	return errors.Join(errs...)
}
