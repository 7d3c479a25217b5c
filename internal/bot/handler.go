package bot

import (
	"context"
	"fmt"
	"strings"

	"lexibot/internal/config"
)

// Handler glues the admin check, file-type check, download manager, and
// library client together for each inbound message. It is the observable
// entry point of the pipeline: errors from any step are categorized here
// and turned into user-facing replies without aborting the host process.
type Handler struct {
	cfg        *config.Config
	saver      ConfigSaver
	fetcher    Fetcher
	newLibrary LibraryFactory
	history    HistoryStore
	messenger  Messenger
	metrics    Metrics
	logger     Logger
	clock      Clock

	setups map[int64]*setupSession
}

// NewHandler creates a fully wired Handler. history and metrics may be
// nil, in which case recording is skipped.
func NewHandler(cfg *config.Config, saver ConfigSaver, fetcher Fetcher, newLibrary LibraryFactory, history HistoryStore, messenger Messenger, metrics Metrics, logger Logger, clock Clock) *Handler {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Handler{
		cfg:        cfg,
		saver:      saver,
		fetcher:    fetcher,
		newLibrary: newLibrary,
		history:    history,
		messenger:  messenger,
		metrics:    metrics,
		logger:     logger,
		clock:      clock,
		setups:     make(map[int64]*setupSession),
	}
}

// HandleMessage processes one inbound message to completion. All pipeline
// errors are converted to replies here; the poll loop never sees them.
func (h *Handler) HandleMessage(ctx context.Context, msg Message) {
	if err := h.dispatch(ctx, msg); err != nil {
		h.respondError(ctx, msg.ChatID, err)
	}
}

func (h *Handler) dispatch(ctx context.Context, msg Message) error {
	if cmd := commandName(msg.Text); cmd != "" {
		return h.handleCommand(ctx, msg, cmd)
	}
	if msg.File != nil {
		return h.handleDocument(ctx, msg)
	}
	if h.setups[msg.ChatID] != nil {
		return h.handleSetupInput(ctx, msg)
	}
	return nil
}

// commandName extracts the command from a message text like "/start" or
// "/start@SomeBot". Non-command text yields "".
func commandName(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0][1:]
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd
}

func (h *Handler) handleCommand(ctx context.Context, msg Message, cmd string) error {
	switch cmd {
	case "start":
		if !h.cfg.IsConfigured() {
			h.reply(ctx, msg.ChatID,
				"Welcome to Lexicon Track Adder Bot!\n\n"+
					"Let's set up your bot. First, I need to know where you'd like to save your music files.")
			return h.beginSetup(ctx, msg)
		}
		h.reply(ctx, msg.ChatID, "Welcome back! Send me an MP3 file and I'll download it for you.")
		return nil
	case "setup":
		if h.cfg.AdminUserID != 0 && msg.SenderID != h.cfg.AdminUserID {
			return NewPermissionError("this bot is private and only accessible to the administrator")
		}
		h.reply(ctx, msg.ChatID, "Let's reconfigure your bot settings.")
		return h.beginSetup(ctx, msg)
	case "help":
		h.reply(ctx, msg.ChatID, helpText)
		return nil
	default:
		h.reply(ctx, msg.ChatID, "Unknown command. Send /help to see what I can do.")
		return nil
	}
}

const helpText = `Lexicon Track Adder Bot

/start - Start the bot or begin setup
/setup - Reconfigure the bot settings
/help - Show this help message

Send me an MP3 file and I'll download it to your configured folder.
If enabled, I'll also add it to your Lexicon library.`

// handleDocument runs the download-and-ingest pipeline for one attachment.
func (h *Handler) handleDocument(ctx context.Context, msg Message) error {
	if !h.cfg.IsConfigured() {
		return NewConfigurationError("bot is not configured yet, send /start to begin setup")
	}
	if msg.SenderID != h.cfg.AdminUserID {
		return NewPermissionError("this bot is private and only accessible to the administrator")
	}

	file := *msg.File
	if !IsAudioFile(file.Name, file.MIMEType) {
		h.reply(ctx, msg.ChatID, "Please send only MP3 files.")
		return nil
	}

	h.metrics.DownloadStarted()
	h.reply(ctx, msg.ChatID, fmt.Sprintf("📥 Starting download: %s\nSize: %s",
		file.DisplayName(), FormatFileSize(file.Size)))

	manager := NewDownloadManager(h.cfg.DownloadDir, h.logger)
	stored, err := manager.DownloadFile(ctx, file, h.fetcher)
	if err != nil {
		h.metrics.DownloadFailed()
		return err
	}
	h.metrics.DownloadCompleted()

	h.reply(ctx, msg.ChatID, fmt.Sprintf("✅ Download complete: %s\nSaved to: %s",
		file.DisplayName(), stored.Path))

	historyID := h.recordDownload(file, stored)

	if !h.cfg.LexiconEnabled {
		return nil
	}

	h.reply(ctx, msg.ChatID, "Adding to Lexicon library...")

	library := h.newLibrary(h.cfg.LexiconAPIURL)
	track, err := library.AddTrack(ctx, stored.Path)
	if err != nil {
		h.metrics.LibraryFailed()
		return WrapLibraryError(err, "failed to add track to Lexicon library")
	}
	h.metrics.LibraryAdded()
	h.markLibraryResult(historyID, track)

	h.reply(ctx, msg.ChatID, fmt.Sprintf("✅ Added to Lexicon library:\nTitle: %s\nArtist: %s",
		track.Title, track.Artist))
	return nil
}

// recordDownload persists a history row. History failures are logged
// only; they never fail the pipeline.
func (h *Handler) recordDownload(file InboundFile, stored StoredFile) string {
	if h.history == nil {
		return ""
	}
	id, err := h.history.Record(HistoryEntry{
		FileName:     file.DisplayName(),
		Path:         stored.Path,
		SizeBytes:    stored.SizeBytes,
		MIMEType:     file.MIMEType,
		DownloadedAt: h.clock.Now(),
	})
	if err != nil {
		h.logger.Error("failed to record download history", "path", stored.Path, "error", err)
		return ""
	}
	return id
}

func (h *Handler) markLibraryResult(historyID string, track Track) {
	if h.history == nil || historyID == "" {
		return
	}
	if err := h.history.MarkLibraryResult(historyID, true, track.Title, track.Artist); err != nil {
		h.logger.Error("failed to update download history", "id", historyID, "error", err)
	}
}

// respondError picks a distinct user message per error kind. Any
// uncategorized error is logged with full detail and reported generically.
func (h *Handler) respondError(ctx context.Context, chatID int64, err error) {
	var text string
	switch KindOf(err) {
	case KindConfiguration:
		text = fmt.Sprintf("⚙️ Configuration error: %v\nPlease run /setup to reconfigure the bot.", err)
	case KindDownload:
		text = fmt.Sprintf("📥 Download error: %v\nPlease check your internet connection and try again.", err)
	case KindLibrary:
		text = fmt.Sprintf("🎵 Lexicon error: %v\nThe file was downloaded but not added to your library.", err)
	case KindPermission:
		text = fmt.Sprintf("🔒 Permission error: %v", err)
	default:
		text = "❌ An unexpected error occurred.\nPlease try again or contact the administrator."
	}
	h.logger.Error("pipeline error", "kind", KindOf(err).String(), "error", err)
	h.reply(ctx, chatID, text)
}

// reply sends a user-facing message. Send failures are logged only: a
// broken reply channel must not abort the pipeline or the poll loop.
func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.messenger.SendMessage(ctx, chatID, text); err != nil {
		h.logger.Error("failed to send reply", "chat_id", chatID, "error", err)
	}
}

// saveConfig persists the current configuration. Best-effort: setup does
// not roll back earlier steps when a later save fails.
func (h *Handler) saveConfig() {
	if h.saver == nil {
		return
	}
	if err := h.saver.Save(h.cfg); err != nil {
		h.logger.Error("failed to save config", "error", err)
	}
}
