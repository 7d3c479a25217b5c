package bot

import (
	"context"
	"fmt"
	"strings"

	"lexibot/internal/config"
)

// setupState enumerates the steps of the configuration conversation.
type setupState int

const (
	setupAwaitingDirectory setupState = iota + 1
	setupAwaitingLibraryChoice
	setupAwaitingURL
)

// setupSession is the per-chat finite-state record for an in-progress
// setup conversation. Sessions are removed once setup completes.
type setupSession struct {
	state setupState
}

// beginSetup starts the configuration conversation for a chat. The first
// user to ever run setup becomes the administrator.
func (h *Handler) beginSetup(ctx context.Context, msg Message) error {
	if h.cfg.AdminUserID == 0 {
		h.cfg.AdminUserID = msg.SenderID
		h.saveConfig()
	}

	h.reply(ctx, msg.ChatID,
		"First, please provide the directory where you'd like to save your music files.\n"+
			"This directory must exist and be writable.\n\n"+
			"Example: /home/username/Music/Downloads")

	h.setups[msg.ChatID] = &setupSession{state: setupAwaitingDirectory}
	return nil
}

// handleSetupInput advances the setup conversation with one text reply.
func (h *Handler) handleSetupInput(ctx context.Context, msg Message) error {
	session := h.setups[msg.ChatID]
	if session == nil {
		return nil
	}

	switch session.state {
	case setupAwaitingDirectory:
		return h.setupDirectory(ctx, msg, session)
	case setupAwaitingLibraryChoice:
		return h.setupLibraryChoice(ctx, msg, session)
	case setupAwaitingURL:
		return h.setupLibraryURL(ctx, msg)
	default:
		delete(h.setups, msg.ChatID)
		return nil
	}
}

func (h *Handler) setupDirectory(ctx context.Context, msg Message, session *setupSession) error {
	dir := strings.TrimSpace(msg.Text)

	if !ValidateDirectory(dir) {
		h.reply(ctx, msg.ChatID,
			"❌ Invalid directory. Please provide a valid path that exists and is writable.\n"+
				"Example: /home/username/Music/Downloads")
		return nil
	}

	h.cfg.DownloadDir = dir
	h.saveConfig()

	h.reply(ctx, msg.ChatID, fmt.Sprintf(
		"✅ Download directory set to: %s\n\n"+
			"Next, would you like to enable Lexicon integration?\n"+
			"This will automatically add downloaded tracks to your Lexicon library.\n\n"+
			"Reply with 'yes' or 'no'", dir))

	session.state = setupAwaitingLibraryChoice
	return nil
}

func (h *Handler) setupLibraryChoice(ctx context.Context, msg Message, session *setupSession) error {
	switch strings.ToLower(strings.TrimSpace(msg.Text)) {
	case "yes", "y", "true", "1":
		h.cfg.LexiconEnabled = true
		h.saveConfig()
		h.reply(ctx, msg.ChatID, fmt.Sprintf(
			"✅ Lexicon integration enabled.\n\n"+
				"By default, I'll use the standard Lexicon API URL: %s\n"+
				"Would you like to use a different URL?\n\n"+
				"Reply with the new URL or 'no' to use the default", config.DefaultLexiconAPIURL))
		session.state = setupAwaitingURL
		return nil
	case "no", "n", "false", "0":
		h.cfg.LexiconEnabled = false
		h.saveConfig()
		h.reply(ctx, msg.ChatID,
			"✅ Lexicon integration disabled.\n\n"+
				"Setup complete! You can now send me MP3 files and I'll download them to your specified directory.\n"+
				"If you want to enable Lexicon integration later, just send /setup again.")
		delete(h.setups, msg.ChatID)
		return nil
	default:
		h.reply(ctx, msg.ChatID, "Please reply with 'yes' or 'no'.")
		return nil
	}
}

func (h *Handler) setupLibraryURL(ctx context.Context, msg Message) error {
	// The conversation ends after this step whether or not the probe
	// succeeds; the user can re-run /setup to try a different URL.
	defer delete(h.setups, msg.ChatID)

	answer := strings.TrimSpace(msg.Text)
	url := answer
	switch strings.ToLower(answer) {
	case "no", "n", "default":
		url = config.DefaultLexiconAPIURL
	}

	h.reply(ctx, msg.ChatID, "Testing Lexicon API connection...")

	if !h.newLibrary(url).TestConnection(ctx) {
		h.reply(ctx, msg.ChatID, fmt.Sprintf(
			"❌ Failed to connect to Lexicon API at %s\n\n"+
				"Please make sure Lexicon is running with the API enabled.\n"+
				"You can try again with /setup or continue without Lexicon integration.", url))
		return nil
	}

	h.cfg.LexiconAPIURL = url
	h.saveConfig()

	h.reply(ctx, msg.ChatID, fmt.Sprintf(
		"✅ Lexicon API connection successful!\n\n"+
			"URL: %s\n\n"+
			"Setup complete! You can now send me MP3 files and I'll download them to your "+
			"specified directory and add them to your Lexicon library.", url))
	return nil
}
