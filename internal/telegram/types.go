package telegram

import "lexibot/internal/bot"

// Update is one element of a getUpdates response.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an inbound Telegram message.
type Message struct {
	MessageID int64     `json:"message_id"`
	From      *User     `json:"from"`
	Chat      Chat      `json:"chat"`
	Text      string    `json:"text"`
	Document  *Document `json:"document"`
	Audio     *Audio    `json:"audio"`
}

// User identifies a Telegram account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// Document is a generic file attachment.
type Document struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	MIMEType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// Audio is an audio attachment, carrying track metadata when known.
type Audio struct {
	FileID    string `json:"file_id"`
	FileName  string `json:"file_name"`
	Title     string `json:"title"`
	Performer string `json:"performer"`
	MIMEType  string `json:"mime_type"`
	FileSize  int64  `json:"file_size"`
}

// File is a Telegram file object from the getFile API. FilePath is the
// server-side path used to build the download URL.
type File struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size,omitempty"`
}

// MessageFromUpdate converts an update into the transport-neutral message
// the pipeline consumes. Updates without a message payload report false.
func MessageFromUpdate(u Update) (bot.Message, bool) {
	if u.Message == nil || u.Message.From == nil {
		return bot.Message{}, false
	}

	msg := bot.Message{
		ChatID:   u.Message.Chat.ID,
		SenderID: u.Message.From.ID,
		Text:     u.Message.Text,
	}

	switch {
	case u.Message.Document != nil:
		d := u.Message.Document
		msg.File = &bot.InboundFile{
			RemoteID: d.FileID,
			Name:     d.FileName,
			Size:     d.FileSize,
			MIMEType: d.MIMEType,
		}
	case u.Message.Audio != nil:
		a := u.Message.Audio
		msg.File = &bot.InboundFile{
			RemoteID: a.FileID,
			Name:     a.FileName,
			Title:    a.Title,
			Size:     a.FileSize,
			MIMEType: a.MIMEType,
		}
	}
	return msg, true
}
