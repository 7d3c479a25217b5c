package testutil

import (
	"context"
	"strings"
)

// SentMessage records one reply sent through the MockMessenger.
type SentMessage struct {
	ChatID int64
	Text   string
}

// MockMessenger captures user-facing replies for assertions.
type MockMessenger struct {
	Sent []SentMessage
	Err  error
}

func NewMockMessenger() *MockMessenger { return &MockMessenger{} }

func (m *MockMessenger) SendMessage(_ context.Context, chatID int64, text string) error {
	m.Sent = append(m.Sent, SentMessage{ChatID: chatID, Text: text})
	return m.Err
}

// Texts returns just the message bodies, in send order.
func (m *MockMessenger) Texts() []string {
	texts := make([]string, len(m.Sent))
	for i, s := range m.Sent {
		texts[i] = s.Text
	}
	return texts
}

// Contains reports whether any sent message contains substr.
func (m *MockMessenger) Contains(substr string) bool {
	for _, s := range m.Sent {
		if strings.Contains(s.Text, substr) {
			return true
		}
	}
	return false
}

// Last returns the most recently sent text, or "" when nothing was sent.
func (m *MockMessenger) Last() string {
	if len(m.Sent) == 0 {
		return ""
	}
	return m.Sent[len(m.Sent)-1].Text
}
