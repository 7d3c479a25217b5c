package testutil

import "lexibot/internal/config"

// MockConfigSaver counts save calls instead of touching disk.
type MockConfigSaver struct {
	Saves int
	Err   error
}

func NewMockConfigSaver() *MockConfigSaver { return &MockConfigSaver{} }

func (s *MockConfigSaver) Save(*config.Config) error {
	s.Saves++
	return s.Err
}
