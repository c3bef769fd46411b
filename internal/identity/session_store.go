package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SessionStore persists the current session token between CLI invocations.
type SessionStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileSessionStore keeps the token in a JSON file readable only by the user.
type FileSessionStore struct {
	path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

func (s *FileSessionStore) Path() string { return s.path }

type sessionFile struct {
	Token string `json:"token"`
}

// Load returns "" when no session is stored.
func (s *FileSessionStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading session file: %w", err)
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("decoding session file: %w", err)
	}
	return f.Token, nil
}

// Save replaces the stored token atomically.
func (s *FileSessionStore) Save(token string) error {
	data, err := json.Marshal(sessionFile{Token: token})
	if err != nil {
		return fmt.Errorf("encoding session file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing session file: %w", err)
	}
	return nil
}

func (s *FileSessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// MemorySessionStore keeps the token in process memory.
type MemorySessionStore struct {
	token string
}

func (s *MemorySessionStore) Load() (string, error) { return s.token, nil }

func (s *MemorySessionStore) Save(token string) error {
	s.token = token
	return nil
}

func (s *MemorySessionStore) Clear() error {
	s.token = ""
	return nil
}
