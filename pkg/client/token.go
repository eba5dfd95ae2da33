package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TokenLifetime is how long a stored token is kept locally.
const TokenLifetime = 7 * 24 * time.Hour

// TokenStore keeps the bearer token between requests.
type TokenStore interface {
	Token() string
	Set(token string) error
	Clear() error
}

// MemoryStore is a TokenStore that lives for the process only.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear() error {
	return s.Set("")
}

type tokenFile struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileStore persists the token to a file with owner-only permissions.
// A token older than TokenLifetime is treated as absent.
type FileStore struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created on first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return ""
	}
	if !tf.ExpiresAt.IsZero() && !s.now().Before(tf.ExpiresAt) {
		return ""
	}
	return tf.Token
}

func (s *FileStore) Set(token string) error {
	if token == "" {
		return s.Clear()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.Marshal(tokenFile{Token: token, ExpiresAt: s.now().Add(TokenLifetime)})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
