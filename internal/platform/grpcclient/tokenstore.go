package grpcclient

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/and161185/factshare/internal/model"
)

// ErrNoToken is returned when there is no usable token (missing or expired).
var ErrNoToken = errors.New("no valid token (login required)")

// TokenStore persists the access token between runs.
type TokenStore interface {
	Load() (model.Tokens, error)
	Save(model.Tokens) error
	Clear() error
}

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// FileTokenStore keeps the token in <dir>/token.json with 0600 permissions.
type FileTokenStore struct {
	dir string
	now func() time.Time
}

// NewFileTokenStore returns a store rooted at dir (created on first save).
func NewFileTokenStore(dir string) *FileTokenStore {
	return &FileTokenStore{dir: dir, now: time.Now}
}

// Path returns the token file location.
func (s *FileTokenStore) Path() string { return filepath.Join(s.dir, "token.json") }

// Save writes the token, replacing any previous one.
func (s *FileTokenStore) Save(t model.Tokens) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(tokenFile{AccessToken: t.AccessToken, ExpiresAt: t.ExpiresAt}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path(), b, 0o600)
}

// Load reads the token; a missing, empty or expired token yields ErrNoToken.
func (s *FileTokenStore) Load() (model.Tokens, error) {
	b, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return model.Tokens{}, ErrNoToken
	}
	if err != nil {
		return model.Tokens{}, err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return model.Tokens{}, err
	}
	if tf.AccessToken == "" || s.now().After(tf.ExpiresAt) {
		return model.Tokens{}, ErrNoToken
	}
	return model.Tokens{AccessToken: tf.AccessToken, ExpiresAt: tf.ExpiresAt}, nil
}

// Clear removes the token file; a missing file is not an error.
func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryTokenStore keeps the token in memory only.
type MemoryTokenStore struct {
	mu  sync.Mutex
	tok model.Tokens
}

func (m *MemoryTokenStore) Load() (model.Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tok.AccessToken == "" || time.Now().After(m.tok.ExpiresAt) {
		return model.Tokens{}, ErrNoToken
	}
	return m.tok, nil
}

func (m *MemoryTokenStore) Save(t model.Tokens) error {
	m.mu.Lock()
	m.tok = t
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	m.tok = model.Tokens{}
	m.mu.Unlock()
	return nil
}
