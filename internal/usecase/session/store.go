package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store owns the session identifier shared by every backend call of this installation.
// The id survives restarts through a small file; LoadOrCreate must run once before use.
type Store struct {
	path   string
	logger *zap.Logger

	mu sync.RWMutex
	id string
}

func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
	}
}

// LoadOrCreate reads the persisted id, generating and saving a fresh one when none exists.
func (s *Store) LoadOrCreate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		if id := strings.TrimSpace(string(data)); id != "" {
			s.id = id
			s.logger.Debug("session loaded", zap.String("session_id", id))
			return id, nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("read session file: %w", err)
	}

	id := newID()
	if err := s.persist(id); err != nil {
		return "", err
	}
	s.id = id
	s.logger.Info("session created", zap.String("session_id", id))

	return id, nil
}

// ID returns the current id, or an empty string before LoadOrCreate.
func (s *Store) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.id
}

// Require returns the current id or ErrSessionUnavailable.
func (s *Store) Require() (string, error) {
	id := s.ID()
	if id == "" {
		return "", entity.ErrSessionUnavailable
	}
	return id, nil
}

// Set adopts an id issued by the backend. Identical or empty ids are ignored.
func (s *Store) Set(id string) error {
	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" || id == s.id {
		return nil
	}

	if err := s.persist(id); err != nil {
		return err
	}
	s.logger.Info("session rotated", zap.String("previous_session_id", s.id), zap.String("session_id", id))
	s.id = id

	return nil
}

// Reset replaces the id with a fresh one. Backend records of the old session are left alone.
func (s *Store) Reset() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := newID()
	if err := s.persist(id); err != nil {
		return "", err
	}
	s.logger.Info("session reset", zap.String("previous_session_id", s.id), zap.String("session_id", id))
	s.id = id

	return id, nil
}

func newID() string {
	return "session_" + uuid.NewString()
}

// persist writes through a temp file so a crash never leaves a truncated id behind.
func (s *Store) persist(id string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return fmt.Errorf("create session temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(id + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
