package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/vakinha/checkout/internal/domain"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ErrInvalidSessionID is returned for ids unsafe to use as file names.
var ErrInvalidSessionID = errors.New("invalid session id")

// FileHandoffStore writes one JSON file per session under dir. Records are
// replaced by renaming a fully written temporary file, so readers never see
// a partial record.
type FileHandoffStore struct {
	dir string
}

func NewFileHandoffStore(dir string) *FileHandoffStore {
	return &FileHandoffStore{dir: dir}
}

func (s *FileHandoffStore) path(sessionID string) (string, error) {
	if !sessionIDPattern.MatchString(sessionID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	return filepath.Join(s.dir, sessionID+".json"), nil
}

func (s *FileHandoffStore) Save(_ context.Context, sessionID string, h domain.SessionHandoff) error {
	path, err := s.path(sessionID)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal handoff: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create handoff dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, sessionID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp handoff: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write handoff: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync handoff: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close handoff: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("commit handoff: %w", err)
	}
	return nil
}

func (s *FileHandoffStore) Load(_ context.Context, sessionID string) (*domain.SessionHandoff, error) {
	path, err := s.path(sessionID)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNoActiveCheckout
		}
		return nil, fmt.Errorf("read handoff: %w", err)
	}
	var h domain.SessionHandoff
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("decode handoff: %w", err)
	}
	return &h, nil
}

// Clear removes the session's record. A missing record is not an error.
func (s *FileHandoffStore) Clear(_ context.Context, sessionID string) error {
	path, err := s.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove handoff: %w", err)
	}
	return nil
}
