// Package session persists the one piece of client state that survives a
// restart: the session token and the role it belongs to. All workflow
// state is rebuilt from the server on the next start.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/openrla/rlaclient/internal/model"
)

const fileName = "session.json"

// Store reads and writes the persisted session under a state directory.
type Store struct {
	dir string
}

// NewStore creates the state directory if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("session state directory is required")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, fileName)
}

// Save writes the session atomically with owner-only permissions.
func (s *Store) Save(sess model.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path())
}

// Load returns the persisted session, or an inactive zero session when
// none exists.
func (s *Store) Load() (model.Session, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return model.Session{}, nil
		}
		return model.Session{}, err
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A corrupt session file is discarded, not fatal: the operator
		// simply logs in again.
		_ = os.Remove(s.path())
		return model.Session{}, nil
	}
	return sess, nil
}

// Clear removes the persisted session. Called on logout and on the
// NOT_AUTHORIZED signal.
func (s *Store) Clear() error {
	err := os.Remove(s.path())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
