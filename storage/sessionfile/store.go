// Package sessionfile persists the CLI session as a JSON file readable by its owner only.
package sessionfile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/session"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

type Store struct {
	path string
}

var _ session.Store = (*Store)(nil)

func New(path string) *Store {
	return &Store{path: path}
}

// NewFromConfig stores the session at the configured path.
func NewFromConfig(conf *core.Config) *Store {
	return New(conf.Session.Path)
}

func (s *Store) Path() string { return s.path }

func (s *Store) Load() (session.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return session.Session{}, session.ErrNoSession
		}
		return session.Session{}, errors.Wrap(err, "reading session file")
	}

	var sess session.Session
	if err = json.Unmarshal(data, &sess); err != nil || sess.Token == "" {
		// a corrupt file is as good as none
		return session.Session{}, session.ErrNoSession
	}
	return sess, nil
}

// Save writes the session atomically: to a temp file in the same directory, then renamed.
func (s *Store) Save(sess session.Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}

	dir := filepath.Dir(s.path)
	if err = os.MkdirAll(dir, dirPerm); err != nil {
		return errors.Wrap(err, "creating session dir")
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return errors.Wrap(err, "creating temp session file")
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing session file")
	}
	if err = tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "securing session file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing session file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "saving session file")
}

func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing session file")
	}
	return nil
}
