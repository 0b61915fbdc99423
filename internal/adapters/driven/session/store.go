package session

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/rotisserie/eris"

	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.SessionStore = (*FileStore)(nil)

// fileSession is the on-disk layout.
type fileSession struct {
	Token       tokenSection       `toml:"token"`
	Spreadsheet spreadsheetSection `toml:"spreadsheet"`
}

type tokenSection struct {
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	TokenType    string `toml:"token_type,omitempty"`
	Expiry       int64  `toml:"expiry,omitempty"`
}

type spreadsheetSection struct {
	ID string `toml:"id,omitempty"`
}

// FileStore is a TOML file-backed driven.SessionStore.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store for the session file at path. If path is
// empty, defaults to ~/.omniticket/session.toml.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, eris.Wrap(err, "session: resolve home directory")
		}
		path = filepath.Join(home, ".omniticket", "session.toml")
	}
	return &FileStore{path: path}, nil
}

// Path returns the session file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the session. A missing file yields an empty session.
func (s *FileStore) Load() (*driven.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &driven.Session{}, nil
		}
		return nil, eris.Wrapf(err, "session: read %s", s.path)
	}

	var f fileSession
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "session: parse %s", s.path)
	}

	return &driven.Session{
		AccessToken:   f.Token.AccessToken,
		RefreshToken:  f.Token.RefreshToken,
		TokenType:     f.Token.TokenType,
		Expiry:        f.Token.Expiry,
		SpreadsheetID: f.Spreadsheet.ID,
	}, nil
}

// Save writes the session with owner-only permissions.
func (s *FileStore) Save(session *driven.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := fileSession{
		Token: tokenSection{
			AccessToken:  session.AccessToken,
			RefreshToken: session.RefreshToken,
			TokenType:    session.TokenType,
			Expiry:       session.Expiry,
		},
		Spreadsheet: spreadsheetSection{ID: session.SpreadsheetID},
	}
	data, err := toml.Marshal(f)
	if err != nil {
		return eris.Wrap(err, "session: encode")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return eris.Wrapf(err, "session: create directory for %s", s.path)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return eris.Wrapf(err, "session: write %s", s.path)
	}
	return nil
}
