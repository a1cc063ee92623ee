// Package token holds the provider credential and keeps its access token fresh.
package token

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/and161185/exmail-sync/internal/errs"
)

// Credential is the persisted state of one API client instance.
type Credential struct {
	CorpID            string     `json:"corpId"`
	CorpSecret        string     `json:"corpSecret"`
	AccessToken       string     `json:"accessToken,omitempty"`
	AccessTokenExpiry *time.Time `json:"accessTokenExpiry"`
}

// Store persists a Credential across process runs.
type Store interface {
	// Load returns errs.ErrNotFound when nothing was persisted yet.
	Load() (Credential, error)
	Save(c Credential) error
}

// FileStore keeps the credential in a JSON file.
type FileStore struct{ Path string }

// NewFileStore constructs a FileStore for path.
func NewFileStore(path string) *FileStore { return &FileStore{Path: path} }

// Load reads the credential file.
func (s *FileStore) Load() (Credential, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credential{}, errs.ErrNotFound
		}
		return Credential{}, err
	}
	var c Credential
	if err := json.Unmarshal(b, &c); err != nil {
		return Credential{}, err
	}
	return c, nil
}

// Save writes the credential atomically (temp file + rename), mode 0600.
func (s *FileStore) Save(c Credential) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".credential-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

// LoadOrSeed loads the persisted credential, falling back to seed when nothing was
// persisted. A non-empty seed id/secret overrides stale persisted ones; the cached
// token is dropped in that case.
func LoadOrSeed(s Store, seed Credential) (Credential, error) {
	c, err := s.Load()
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return seed, nil
	case err != nil:
		return Credential{}, err
	}
	if seed.CorpID != "" && seed.CorpSecret != "" &&
		(seed.CorpID != c.CorpID || seed.CorpSecret != c.CorpSecret) {
		return seed, nil
	}
	return c, nil
}
