package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// storedSession is the on-disk shape of a cached login. Tokens are bound to
// the server they were issued by.
type storedSession struct {
	Server       string `json:"server"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// credentialFile reads and writes the cached session under the config dir.
type credentialFile struct {
	path   string
	loaded storedSession
}

// openCredentialFile loads the cached session from dir, defaulting to
// ~/.config/causeway. A missing file is an empty session, not an error.
func openCredentialFile(dir string) (*credentialFile, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		dir = filepath.Join(base, "causeway")
	}

	f := &credentialFile{path: filepath.Join(dir, "credentials.json")}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	if err := json.Unmarshal(data, &f.loaded); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return f, nil
}

// save writes the session atomically with owner-only permissions.
func (f *credentialFile) save(s storedSession) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(f.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	f.loaded = s
	return nil
}

// clear removes the cached session. Clearing an absent file is fine.
func (f *credentialFile) clear() error {
	f.loaded = storedSession{}
	err := os.Remove(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
