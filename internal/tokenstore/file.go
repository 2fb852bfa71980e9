package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/and161185/newsadmin/internal/crypto/sealbox"
)

// ConfigDir returns the per-user configuration directory of the console.
func ConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "newsadmin")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "newsadmin")
}

// DefaultPath is the token file location used when none is configured.
func DefaultPath() string { return filepath.Join(ConfigDir(), "tokens.json") }

// File persists the pair as JSON, optionally sealed with a passphrase.
type File struct {
	mu   sync.Mutex
	path string
	box  *sealbox.Box
}

// NewFile returns a file-backed store. A nil box stores plain JSON.
func NewFile(path string, box *sealbox.Box) *File {
	if path == "" {
		path = DefaultPath()
	}
	return &File{path: path, box: box}
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

func (f *File) Load() (Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *File) load() (Pair, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Pair{}, nil
	}
	if err != nil {
		return Pair{}, err
	}
	if f.box != nil {
		if b, err = f.box.Open(b); err != nil {
			return Pair{}, fmt.Errorf("open token file: %w", err)
		}
	}
	var p Pair
	if err := json.Unmarshal(b, &p); err != nil {
		return Pair{}, fmt.Errorf("decode token file: %w", err)
	}
	return p, nil
}

func (f *File) Save(accessToken, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(Pair{AccessToken: accessToken, RefreshToken: refreshToken}, "", "  ")
	if err != nil {
		return err
	}
	if f.box != nil {
		if b, err = f.box.Seal(b); err != nil {
			return err
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// AccessToken reads the file on every call so a token written by another
// process is picked up. Read errors yield "".
func (f *File) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.load()
	if err != nil {
		return ""
	}
	return p.AccessToken
}
