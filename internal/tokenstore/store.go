// Package tokenstore persists the portal session token between runs
package tokenstore

import (
	"errors"
	"os"
	"strings"
)

// ErrNotFound is returned by Load when no token has been saved yet
var ErrNotFound = errors.New("no session token is stored")

// Store defines the token persistence API
type Store interface {
	// Save persists the given token, replacing any previously stored one
	Save(token string) error

	// Load returns the stored token or ErrNotFound
	Load() (string, error)

	// Clear removes the stored token.
	// Clearing an empty store is a no-op.
	Clear() error
}

// FileStore implements Store on top of a single plain-text file
type FileStore struct {
	Path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-backed token store at the given path
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Save writes the token to the store's file, overwriting any existing value
func (store *FileStore) Save(token string) error {
	return os.WriteFile(store.Path, []byte(token), 0o600)
}

// Load reads the stored token back.
// A missing or empty file yields ErrNotFound.
func (store *FileStore) Load() (string, error) {
	raw, err := os.ReadFile(store.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

// Clear removes the store's file
func (store *FileStore) Clear() error {
	if err := os.Remove(store.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
