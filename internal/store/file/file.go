package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vovakirdan/mailbridge/internal/store"
)

// Extension is appended to mailbox names to form file names.
const Extension = ".json"

// Backend stores a mailbox as a JSON array in a single file. Saves go
// through a temporary file in the same directory and a rename, so readers
// see either the old or the new content.
type Backend struct {
	path string
	name string
}

// New creates a backend for the file at path. The file and its directory
// are created lazily on first save.
func New(path string) *Backend {
	return &Backend{
		path: path,
		name: strings.TrimSuffix(filepath.Base(path), Extension),
	}
}

// Path returns the mailbox file location.
func (b *Backend) Path() string {
	return b.path
}

func (b *Backend) Name() string {
	return b.name
}

func (b *Backend) Load(_ context.Context) ([]store.Message, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &store.ReadError{Mailbox: b.name, Err: err}
	}

	msgs, err := store.Decode(data)
	if err != nil {
		return nil, &store.ReadError{Mailbox: b.name, Err: err}
	}
	return msgs, nil
}

func (b *Backend) Save(_ context.Context, msgs []store.Message) error {
	data, err := store.Encode(msgs)
	if err != nil {
		return &store.WriteError{Mailbox: b.name, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return &store.WriteError{Mailbox: b.name, Err: fmt.Errorf("create directory: %w", err)}
	}
	if err := atomicWriteFile(b.path, data, 0o644); err != nil {
		return &store.WriteError{Mailbox: b.name, Err: err}
	}
	return nil
}

// Remove deletes the mailbox file. A missing file is not an error.
func (b *Backend) Remove(_ context.Context) error {
	if err := os.Remove(b.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", b.path, err)
	}
	return nil
}

func (b *Backend) Close() error {
	return nil
}

// atomicWriteFile writes data next to path and renames it into place.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}
