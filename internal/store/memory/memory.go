package memory

import (
	"context"
	"sync"

	"github.com/vovakirdan/mailbridge/internal/store"
)

// Backend keeps a mailbox in process memory. Sequences are copied on the way
// in and out so callers never share slices with the backend.
type Backend struct {
	name string

	mu    sync.RWMutex
	msgs  []store.Message
	saved bool
}

// New creates an empty in-memory mailbox.
func New(name string) *Backend {
	return &Backend{name: name}
}

func (b *Backend) Name() string {
	return b.name
}

func (b *Backend) Load(_ context.Context) ([]store.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.saved {
		return nil, nil
	}
	return append([]store.Message(nil), b.msgs...), nil
}

func (b *Backend) Save(_ context.Context, msgs []store.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append([]store.Message(nil), msgs...)
	b.saved = true
	return nil
}

func (b *Backend) Remove(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = nil
	b.saved = false
	return nil
}

func (b *Backend) Close() error {
	return nil
}
