package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Mailbox implements Store on top of a Backend. Operations on one Mailbox
// are serialized by a mutex; an optional Locker extends that to other
// processes sharing the backend.
type Mailbox struct {
	backend Backend
	locker  Locker
	log     *zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// Option configures a Mailbox.
type Option func(*Mailbox)

// WithLocker guards every load-mutate-save cycle with l.
func WithLocker(l Locker) Option {
	return func(m *Mailbox) {
		m.locker = l
	}
}

// WithLogger sets the logger used for recoverable read errors.
func WithLogger(logger *zerolog.Logger) Option {
	return func(m *Mailbox) {
		if logger != nil {
			m.log = logger
		}
	}
}

// NewMailbox wraps backend.
func NewMailbox(backend Backend, opts ...Option) *Mailbox {
	nop := zerolog.Nop()
	m := &Mailbox{
		backend: backend,
		log:     &nop,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the backend mailbox name.
func (m *Mailbox) Name() string {
	return m.backend.Name()
}

// Load reads the full sequence.
func (m *Mailbox) Load(ctx context.Context) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	return m.load(ctx)
}

// Save overwrites the full sequence.
func (m *Mailbox) Save(ctx context.Context, msgs []Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	unlock, err := m.lock()
	if err != nil {
		return err
	}
	defer unlock()

	return m.save(ctx, msgs)
}

// Append loads the sequence, adds msg at the end and saves. Unreadable data
// is replaced by a sequence holding only msg.
func (m *Mailbox) Append(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	unlock, err := m.lock()
	if err != nil {
		return err
	}
	defer unlock()

	msgs, err := m.load(ctx)
	if err != nil && !IsReadError(err) {
		return err
	}
	return m.save(ctx, append(msgs, msg))
}

// MarkAllRead flips unread messages to read and returns them as saved. When the data
// cannot be read nothing is saved, so a damaged mailbox is left as found.
func (m *Mailbox) MarkAllRead(ctx context.Context) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	unlock, err := m.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	msgs, err := m.load(ctx)
	if err != nil {
		return nil, err
	}

	var flipped []Message
	for i := range msgs {
		if msgs[i].Read {
			continue
		}
		msgs[i].Read = true
		flipped = append(flipped, msgs[i])
	}
	if len(flipped) == 0 {
		return nil, nil
	}

	if err := m.save(ctx, msgs); err != nil {
		return nil, err
	}
	return flipped, nil
}

// Init saves an empty sequence when the mailbox is missing or empty.
// Unreadable data is left untouched and reported.
func (m *Mailbox) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	unlock, err := m.lock()
	if err != nil {
		return err
	}
	defer unlock()

	msgs, err := m.load(ctx)
	if err != nil {
		return err
	}
	if len(msgs) > 0 {
		return nil
	}
	return m.save(ctx, []Message{})
}

// Remove deletes the mailbox from the backend.
func (m *Mailbox) Remove(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	unlock, err := m.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := m.backend.Remove(ctx); err != nil {
		if IsWriteError(err) {
			return err
		}
		return &WriteError{Mailbox: m.Name(), Err: err}
	}
	return nil
}

// Close closes the backend. Further calls return ErrClosed.
func (m *Mailbox) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.backend.Close()
}

func (m *Mailbox) load(ctx context.Context) ([]Message, error) {
	msgs, err := m.backend.Load(ctx)
	if err != nil {
		if IsReadError(err) {
			m.log.Warn().Err(err).Str("mailbox", m.Name()).Msg("treating unreadable mailbox as empty")
		}
		return nil, err
	}
	return msgs, nil
}

func (m *Mailbox) save(ctx context.Context, msgs []Message) error {
	if err := m.backend.Save(ctx, msgs); err != nil {
		if IsWriteError(err) {
			return err
		}
		return &WriteError{Mailbox: m.Name(), Err: err}
	}
	return nil
}

func (m *Mailbox) lock() (func(), error) {
	if m.locker == nil {
		return func() {}, nil
	}
	if err := m.locker.Lock(); err != nil {
		return nil, fmt.Errorf("lock mailbox %s: %w", m.Name(), err)
	}
	return func() {
		if err := m.locker.Unlock(); err != nil {
			m.log.Warn().Err(err).Str("mailbox", m.Name()).Msg("failed to release mailbox lock")
		}
	}, nil
}
