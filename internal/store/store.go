package store

import (
	"context"
	"fmt"
	"time"
)

// Sender identifies which party produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Valid reports whether s is one of the known parties.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAssistant
}

// Message is a single mailbox record. Timestamp and Sender are fixed at
// creation; Read only ever moves from false to true.
type Message struct {
	Timestamp time.Time `json:"timestamp"`
	Sender    Sender    `json:"sender"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`

	// rawTimestamp is the stored JSON token of a timestamp that could not be
	// parsed, empty when the field was absent. It is written back verbatim
	// while Timestamp stays zero.
	rawTimestamp string
	keepRaw      bool
}

// NewMessage builds an unread message stamped with the current time.
// Empty text is allowed.
func NewMessage(sender Sender, text string) (Message, error) {
	if !sender.Valid() {
		return Message{}, fmt.Errorf("%w: %q", ErrInvalidSender, sender)
	}
	return Message{
		Timestamp: time.Now(),
		Sender:    sender,
		Message:   text,
	}, nil
}

// Backend is the durable medium behind a mailbox.
type Backend interface {
	// Name identifies the mailbox within the backend.
	Name() string

	// Load returns the stored sequence. A missing mailbox yields an empty
	// sequence and no error. Undecodable data yields a *ReadError.
	Load(ctx context.Context) ([]Message, error)

	// Save replaces the whole sequence. Readers never observe a partial save.
	Save(ctx context.Context, msgs []Message) error

	// Remove deletes the mailbox so that it loads as missing. Removing a
	// missing mailbox is not an error.
	Remove(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Locker serializes load-mutate-save cycles across processes.
type Locker interface {
	Lock() error
	Unlock() error
}

// Store is the mailbox contract used by channels and shells.
type Store interface {
	// Name identifies the mailbox.
	Name() string

	// Load reads the full sequence. On a *ReadError the returned sequence is empty.
	Load(ctx context.Context) ([]Message, error)

	// Save overwrites the full sequence.
	Save(ctx context.Context, msgs []Message) error

	// Append adds msg to the end of the sequence and saves it.
	Append(ctx context.Context, msg Message) error

	// MarkAllRead flips every unread message to read, saves, and returns the
	// flipped messages, now read, in insertion order.
	MarkAllRead(ctx context.Context) ([]Message, error)

	// Init stores an empty sequence if the mailbox holds nothing yet.
	Init(ctx context.Context) error

	// Remove deletes the mailbox and everything in it.
	Remove(ctx context.Context) error

	// Close releases the underlying backend.
	Close() error
}
