package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/mailbridge/internal/config"
	"github.com/vovakirdan/mailbridge/internal/core"
	"github.com/vovakirdan/mailbridge/internal/store"
	"github.com/vovakirdan/mailbridge/internal/store/file"
	"github.com/vovakirdan/mailbridge/internal/store/memory"
	redisstore "github.com/vovakirdan/mailbridge/internal/store/redis"
	"github.com/vovakirdan/mailbridge/internal/store/sqlite"
)

// Mailboxes is the pair of stores shared by both parties. Inbox carries
// user messages to the assistant; Outbox carries replies back.
type Mailboxes struct {
	Inbox  store.Store
	Outbox store.Store

	shared io.Closer
	log    *zerolog.Logger
}

// OpenMailboxes builds both stores on the configured backend.
func OpenMailboxes(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Mailboxes, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []store.Option{store.WithLogger(logger)}
	mb := &Mailboxes{log: logger}

	switch cfg.Backend {
	case config.BackendFile:
		inboxPath, outboxPath := cfg.InboxPath(), cfg.OutboxPath()
		var inboxLock, outboxLock []store.Option
		if cfg.Lock {
			inboxLock = []store.Option{store.WithLocker(file.NewFileLock(inboxPath))}
			outboxLock = []store.Option{store.WithLocker(file.NewFileLock(outboxPath))}
		}
		mb.Inbox = store.NewMailbox(file.New(inboxPath), append(inboxLock, opts...)...)
		mb.Outbox = store.NewMailbox(file.New(outboxPath), append(outboxLock, opts...)...)

	case config.BackendSQLite:
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite store: %w", err)
		}
		mb.shared = db
		mb.Inbox = store.NewMailbox(db.Mailbox(cfg.InboxName), opts...)
		mb.Outbox = store.NewMailbox(db.Mailbox(cfg.OutboxName), opts...)

	case config.BackendRedis:
		rs, err := redisstore.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("init redis store: %w", err)
		}
		mb.shared = rs
		mb.Inbox = store.NewMailbox(rs.Mailbox(cfg.InboxName), opts...)
		mb.Outbox = store.NewMailbox(rs.Mailbox(cfg.OutboxName), opts...)

	case config.BackendMemory:
		mb.Inbox = store.NewMailbox(memory.New(cfg.InboxName), opts...)
		mb.Outbox = store.NewMailbox(memory.New(cfg.OutboxName), opts...)
	}

	if logger != nil {
		logger.Debug().
			Str("backend", cfg.Backend).
			Str("inbox", mb.Inbox.Name()).
			Str("outbox", mb.Outbox.Name()).
			Msg("mailboxes opened")
	}
	return mb, nil
}

// UserChannel reads assistant replies and submits user messages.
func (m *Mailboxes) UserChannel() *core.Channel {
	return core.NewChannel(m.Outbox, m.Inbox, m.log)
}

// AssistantChannel reads user messages and submits assistant replies.
func (m *Mailboxes) AssistantChannel() *core.Channel {
	return core.NewChannel(m.Inbox, m.Outbox, m.log)
}

// Init creates both stores as empty sequences when absent.
func (m *Mailboxes) Init(ctx context.Context) error {
	for _, st := range []store.Store{m.Inbox, m.Outbox} {
		if err := st.Init(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Reset removes both stores and recreates them empty.
func (m *Mailboxes) Reset(ctx context.Context) error {
	for _, st := range []store.Store{m.Inbox, m.Outbox} {
		if err := st.Remove(ctx); err != nil {
			return err
		}
		if err := st.Init(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close closes both stores and any shared backend connection.
func (m *Mailboxes) Close() error {
	var firstErr error
	for _, st := range []store.Store{m.Inbox, m.Outbox} {
		if st == nil {
			continue
		}
		if err := st.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if m.shared != nil {
		if err := m.shared.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
