package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/mailbridge/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS mailboxes (
	name       TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	mailbox   TEXT NOT NULL,
	position  INTEGER NOT NULL,
	timestamp TEXT NOT NULL,
	sender    TEXT NOT NULL,
	message   TEXT NOT NULL,
	read      BOOLEAN NOT NULL DEFAULT 0,
	FOREIGN KEY (mailbox) REFERENCES mailboxes(name)
);

CREATE INDEX IF NOT EXISTS idx_messages_mailbox ON messages(mailbox, position);
`

// SQLiteStore holds any number of mailboxes in one SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Mailbox returns a backend for the named mailbox. Closing the backend does
// not close the database.
func (s *SQLiteStore) Mailbox(name string) *Backend {
	return &Backend{db: s.db, name: name}
}

// Backend is one mailbox inside a SQLiteStore.
type Backend struct {
	db   *sql.DB
	name string
}

func (b *Backend) Name() string {
	return b.name
}

// Load returns the mailbox rows in insertion order. A mailbox that was never
// saved is empty.
func (b *Backend) Load(ctx context.Context) ([]store.Message, error) {
	query := `
		SELECT timestamp, sender, message, read
		FROM messages
		WHERE mailbox = ?
		ORDER BY position ASC
	`
	rows, err := b.db.QueryContext(ctx, query, b.name)
	if err != nil {
		return nil, &store.ReadError{Mailbox: b.name, Err: fmt.Errorf("query messages: %w", err)}
	}
	defer rows.Close()

	var msgs []store.Message
	for rows.Next() {
		var (
			msg store.Message
			ts  string
		)
		if err := rows.Scan(&ts, &msg.Sender, &msg.Message, &msg.Read); err != nil {
			return nil, &store.ReadError{Mailbox: b.name, Err: fmt.Errorf("scan message: %w", err)}
		}
		msg.SetTimestampText(ts)
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.ReadError{Mailbox: b.name, Err: fmt.Errorf("iterate messages: %w", err)}
	}

	return msgs, nil
}

// Save replaces the mailbox rows inside a single transaction.
func (b *Backend) Save(ctx context.Context, msgs []store.Message) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return &store.WriteError{Mailbox: b.name, Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO mailboxes (name) VALUES (?)`, b.name); err != nil {
		return &store.WriteError{Mailbox: b.name, Err: fmt.Errorf("insert mailbox: %w", err)}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE mailbox = ?`, b.name); err != nil {
		return &store.WriteError{Mailbox: b.name, Err: fmt.Errorf("clear messages: %w", err)}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (mailbox, position, timestamp, sender, message, read)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return &store.WriteError{Mailbox: b.name, Err: fmt.Errorf("prepare insert: %w", err)}
	}
	defer stmt.Close()

	for i, msg := range msgs {
		if _, err := stmt.ExecContext(ctx, b.name, i, msg.TimestampText(), msg.Sender, msg.Message, msg.Read); err != nil {
			return &store.WriteError{Mailbox: b.name, Err: fmt.Errorf("insert message: %w", err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &store.WriteError{Mailbox: b.name, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

// Remove deletes the mailbox row and its messages.
func (b *Backend) Remove(ctx context.Context) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return &store.WriteError{Mailbox: b.name, Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE mailbox = ?`, b.name); err != nil {
		return &store.WriteError{Mailbox: b.name, Err: fmt.Errorf("delete messages: %w", err)}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM mailboxes WHERE name = ?`, b.name); err != nil {
		return &store.WriteError{Mailbox: b.name, Err: fmt.Errorf("delete mailbox: %w", err)}
	}
	if err := tx.Commit(); err != nil {
		return &store.WriteError{Mailbox: b.name, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

func (b *Backend) Close() error {
	return nil
}
