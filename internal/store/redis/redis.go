package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vovakirdan/mailbridge/internal/store"
)

// RedisStore holds mailboxes as JSON documents, one key per mailbox.
type RedisStore struct {
	client *goredis.Client
	prefix string
}

// New connects to the server at redisURL and verifies the connection.
func New(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client, prefix: "mailbox"}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Mailbox returns a backend for the named mailbox. Closing the backend does
// not close the client.
func (s *RedisStore) Mailbox(name string) *Backend {
	return &Backend{client: s.client, name: name, key: mailboxKey(s.prefix, name)}
}

// mailboxKey returns the key holding a mailbox document.
func mailboxKey(prefix, name string) string {
	return fmt.Sprintf("%s:%s", prefix, name)
}

// Backend is one mailbox inside a RedisStore.
type Backend struct {
	client *goredis.Client
	name   string
	key    string
}

func (b *Backend) Name() string {
	return b.name
}

func (b *Backend) Load(ctx context.Context) ([]store.Message, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, &store.ReadError{Mailbox: b.name, Err: fmt.Errorf("get %s: %w", b.key, err)}
	}

	msgs, err := store.Decode(data)
	if err != nil {
		return nil, &store.ReadError{Mailbox: b.name, Err: err}
	}
	return msgs, nil
}

// Save replaces the document with a single SET, which Redis applies atomically.
func (b *Backend) Save(ctx context.Context, msgs []store.Message) error {
	data, err := store.Encode(msgs)
	if err != nil {
		return &store.WriteError{Mailbox: b.name, Err: err}
	}
	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return &store.WriteError{Mailbox: b.name, Err: fmt.Errorf("set %s: %w", b.key, err)}
	}
	return nil
}

// Remove deletes the mailbox key.
func (b *Backend) Remove(ctx context.Context) error {
	if err := b.client.Del(ctx, b.key).Err(); err != nil {
		return &store.WriteError{Mailbox: b.name, Err: fmt.Errorf("del %s: %w", b.key, err)}
	}
	return nil
}

func (b *Backend) Close() error {
	return nil
}
