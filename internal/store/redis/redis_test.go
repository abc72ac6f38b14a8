package redis

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/vovakirdan/mailbridge/internal/store"
)

func TestMailboxKey(t *testing.T) {
	if got := mailboxKey("mailbox", "assistant_inbox"); got != "mailbox:assistant_inbox" {
		t.Fatalf("unexpected key %q", got)
	}
}

// Requires a running server; set MAILBRIDGE_TEST_REDIS_URL to enable.
func TestBackendRoundTrip(t *testing.T) {
	url := os.Getenv("MAILBRIDGE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MAILBRIDGE_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	s, err := New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()

	b := s.Mailbox("test_" + uuid.NewString())
	defer func() { _ = b.Remove(ctx) }()

	msgs, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load missing: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty, got %d", len(msgs))
	}

	mb := store.NewMailbox(b)
	msg, _ := store.NewMessage(store.SenderAssistant, "pong")
	if err := mb.Append(ctx, msg); err != nil {
		t.Fatalf("Append: %v", err)
	}
	drained, err := mb.MarkAllRead(ctx)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if len(drained) != 1 || drained[0].Message != "pong" {
		t.Fatalf("unexpected drain: %+v", drained)
	}
}
