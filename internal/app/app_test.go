package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/mailbridge/internal/config"
	applog "github.com/vovakirdan/mailbridge/internal/log"
	"github.com/vovakirdan/mailbridge/internal/store"
)

func fileConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.PollInterval = 10 * time.Millisecond
	cfg.ShutdownTimeout = time.Second
	return cfg
}

func TestOpenMailboxesFileInit(t *testing.T) {
	ctx := context.Background()
	cfg := fileConfig(t)
	cfg.Lock = true

	mb, err := OpenMailboxes(ctx, &cfg, applog.Disabled())
	if err != nil {
		t.Fatalf("OpenMailboxes: %v", err)
	}
	defer mb.Close()

	if err := mb.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, path := range []string{cfg.InboxPath(), cfg.OutboxPath()} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("mailbox file missing: %v", err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("%s: expected empty array, got %s", filepath.Base(path), data)
		}
	}
}

func TestMailboxesChannelsAreMirrored(t *testing.T) {
	ctx := context.Background()
	cfg := fileConfig(t)

	mb, err := OpenMailboxes(ctx, &cfg, nil)
	if err != nil {
		t.Fatalf("OpenMailboxes: %v", err)
	}
	defer mb.Close()

	if err := mb.UserChannel().Submit(ctx, store.SenderUser, "to assistant"); err != nil {
		t.Fatal(err)
	}
	if err := mb.AssistantChannel().Submit(ctx, store.SenderAssistant, "to user"); err != nil {
		t.Fatal(err)
	}

	fromUser, _ := mb.AssistantChannel().DrainUnread(ctx)
	if len(fromUser) != 1 || fromUser[0].Message != "to assistant" {
		t.Fatalf("assistant received %+v", fromUser)
	}
	fromAssistant, _ := mb.UserChannel().DrainUnread(ctx)
	if len(fromAssistant) != 1 || fromAssistant[0].Message != "to user" {
		t.Fatalf("user received %+v", fromAssistant)
	}

	if err := mb.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	msgs, _ := mb.Inbox.Load(ctx)
	if len(msgs) != 0 {
		t.Fatalf("Reset left %d messages", len(msgs))
	}
	data, err := os.ReadFile(cfg.OutboxPath())
	if err != nil {
		t.Fatalf("Reset should recreate the outbox file: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("outbox after Reset: %s", data)
	}
}

func TestOpenMailboxesRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "tape"
	if _, err := OpenMailboxes(context.Background(), &cfg, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNewRejectsUnknownResponder(t *testing.T) {
	cfg := fileConfig(t)
	cfg.EmbeddedAssistant = true
	cfg.Responder = "oracle"

	if _, err := New(context.Background(), &cfg, applog.Disabled()); err == nil {
		t.Fatal("expected error for unknown responder")
	}
}

func TestAppRunWithEmbeddedAssistant(t *testing.T) {
	cfg := fileConfig(t)
	cfg.Addr = "127.0.0.1:0"
	cfg.EmbeddedAssistant = true
	cfg.Responder = "upper"

	a, err := New(context.Background(), &cfg, applog.Disabled())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ts := httptest.NewServer(a.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	resp, err := ts.Client().Post(ts.URL+"/api/send", "application/json", strings.NewReader(`{"message": "ping"}`))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("send status %d", resp.StatusCode)
	}

	// Wait for the embedded assistant to answer
	deadline := time.Now().Add(3 * time.Second)
	for {
		msgs, err := a.mailboxes.Outbox.Load(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(msgs) == 1 {
			if msgs[0].Message != "PING" {
				t.Fatalf("unexpected reply %q", msgs[0].Message)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the assistant")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}
