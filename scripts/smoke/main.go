package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/vovakirdan/mailbridge/internal/app"
	"github.com/vovakirdan/mailbridge/internal/config"
	"github.com/vovakirdan/mailbridge/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Printf("smoke: %v", err)
		os.Exit(1)
	}
	fmt.Println("ALL CHECKS PASSED")
}

func run() error {
	dir := flag.String("dir", "", "directory for the mailbox files (default: a fresh temp dir)")
	backend := flag.String("backend", config.BackendFile, "storage backend to exercise")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *dir == "" {
		tmp, err := os.MkdirTemp("", "mailbridge-smoke-*")
		if err != nil {
			return fmt.Errorf("create temp dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		*dir = tmp
	}

	cfg := config.Default()
	cfg.DataDir = *dir
	cfg.Backend = *backend
	cfg.DatabasePath = filepath.Join(*dir, "smoke.db")

	mb, err := app.OpenMailboxes(ctx, &cfg, nil)
	if err != nil {
		return fmt.Errorf("open mailboxes: %w", err)
	}
	defer mb.Close()

	step := func(name string, fn func() error) error {
		if err := fn(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Printf("ok   %s\n", name)
		return nil
	}

	user, assistant := mb.UserChannel(), mb.AssistantChannel()

	if err := step("reset mailboxes", func() error { return mb.Reset(ctx) }); err != nil {
		return err
	}
	if err := step("user submits a message", func() error {
		return user.Submit(ctx, store.SenderUser, "Test message from user")
	}); err != nil {
		return err
	}
	if err := step("assistant drains exactly one message", func() error {
		msgs, err := assistant.DrainUnread(ctx)
		if err != nil {
			return err
		}
		if len(msgs) != 1 || msgs[0].Message != "Test message from user" {
			return fmt.Errorf("unexpected messages: %+v", msgs)
		}
		return nil
	}); err != nil {
		return err
	}
	if err := step("second drain is empty", func() error {
		msgs, err := assistant.DrainUnread(ctx)
		if err != nil {
			return err
		}
		if len(msgs) != 0 {
			return fmt.Errorf("expected no messages, got %d", len(msgs))
		}
		return nil
	}); err != nil {
		return err
	}
	if err := step("inbox message is marked read", func() error {
		msgs, err := mb.Inbox.Load(ctx)
		if err != nil {
			return err
		}
		if len(msgs) != 1 || !msgs[0].Read {
			return errors.New("message should be marked as read")
		}
		return nil
	}); err != nil {
		return err
	}
	if err := step("assistant replies three times", func() error {
		for _, text := range []string{"Test response from assistant", "Second message", "Third message"} {
			if err := assistant.Submit(ctx, store.SenderAssistant, text); err != nil {
				return err
			}
		}
		msgs, err := mb.Outbox.Load(ctx)
		if err != nil {
			return err
		}
		if len(msgs) != 3 {
			return fmt.Errorf("expected 3 replies, got %d", len(msgs))
		}
		return nil
	}); err != nil {
		return err
	}
	return step("conversation history is ordered", func() error {
		msgs, err := user.History(ctx)
		if err != nil {
			return err
		}
		if len(msgs) != 4 || msgs[0].Sender != store.SenderUser {
			return fmt.Errorf("unexpected history: %+v", msgs)
		}
		return nil
	})
}
