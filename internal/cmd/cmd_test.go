package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/mailbridge/internal/app"
	"github.com/vovakirdan/mailbridge/internal/config"
	"github.com/vovakirdan/mailbridge/internal/store"
)

func openMemoryMailboxes(t *testing.T) *app.Mailboxes {
	t.Helper()
	c := config.Default()
	c.Backend = config.BackendMemory

	mb, err := app.OpenMailboxes(context.Background(), &c, nil)
	if err != nil {
		t.Fatalf("OpenMailboxes: %v", err)
	}
	t.Cleanup(func() { _ = mb.Close() })
	return mb
}

func TestPlayDemoLeavesLastTurnUnread(t *testing.T) {
	ctx := context.Background()
	mb := openMemoryMailboxes(t)

	// Leftovers from a previous run are discarded
	_ = mb.UserChannel().Submit(ctx, store.SenderUser, "stale")

	var out bytes.Buffer
	if err := playDemo(ctx, &out, mb, 0); err != nil {
		t.Fatalf("playDemo: %v", err)
	}

	for _, tc := range []struct {
		name   string
		st     store.Store
		sender store.Sender
	}{
		{"inbox", mb.Inbox, store.SenderUser},
		{"outbox", mb.Outbox, store.SenderAssistant},
	} {
		msgs, err := tc.st.Load(ctx)
		if err != nil {
			t.Fatalf("%s: Load: %v", tc.name, err)
		}
		if len(msgs) != len(demoTurns) {
			t.Fatalf("%s: expected %d messages, got %d", tc.name, len(demoTurns), len(msgs))
		}
		for i, msg := range msgs {
			last := i == len(msgs)-1
			if msg.Read == last {
				t.Errorf("%s[%d]: read=%v, only the last message should be unread", tc.name, i, msg.Read)
			}
			if msg.Sender != tc.sender {
				t.Errorf("%s[%d]: sender %q", tc.name, i, msg.Sender)
			}
		}
	}

	if !strings.Contains(out.String(), "[USER] "+demoTurns[0][0]) {
		t.Errorf("transcript missing first turn:\n%s", out.String())
	}
}

func TestChannelFor(t *testing.T) {
	mb := openMemoryMailboxes(t)

	ch, sender, err := channelFor(mb, "user")
	if err != nil {
		t.Fatalf("channelFor(user): %v", err)
	}
	if sender != store.SenderUser || ch.Outbound() != mb.Inbox {
		t.Error("user should write to the inbox")
	}

	ch, sender, err = channelFor(mb, "assistant")
	if err != nil {
		t.Fatalf("channelFor(assistant): %v", err)
	}
	if sender != store.SenderAssistant || ch.Outbound() != mb.Outbox {
		t.Error("assistant should write to the outbox")
	}

	if _, _, err := channelFor(mb, "robot"); err == nil {
		t.Error("expected error for unknown side")
	}
}

func TestWriteLoopSubmitsLines(t *testing.T) {
	ctx := context.Background()
	mb := openMemoryMailboxes(t)

	writeLoop(ctx, strings.NewReader("first\n\n   \nsecond\n"), mb.UserChannel())

	msgs, err := mb.AssistantChannel().DrainUnread(ctx)
	if err != nil {
		t.Fatalf("DrainUnread: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Message != "first" || msgs[1].Message != "second" {
		t.Fatalf("unexpected messages %+v", msgs)
	}
}

func TestPrintMessages(t *testing.T) {
	var out bytes.Buffer
	printMessages(&out, []store.Message{{Sender: store.SenderUser, Message: "hi"}})
	if !strings.HasSuffix(out.String(), "user: hi\n") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

// endlessInput yields the same line forever.
type endlessInput struct{}

func (endlessInput) Read(p []byte) (int, error) {
	n := copy(p, "again\n")
	return n, nil
}

func TestScanLinesStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lines := scanLines(ctx, endlessInput{})

	if line := <-lines; line != "again" {
		t.Fatalf("unexpected line %q", line)
	}
	cancel()

	// Keep reading; the channel must close soon after cancel
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-lines:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("scanner goroutine kept running after cancel")
		}
	}
}

func TestWriteLoopReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mb := openMemoryMailboxes(t)
	cancel()

	done := make(chan struct{})
	go func() {
		writeLoop(ctx, endlessInput{}, mb.UserChannel())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("writeLoop did not return after cancel")
	}
}
