package responder

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/mailbridge/internal/core"
	"github.com/vovakirdan/mailbridge/internal/store"
)

func respond(t *testing.T, r core.Responder, text string) string {
	t.Helper()
	reply, err := r.Respond(context.Background(), store.Message{Sender: store.SenderUser, Message: text})
	if err != nil {
		t.Fatalf("Respond(%q): %v", text, err)
	}
	return reply
}

func TestKeyword(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello there", "Hello! How can I help you?"},
		{"hey!", "Hello! How can I help you?"},
		{"How are you?", "I'm doing well, thanks! Ready to work."},
		{"can you HELP me", "help with"},
		{"thank you so much", "You're welcome!"},
		{"ok, bye", "Goodbye!"},
		{"this is a test", "Received your message: 'this is a test'"},
		{"", "Received your message: ''"},
	}

	r := Keyword()
	for _, tt := range tests {
		got := respond(t, r, tt.input)
		if !strings.Contains(got, tt.want) {
			t.Errorf("Keyword(%q) = %q, want it to contain %q", tt.input, got, tt.want)
		}
	}
}

func TestKeywordMatchesWholeWords(t *testing.T) {
	// "this" and "which" contain "hi" but must not trigger a greeting
	got := respond(t, Keyword(), "which one is this")
	if strings.HasPrefix(got, "Hello") {
		t.Fatalf("substring matched as keyword: %q", got)
	}
}

func TestEchoAndUpper(t *testing.T) {
	if got := respond(t, Echo(), "ping"); got != "Received your message: 'ping'" {
		t.Errorf("Echo = %q", got)
	}
	if got := respond(t, Upper(), "ping"); got != "PING" {
		t.Errorf("Upper = %q", got)
	}
	if got := respond(t, None(), "ping"); got != "" {
		t.Errorf("None = %q", got)
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	msg := store.Message{
		Timestamp: time.Date(2025, 1, 2, 13, 4, 5, 0, time.UTC),
		Sender:    store.SenderAssistant,
		Message:   "hi",
	}
	reply, err := Printer(&buf).Respond(context.Background(), msg)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if reply != "" {
		t.Errorf("printer should not reply, got %q", reply)
	}
	if got := buf.String(); got != "[13:04:05] assistant: hi\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestChain(t *testing.T) {
	if got := respond(t, Chain(None(), Upper(), Echo()), "x"); got != "X" {
		t.Errorf("Chain = %q, want first non-empty reply", got)
	}

	failing := core.ResponderFunc(func(context.Context, store.Message) (string, error) {
		return "", errors.New("down")
	})
	if _, err := Chain(failing, Upper()).Respond(context.Background(), store.Message{}); err == nil {
		t.Error("Chain should stop on error")
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "keyword", "echo", " Upper ", "none"} {
		if _, err := ByName(name); err != nil {
			t.Errorf("ByName(%q): %v", name, err)
		}
	}
	if _, err := ByName("oracle"); err == nil {
		t.Error("expected error for unknown responder")
	}
}
