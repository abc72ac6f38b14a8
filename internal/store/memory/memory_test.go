package memory

import (
	"context"
	"testing"

	"github.com/vovakirdan/mailbridge/internal/store"
)

func TestBackendCopiesSequences(t *testing.T) {
	ctx := context.Background()
	b := New("inbox")

	msgs := []store.Message{{Sender: store.SenderUser, Message: "hi"}}
	if err := b.Save(ctx, msgs); err != nil {
		t.Fatalf("Save: %v", err)
	}
	msgs[0].Message = "changed"

	loaded, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded[0].Message != "hi" {
		t.Fatalf("backend shares the caller's slice: %q", loaded[0].Message)
	}

	loaded[0].Read = true
	again, _ := b.Load(ctx)
	if again[0].Read {
		t.Fatal("backend shares the loaded slice")
	}
}

func TestBackendRemove(t *testing.T) {
	ctx := context.Background()
	b := New("inbox")

	if err := b.Save(ctx, []store.Message{{Sender: store.SenderUser, Message: "hi"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := b.Remove(ctx); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	msgs, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if msgs != nil {
		t.Fatalf("removed mailbox should load as missing, got %+v", msgs)
	}
}
