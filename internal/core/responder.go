package core

import (
	"context"

	"github.com/vovakirdan/mailbridge/internal/store"
)

// Responder maps an incoming message to a reply. An empty reply means
// nothing is sent back.
type Responder interface {
	Respond(ctx context.Context, msg store.Message) (string, error)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, msg store.Message) (string, error)

func (f ResponderFunc) Respond(ctx context.Context, msg store.Message) (string, error) {
	return f(ctx, msg)
}
