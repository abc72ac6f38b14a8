// Package responder holds ready-made reply functions for mailbox pollers.
package responder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vovakirdan/mailbridge/internal/core"
	"github.com/vovakirdan/mailbridge/internal/store"
)

// Names accepted by ByName.
const (
	NameKeyword = "keyword"
	NameEcho    = "echo"
	NameUpper   = "upper"
	NameNone    = "none"
)

// Echo acknowledges every message by quoting it back.
func Echo() core.Responder {
	return core.ResponderFunc(func(_ context.Context, msg store.Message) (string, error) {
		return fmt.Sprintf("Received your message: '%s'", msg.Message), nil
	})
}

// Upper replies with the message upper-cased.
func Upper() core.Responder {
	return core.ResponderFunc(func(_ context.Context, msg store.Message) (string, error) {
		return strings.ToUpper(msg.Message), nil
	})
}

// None never replies.
func None() core.Responder {
	return core.ResponderFunc(func(context.Context, store.Message) (string, error) {
		return "", nil
	})
}

// Printer writes each message to w and never replies. Shells use it to show
// incoming messages.
func Printer(w io.Writer) core.Responder {
	return core.ResponderFunc(func(_ context.Context, msg store.Message) (string, error) {
		_, err := fmt.Fprintf(w, "[%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), msg.Sender, msg.Message)
		return "", err
	})
}

// Chain returns the first non-empty reply from rs. Errors stop the chain.
func Chain(rs ...core.Responder) core.Responder {
	return core.ResponderFunc(func(ctx context.Context, msg store.Message) (string, error) {
		for _, r := range rs {
			reply, err := r.Respond(ctx, msg)
			if err != nil {
				return "", err
			}
			if reply != "" {
				return reply, nil
			}
		}
		return "", nil
	})
}

// ByName resolves a configured responder name.
func ByName(name string) (core.Responder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameKeyword, "":
		return Keyword(), nil
	case NameEcho:
		return Echo(), nil
	case NameUpper:
		return Upper(), nil
	case NameNone:
		return None(), nil
	default:
		return nil, fmt.Errorf("unknown responder %q", name)
	}
}
