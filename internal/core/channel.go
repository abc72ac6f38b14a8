package core

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/mailbridge/internal/metrics"
	"github.com/vovakirdan/mailbridge/internal/store"
)

// Channel is one party's view of a conversation: it consumes from inbound
// and writes to outbound.
type Channel struct {
	inbound  store.Store
	outbound store.Store
	log      *zerolog.Logger
}

// NewChannel pairs two mailboxes. A nil logger disables logging.
func NewChannel(inbound, outbound store.Store, logger *zerolog.Logger) *Channel {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Channel{
		inbound:  inbound,
		outbound: outbound,
		log:      logger,
	}
}

// Inbound returns the mailbox this channel consumes.
func (c *Channel) Inbound() store.Store {
	return c.inbound
}

// Outbound returns the mailbox this channel writes to.
func (c *Channel) Outbound() store.Store {
	return c.outbound
}

// DrainUnread marks every unread inbound message as read and returns those
// messages in insertion order. An unreadable inbound mailbox drains nothing
// and reports the *store.ReadError.
func (c *Channel) DrainUnread(ctx context.Context) ([]store.Message, error) {
	msgs, err := c.inbound.MarkAllRead(ctx)
	if err != nil {
		metrics.StoreErrors.WithLabelValues(c.inbound.Name(), opFor(err)).Inc()
		return nil, err
	}
	if len(msgs) > 0 {
		metrics.MessagesDrained.WithLabelValues(c.inbound.Name()).Add(float64(len(msgs)))
		c.log.Debug().Str("mailbox", c.inbound.Name()).Int("count", len(msgs)).Msg("drained unread messages")
	}
	return msgs, nil
}

// Submit appends an unread message from sender to the outbound mailbox.
// A nil error means the message was saved.
func (c *Channel) Submit(ctx context.Context, sender store.Sender, text string) error {
	msg, err := store.NewMessage(sender, text)
	if err != nil {
		return err
	}
	if err := c.outbound.Append(ctx, msg); err != nil {
		metrics.StoreErrors.WithLabelValues(c.outbound.Name(), opFor(err)).Inc()
		c.log.Error().Err(err).Str("mailbox", c.outbound.Name()).Msg("failed to submit message")
		return err
	}
	metrics.MessagesSubmitted.WithLabelValues(c.outbound.Name(), string(sender)).Inc()
	return nil
}

// History returns both mailboxes merged and sorted by timestamp. Messages
// with equal timestamps keep inbound-before-outbound insertion order.
// Unreadable mailboxes contribute nothing.
//
// Each message keeps the sender stored in its record rather than being
// labeled by the mailbox it was read from, so a record with an unexpected
// sender in the outbox is not shown as the assistant's.
func (c *Channel) History(ctx context.Context) ([]store.Message, error) {
	var all []store.Message
	var errs []error
	for _, st := range []store.Store{c.inbound, c.outbound} {
		msgs, err := st.Load(ctx)
		if err != nil {
			if store.IsReadError(err) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		all = append(all, msgs...)
	}

	sortMessages(all)
	return all, errors.Join(errs...)
}

// sortMessages orders messages chronologically, keeping insertion order for ties.
func sortMessages(msgs []store.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}

func opFor(err error) string {
	switch {
	case store.IsReadError(err):
		return "load"
	case store.IsWriteError(err):
		return "save"
	default:
		return "other"
	}
}
