package core

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/mailbridge/internal/metrics"
	"github.com/vovakirdan/mailbridge/internal/store"
)

// DefaultPollInterval is the pause between poll iterations.
const DefaultPollInterval = time.Second

// PollerState is the lifecycle state of a Poller.
type PollerState int32

const (
	PollerIdle PollerState = iota
	PollerRunning
)

func (s PollerState) String() string {
	switch s {
	case PollerIdle:
		return "idle"
	case PollerRunning:
		return "running"
	default:
		return fmt.Sprintf("PollerState(%d)", int32(s))
	}
}

// Poller repeatedly drains a channel, hands each message to a Responder and
// submits non-empty replies on the same channel.
type Poller struct {
	id        string
	channel   *Channel
	responder Responder
	sender    store.Sender
	interval  time.Duration
	log       zerolog.Logger

	state atomic.Int32
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the pause between iterations. Non-positive values are ignored.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithSender sets the party replies are submitted as. Defaults to assistant.
func WithSender(s store.Sender) PollerOption {
	return func(p *Poller) {
		p.sender = s
	}
}

// WithPollerLogger sets the logger.
func WithPollerLogger(logger *zerolog.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.log = *logger
		}
	}
}

// NewPoller builds an idle poller.
func NewPoller(ch *Channel, r Responder, opts ...PollerOption) *Poller {
	p := &Poller{
		id:        uuid.NewString(),
		channel:   ch,
		responder: r,
		sender:    store.SenderAssistant,
		interval:  DefaultPollInterval,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With().Str("poller_id", p.id).Logger()
	return p
}

// ID returns the poller instance identifier used in logs.
func (p *Poller) ID() string {
	return p.id
}

// State reports whether the poller is running.
func (p *Poller) State() PollerState {
	return PollerState(p.state.Load())
}

// Run polls until ctx is cancelled. Cancellation is observed between
// iterations; an iteration in progress always completes. Iteration failures
// are logged and never end the loop.
func (p *Poller) Run(ctx context.Context) error {
	if p.responder == nil {
		return ErrNoResponder
	}
	if !p.state.CompareAndSwap(int32(PollerIdle), int32(PollerRunning)) {
		return ErrPollerRunning
	}
	defer p.state.Store(int32(PollerIdle))

	p.log.Info().
		Str("mailbox", p.channel.Inbound().Name()).
		Dur("interval", p.interval).
		Msg("poller started")

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			p.log.Info().Msg("poller stopped")
			return nil
		}

		// Detach so a cancel arriving mid-iteration does not abort store writes.
		if _, err := p.Tick(context.WithoutCancel(ctx)); err != nil {
			p.log.Warn().Err(err).Msg("poll iteration failed")
		}

		timer.Reset(p.interval)
		select {
		case <-ctx.Done():
			p.log.Info().Msg("poller stopped")
			return nil
		case <-timer.C:
		}
	}
}

// Tick performs a single drain, respond and submit pass and returns the
// number of drained messages. Responder and submit failures for one message
// do not prevent the rest from being handled.
func (p *Poller) Tick(ctx context.Context) (int, error) {
	defer metrics.PollIterations.Inc()

	msgs, err := p.channel.DrainUnread(ctx)
	if err != nil {
		return 0, fmt.Errorf("drain: %w", err)
	}

	var errs []error
	for _, msg := range msgs {
		p.log.Debug().
			Str("sender", string(msg.Sender)).
			Time("timestamp", msg.Timestamp).
			Msg("handling message")

		reply, err := p.respond(ctx, msg)
		if err != nil {
			metrics.ResponderErrors.Inc()
			p.log.Error().Err(err).Msg("responder failed")
			errs = append(errs, err)
			continue
		}
		if reply == "" {
			continue
		}

		if err := p.channel.Submit(ctx, p.sender, reply); err != nil {
			errs = append(errs, fmt.Errorf("submit reply: %w", err))
			continue
		}
		p.log.Debug().Str("mailbox", p.channel.Outbound().Name()).Msg("reply submitted")
	}

	return len(msgs), errors.Join(errs...)
}

func (p *Poller) respond(ctx context.Context, msg store.Message) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ResponderError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	reply, err = p.responder.Respond(ctx, msg)
	if err != nil {
		return "", &ResponderError{Err: err}
	}
	return reply, nil
}
