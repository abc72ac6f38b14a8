package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/mailbridge/internal/config"
	"github.com/vovakirdan/mailbridge/internal/core"
	"github.com/vovakirdan/mailbridge/internal/responder"
	transporthttp "github.com/vovakirdan/mailbridge/internal/transport/http"
)

// App wires the mailboxes, the web shell and an optional in-process assistant.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	mailboxes       *Mailboxes
	poller          *core.Poller
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	mb, err := OpenMailboxes(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open mailboxes: %w", err)
	}

	if err := mb.Init(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to initialize mailboxes")
	}

	a := &App{
		server:          transporthttp.NewServer(mb.UserChannel(), cfg, logger),
		shutdownTimeout: cfg.ShutdownTimeout,
		mailboxes:       mb,
		log:             logger,
	}

	if cfg.EmbeddedAssistant {
		r, err := responder.ByName(cfg.Responder)
		if err != nil {
			_ = mb.Close()
			return nil, err
		}
		a.poller = core.NewPoller(mb.AssistantChannel(), r,
			core.WithInterval(cfg.PollInterval),
			core.WithPollerLogger(logger),
		)
	}

	return a, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// Run starts the HTTP server (and the embedded assistant, if configured) and
// blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	g, gctx := errgroup.WithContext(ctx)

	if a.poller != nil {
		g.Go(func() error {
			return a.poller.Run(gctx)
		})
	}

	g.Go(func() error {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// cleanup closes the mailboxes.
func (a *App) cleanup() {
	if a.mailboxes == nil {
		return
	}
	if err := a.mailboxes.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close mailboxes")
	} else {
		a.log.Info().Msg("mailboxes closed")
	}
}
