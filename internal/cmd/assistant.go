package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mailbridge/internal/app"
	"github.com/vovakirdan/mailbridge/internal/core"
	"github.com/vovakirdan/mailbridge/internal/responder"
	"github.com/vovakirdan/mailbridge/internal/store"
)

var assistantCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Answer user messages with a built-in responder",
	Long: `Run the assistant side of the conversation.

Every poll interval the assistant inbox is drained; each new message is
printed and answered by the selected responder. A greeting is sent on start
and a farewell on Ctrl+C.

Examples:
  # Keyword-based example assistant
  mailbridge assistant

  # Echo every message, polling twice a second
  mailbridge assistant --responder echo --interval 500ms`,
	RunE: runAssistant,
}

var (
	assistantResponder string
	assistantInterval  time.Duration
	assistantQuiet     bool
)

func init() {
	rootCmd.AddCommand(assistantCmd)
	assistantCmd.Flags().StringVarP(&assistantResponder, "responder", "r", "", "responder (keyword, echo, upper, none)")
	assistantCmd.Flags().DurationVar(&assistantInterval, "interval", 0, "poll interval")
	assistantCmd.Flags().BoolVar(&assistantQuiet, "quiet", false, "skip greeting and farewell messages")
}

func runAssistant(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	name := cfg.Responder
	if assistantResponder != "" {
		name = assistantResponder
	}
	r, err := responder.ByName(name)
	if err != nil {
		return err
	}

	interval := cfg.PollInterval
	if assistantInterval > 0 {
		interval = assistantInterval
	}

	mb, err := app.OpenMailboxes(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer mb.Close()

	ch := mb.AssistantChannel()
	out := cmd.OutOrStdout()

	if !assistantQuiet && cfg.Greeting != "" {
		if err := ch.Submit(ctx, store.SenderAssistant, cfg.Greeting); err != nil {
			logger.Warn().Err(err).Msg("failed to send greeting")
		}
	}

	poller := core.NewPoller(ch, responder.Chain(responder.Printer(out), r),
		core.WithInterval(interval),
		core.WithPollerLogger(logger),
	)
	logger.Info().
		Str("responder", name).
		Str("poller_id", poller.ID()).
		Msg("assistant waiting for messages, press Ctrl+C to stop")

	if err := poller.Run(ctx); err != nil {
		return err
	}

	if !assistantQuiet && cfg.Farewell != "" {
		if err := ch.Submit(context.WithoutCancel(ctx), store.SenderAssistant, cfg.Farewell); err != nil {
			logger.Warn().Err(err).Msg("failed to send farewell")
		}
	}
	return nil
}
