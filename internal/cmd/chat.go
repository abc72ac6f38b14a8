package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mailbridge/internal/app"
	"github.com/vovakirdan/mailbridge/internal/core"
	"github.com/vovakirdan/mailbridge/internal/responder"
	"github.com/vovakirdan/mailbridge/internal/store"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant from the terminal",
	Long: `Chat as the user from the terminal. Each line typed is sent to the
assistant inbox; assistant replies are printed as they arrive.
Ctrl+C or end of input exits.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mb, err := app.OpenMailboxes(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer mb.Close()

	if err := mb.Init(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to initialize mailboxes")
	}

	ch := mb.UserChannel()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Type messages and press Enter to send. Ctrl+C to exit.")

	poller := core.NewPoller(ch, responder.Printer(out),
		core.WithSender(store.SenderUser),
		core.WithInterval(cfg.PollInterval),
		core.WithPollerLogger(logger),
	)
	done := make(chan error, 1)
	go func() {
		done <- poller.Run(ctx)
	}()

	writeLoop(ctx, cmd.InOrStdin(), ch)

	cancel()
	return <-done
}

// writeLoop submits every non-blank input line as a user message until ctx
// ends or input is exhausted.
func writeLoop(ctx context.Context, in io.Reader, ch *core.Channel) {
	lines := scanLines(ctx, in)
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if err := ch.Submit(ctx, store.SenderUser, text); err != nil {
				logger.Error().Err(err).Msg("failed to send message")
			}
		}
	}
}

// scanLines reads in line by line on its own goroutine. The channel is closed
// at end of input or once ctx is done; a read already blocked on in is only
// released when in returns.
func scanLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if ctx.Err() != nil {
				return
			}
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
