package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mailbridge/internal/app"
	"github.com/vovakirdan/mailbridge/internal/store"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Reset the mailboxes and play a scripted conversation",
	Long: `Reset both mailboxes and write a short user/assistant conversation into
them. Open the web shell afterwards to look at it.`,
	RunE: runDemo,
}

var demoPause time.Duration

// demoTurns alternates user and assistant lines.
var demoTurns = [][2]string{
	{"Hello! Are you there?", "Hello! Yes, I'm here and ready to help!"},
	{"Great! I need help organizing my folders.", "I can help with that! What exactly do you want to organize?"},
	{"My desktop is full of files, I need to sort them.", "I can create folders by file type and sort everything automatically."},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().DurationVar(&demoPause, "pause", 500*time.Millisecond, "pause between turns")
}

func runDemo(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	mb, err := app.OpenMailboxes(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer mb.Close()

	if err := playDemo(ctx, cmd.OutOrStdout(), mb, demoPause); err != nil {
		return err
	}

	for _, st := range []store.Store{mb.Inbox, mb.Outbox} {
		if err := dumpMailbox(ctx, cmd.OutOrStdout(), st); err != nil {
			return err
		}
	}
	return nil
}

// playDemo writes demoTurns through both channels. Earlier turns are
// consumed as the conversation moves on, so only the last turn of each side
// stays unread.
func playDemo(ctx context.Context, w io.Writer, mb *app.Mailboxes, pause time.Duration) error {
	if err := mb.Reset(ctx); err != nil {
		return fmt.Errorf("reset mailboxes: %w", err)
	}

	user, assistant := mb.UserChannel(), mb.AssistantChannel()
	for i, turn := range demoTurns {
		if i > 0 {
			if _, err := assistant.DrainUnread(ctx); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "[USER] %s\n", turn[0])
		if err := user.Submit(ctx, store.SenderUser, turn[0]); err != nil {
			return err
		}
		sleep(ctx, pause)

		if i > 0 {
			if _, err := user.DrainUnread(ctx); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "[ASSISTANT] %s\n", turn[1])
		if err := assistant.Submit(ctx, store.SenderAssistant, turn[1]); err != nil {
			return err
		}
		sleep(ctx, pause)
	}
	return nil
}

func dumpMailbox(ctx context.Context, w io.Writer, st store.Store) error {
	msgs, err := st.Load(ctx)
	if err != nil {
		return err
	}
	data, err := store.Encode(msgs)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s:\n%s", st.Name(), data)
	return nil
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
