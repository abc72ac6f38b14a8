package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mailbridge/internal/app"
	"github.com/vovakirdan/mailbridge/internal/core"
	"github.com/vovakirdan/mailbridge/internal/store"
)

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Submit one message",
	Long: `Submit a message as the user (into the assistant inbox) or as the
assistant (into the assistant outbox).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Print and consume unread messages for one side",
	RunE:  runRead,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the whole conversation in timestamp order",
	RunE:  runHistory,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create empty mailboxes if they do not exist",
	RunE:  runInit,
}

var (
	sendAs string
	readAs string
)

func init() {
	rootCmd.AddCommand(sendCmd, readCmd, historyCmd, initCmd)
	sendCmd.Flags().StringVar(&sendAs, "as", string(store.SenderUser), "sending party (user or assistant)")
	readCmd.Flags().StringVar(&readAs, "as", string(store.SenderAssistant), "reading party (user or assistant)")
}

// channelFor returns the channel a party reads from and writes to.
func channelFor(mb *app.Mailboxes, side string) (*core.Channel, store.Sender, error) {
	switch store.Sender(side) {
	case store.SenderUser:
		return mb.UserChannel(), store.SenderUser, nil
	case store.SenderAssistant:
		return mb.AssistantChannel(), store.SenderAssistant, nil
	default:
		return nil, "", fmt.Errorf("%w: %q", store.ErrInvalidSender, side)
	}
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mb, err := app.OpenMailboxes(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer mb.Close()

	ch, sender, err := channelFor(mb, sendAs)
	if err != nil {
		return err
	}
	text := strings.Join(args, " ")
	if err := ch.Submit(ctx, sender, text); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "sent to %s\n", ch.Outbound().Name())
	return nil
}

func runRead(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	mb, err := app.OpenMailboxes(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer mb.Close()

	ch, _, err := channelFor(mb, readAs)
	if err != nil {
		return err
	}
	msgs, err := ch.DrainUnread(ctx)
	if err != nil {
		if !store.IsReadError(err) {
			return err
		}
		logger.Warn().Err(err).Msg("mailbox unreadable, nothing to read")
	}
	if len(msgs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no new messages")
		return nil
	}
	printMessages(cmd.OutOrStdout(), msgs)
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	mb, err := app.OpenMailboxes(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer mb.Close()

	msgs, err := mb.UserChannel().History(ctx)
	if err != nil {
		return err
	}
	printMessages(cmd.OutOrStdout(), msgs)
	return nil
}

func runInit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	mb, err := app.OpenMailboxes(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer mb.Close()

	if err := mb.Init(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "mailboxes ready: %s, %s\n", mb.Inbox.Name(), mb.Outbox.Name())
	return nil
}

func printMessages(w io.Writer, msgs []store.Message) {
	for _, msg := range msgs {
		ts := msg.TimestampText()
		if !msg.Timestamp.IsZero() {
			ts = msg.Timestamp.Format(time.DateTime)
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", ts, msg.Sender, msg.Message)
	}
}
