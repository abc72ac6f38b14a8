package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/mailbridge/internal/app"
	"github.com/vovakirdan/mailbridge/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web chat page and conversation API",
	Long: `Serve a web page for the user side of the conversation.

Messages typed on the page are stored in the assistant inbox; the page polls
the conversation every second. With --embedded-assistant a responder runs in
the same process.`,
	RunE: runServe,
}

var (
	serveAddr      string
	serveEmbedded  bool
	serveResponder string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address")
	serveCmd.Flags().BoolVar(&serveEmbedded, "embedded-assistant", false, "run an assistant poller in this process")
	serveCmd.Flags().StringVar(&serveResponder, "responder", "", "responder for the embedded assistant (keyword, echo, upper, none)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	c := cfg
	c.UpdateFrom(config.Config{
		Addr:              serveAddr,
		EmbeddedAssistant: serveEmbedded,
		Responder:         serveResponder,
	})

	application, err := app.New(cmd.Context(), &c, logger)
	if err != nil {
		return err
	}

	logger.Info().Str("url", "http://"+c.Addr).Msg("starting web shell")
	if err := application.Run(cmd.Context()); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
