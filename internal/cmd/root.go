// Package cmd implements the mailbridge command line.
package cmd

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/mailbridge/internal/config"
	applog "github.com/vovakirdan/mailbridge/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "mailbridge",
	Short: "File-backed mailbox between a user and an assistant",
	Long: `mailbridge lets a user and an assistant exchange text messages through two
shared mailboxes. Each side polls the other's mailbox and marks what it
consumed as read.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var (
	cfgFile     string
	flagLevel   string
	flagDataDir string
	flagBackend string
	flagLock    bool

	cfg    config.Config
	logger *zerolog.Logger = applog.Disabled()
)

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./mailbridge.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding the mailbox files")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend (file, sqlite, redis, memory)")
	rootCmd.PersistentFlags().BoolVar(&flagLock, "lock", false, "guard file mailboxes with an advisory lock")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	bootLogger := applog.New(flagLevel)

	loaded, _, err := config.Load(bootLogger, cfgFile)
	if err != nil {
		return err
	}
	loaded.UpdateFrom(config.Config{
		LogLevel: flagLevel,
		DataDir:  flagDataDir,
		Backend:  flagBackend,
		Lock:     flagLock,
	})
	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	logger = applog.New(cfg.LogLevel)
	return nil
}
