package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/quizgame/internal/factory"
)

var (
	cfg  *Config
	app  *factory.App
	tty  *Terminal
	out  *Output
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "quizgame",
		Short: "Terminal client for the quiz game",
		Long: `quizgame is a terminal client for the quiz game server.

It covers accounts, single-player games with optional timer and hints,
head-to-head battles (private codes or matchmaking), the cosmetics shop
and the leaderboards. Every flag can also be set through a QUIZGAME_<FLAG>
environment variable, e.g. QUIZGAME_SERVER.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			bindEnv(cmd.Flags())
			if err := cfg.validate(); err != nil {
				return err
			}

			out = NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			tty = NewTerminal(cmd.InOrStdin(), cmd.ErrOrStderr(), cfg.AssumeYes)

			fc := cfg.factoryConfig()
			fc.Prompter = tty
			fc.Logger = cfg.newLogger(cmd.ErrOrStderr())

			var err error
			app, err = factory.New(cmd.Context(), fc)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.SaveProfile(context.WithoutCancel(cmd.Context()))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL, defaults to the profile's server (env: QUIZGAME_SERVER)")
	pf.StringVar(&cfg.WSPath, "ws-path", cfg.WSPath, "Battle channel path (env: QUIZGAME_WS_PATH)")
	pf.StringVar(&cfg.Profile, "profile", cfg.Profile, "Client profile holding the session (env: QUIZGAME_PROFILE)")
	pf.StringVar(&cfg.Storage, "storage", cfg.Storage, "Profile store: memory, file, redis (env: QUIZGAME_STORAGE)")
	pf.StringVar(&cfg.StorageDir, "storage-dir", cfg.StorageDir, "Profile directory for file storage (env: QUIZGAME_STORAGE_DIR)")
	pf.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for redis storage (env: QUIZGAME_REDIS_URL)")
	pf.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json (env: QUIZGAME_OUTPUT)")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error (env: QUIZGAME_LOG_LEVEL)")
	pf.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output (env: QUIZGAME_VERBOSE)")
	pf.BoolVarP(&cfg.AssumeYes, "yes", "y", cfg.AssumeYes, "Answer yes to every confirmation (env: QUIZGAME_YES)")

	// Add subcommands
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newCategoriesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newResumeCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newBattleCmd())
	rootCmd.AddCommand(newShopCmd())
	rootCmd.AddCommand(newHintsCmd())
	rootCmd.AddCommand(newDevCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newProfileCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := NewRootCmd().ExecuteContext(ctx)
	if app != nil {
		_ = app.Close()
	}
	if err != nil {
		if out == nil {
			out = NewOutput("text", os.Stdout, os.Stderr)
		}
		out.PrintError(err)
		os.Exit(1)
	}
}
