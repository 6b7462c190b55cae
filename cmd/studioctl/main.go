package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"studio/internal/bootstrap"
	"studio/internal/infra"
	"studio/internal/studio"
)

var rootCmd = &cobra.Command{
	Use:           "studioctl",
	Short:         "Operate the creative studio from the command line.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(promptCmd, sendCmd, sessionsCmd, creditsCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withStudio opens the configured store, builds the studio and closes the
// store after fn returns.
func withStudio(ctx context.Context, fn func(*studio.Studio) error) error {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	logger := infra.NewLogger("cli").Level(cliLogLevel()).With().Str("cmd", "studioctl").Logger()

	kv, closeKV, err := bootstrap.OpenKV(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeKV()

	st, err := bootstrap.NewStudio(ctx, cfg, kv, &logger)
	if err != nil {
		return err
	}
	return fn(st)
}
