package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/claude/fitplay/internal/upload"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	serverURL string
	weightKg  float64
	logFile   string
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fitplay-player",
		Short:         "Play FitPlay workouts in the terminal",
		Long:          `fitplay-player runs challenge days and custom workouts from a FitPlay server with a live timer, then records the session.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("FITPLAY_SERVER", "http://localhost:8080"), "FitPlay server URL")
	rootCmd.PersistentFlags().Float64Var(&weightKg, "weight", 0, "body weight in kg when none is recorded on the server (default: the server's configured default)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write session logs to this file")

	rootCmd.AddCommand(NewChallengeCommand())
	rootCmd.AddCommand(NewCustomCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewHistoryCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// fallbackWeight is the weight used when the user has none recorded: the
// --weight flag, else the server's configured default. Zero leaves the
// choice to the session player.
func fallbackWeight(ctx context.Context, client *upload.Client, log *slog.Logger) float64 {
	if weightKg > 0 {
		return weightKg
	}
	p, err := client.Profile(ctx)
	if err != nil {
		log.Warn("fetching profile for default weight", "error", err)
		return 0
	}
	return p.DefaultWeightKg
}

func newClient() *upload.Client {
	return upload.NewClient(strings.TrimRight(serverURL, "/"), "")
}

// newLogger returns a logger that stays off the terminal the TUI owns.
func newLogger() (*slog.Logger, func(), error) {
	if logFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return log, func() { f.Close() }, nil
}
