package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/claude/fitplay/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "FitPlay server URL (e.g. https://fitplay.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("FITPLAY_AUTH_API_KEY"), "API key for catalog uploads")
	catalogPath := flag.String("path", "", "path to catalog directory")
	dryRun := flag.Bool("dry-run", false, "validate files but don't send to server")
	reset := flag.Bool("reset", false, "forget previously uploaded files and send everything again")
	status := flag.Bool("status", false, "list files already seeded and exit")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("fitplay-seed", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *status {
		printStatus(log)
		return
	}

	if *catalogPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: fitplay-seed -server <URL> -api-key <key> -path <catalog dir> [-dry-run] [-reset] | -status\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if !*dryRun && (*serverURL == "" || *apiKey == "") {
		fmt.Fprintf(os.Stderr, "Error: -server and -api-key are required (or use -dry-run)\n")
		os.Exit(1)
	}

	*serverURL = strings.TrimRight(*serverURL, "/")

	info, err := os.Stat(*catalogPath)
	if err != nil || !info.IsDir() {
		log.Error("catalog directory not found", "path", *catalogPath)
		os.Exit(1)
	}

	state := openState(log)
	defer state.Close()

	if *reset {
		if err := state.Reset(); err != nil {
			log.Error("failed to reset state", "error", err)
			os.Exit(1)
		}
		log.Info("upload state cleared")
	}

	// Client is nil in dry-run mode
	var client *upload.Client
	if !*dryRun {
		client = upload.NewClient(*serverURL, *apiKey)
	} else {
		log.Info("DRY RUN mode: files will be validated but not sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := upload.New(client, state, *catalogPath, *dryRun, log).Run(ctx)
	if err != nil {
		log.Error("upload failed", "error", err)
		fmt.Println(stats.Summary())
		os.Exit(1)
	}

	fmt.Println(stats.Summary())
	log.Info("upload complete")
}

func openState(log *slog.Logger) *upload.StateDB {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".fitplay-seed"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	return state
}

func printStatus(log *slog.Logger) {
	state := openState(log)
	defer state.Close()

	files, err := state.List()
	if err != nil {
		log.Error("failed to read state", "error", err)
		return
	}
	fmt.Println()
	fmt.Println("=== Seeded Files ===")
	for _, f := range files {
		fmt.Printf("  %-32s %3d exercises  %2d challenges  %s\n",
			f.Path, f.Exercises, f.Challenges, f.SeededAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("  %d file(s)\n\n", len(files))
}
