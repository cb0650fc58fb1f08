// Command fitplay-mcp exposes a FitPlay server's data to MCP clients over
// stdio. It reads through the server's REST API, so it runs as whichever
// user the server resolves the connection to.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	fpmcp "github.com/claude/fitplay/internal/mcp"
	"github.com/claude/fitplay/internal/models"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "FitPlay server URL")
	flag.Parse()

	// stdout carries the protocol; logs go to stderr
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ds := fpmcp.NewHTTPClient(strings.TrimRight(*serverURL, "/"))
	s := fpmcp.New(ds, Version, models.DefaultWeightKg, log)

	log.Info("fitplay-mcp serving on stdio", "server", *serverURL, "version", Version)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
