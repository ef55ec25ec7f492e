package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/elguiriashing/amsterdam/internal/api"
	"github.com/elguiriashing/amsterdam/internal/mcp"
)

// This MCP server talks to a running wipebot over its local HTTP API.
// Set WIPEBOT_API_URL, or API_PORT for the default loopback address.

func main() {
	// Logs go to stderr; stdout carries the MCP stream
	log.SetOutput(os.Stderr)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	apiURL := os.Getenv("WIPEBOT_API_URL")
	if apiURL == "" {
		port := 9876
		if val := os.Getenv("API_PORT"); val != "" {
			if parsed, err := strconv.Atoi(val); err == nil {
				port = parsed
			}
		}
		apiURL = api.LocalURL(port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	server := mcp.NewServer(api.NewClient(apiURL))
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
