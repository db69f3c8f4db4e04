// Command mcp-holdingpen runs the MCP tool server for holding pen operations.
// Uses stdio transport for integration with AI assistants.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.temporal.io/sdk/client"

	"github.com/finops-claw-gang/holdingpen/internal/config"
	"github.com/finops-claw-gang/holdingpen/internal/holdingpen"
	"github.com/finops-claw-gang/holdingpen/internal/mcpserver"
	"github.com/finops-claw-gang/holdingpen/internal/observability"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// stdout carries the protocol; logs go to stderr.
	logger := observability.NewLogger(os.Stderr, cfg.LogLevel).With("service", "holdingpen-mcp")
	slog.SetDefault(logger)
	ctx := context.Background()

	var c client.Client
	if cfg.Mode == config.ModeProduction {
		c, err = client.Dial(client.Options{
			HostPort:  cfg.TemporalAddress,
			Namespace: cfg.TemporalNamespace,
			Logger:    observability.NewTemporalSlogAdapter(logger),
		})
		if err != nil {
			log.Fatalf("unable to create Temporal client: %v", err)
		}
		defer c.Close()
	}

	app, err := holdingpen.Build(ctx, cfg, c, logger)
	if err != nil {
		log.Fatalf("build: %v", err)
	}
	defer app.Close()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "holdingpen",
		Version: "v1.0.0",
	}, nil)
	mcpserver.RegisterTools(server, app.Service)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
