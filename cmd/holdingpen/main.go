// Command holdingpen is the operator CLI for the holding pen.
//
// Usage:
//
//	holdingpen reindex -t hep -t authors [-s 200] --yes-i-know
//	holdingpen get ID
//	holdingpen resolve ID --value accept|reject
//	holdingpen restart ID [--callback-pos 0,2]
//	holdingpen resume ID
//	holdingpen delete ID
//	holdingpen verify -t hep
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/finops-claw-gang/holdingpen/internal/config"
	"github.com/finops-claw-gang/holdingpen/internal/holdingpen"
	"github.com/finops-claw-gang/holdingpen/internal/observability"
)

// appLoader builds the App a command runs against.
type appLoader func(ctx context.Context) (*holdingpen.App, error)

func main() {
	if err := newRootCmd(loadApp).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(load appLoader) *cobra.Command {
	root := &cobra.Command{
		Use:          "holdingpen",
		Short:        "Inspect and operate on holding pen workflow objects",
		SilenceUsage: true,
	}
	root.AddCommand(
		newReindexCmd(load),
		newGetCmd(load),
		newResolveCmd(load),
		newRestartCmd(load),
		newResumeCmd(load),
		newDeleteCmd(load),
		newVerifyCmd(load),
	)
	return root
}

// loadApp wires an App from the environment. Logs go to stderr so command
// output stays machine-readable.
func loadApp(ctx context.Context) (*holdingpen.App, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(os.Stderr, cfg.LogLevel).With("service", "holdingpen-cli")
	slog.SetDefault(logger)

	var c client.Client
	if cfg.Mode == config.ModeProduction {
		c, err = client.Dial(client.Options{
			HostPort:  cfg.TemporalAddress,
			Namespace: cfg.TemporalNamespace,
			Logger:    observability.NewTemporalSlogAdapter(logger),
		})
		if err != nil {
			return nil, fmt.Errorf("unable to create Temporal client: %w", err)
		}
	}

	app, err := holdingpen.Build(ctx, cfg, c, logger)
	if err != nil {
		if c != nil {
			c.Close()
		}
		return nil, err
	}
	if c != nil {
		app.OnClose(c.Close)
	}
	return app, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid object id %q", raw)
	}
	return id, nil
}
