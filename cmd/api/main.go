// Command api runs the HTTP API server for the holding pen.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.temporal.io/sdk/client"

	"github.com/finops-claw-gang/holdingpen/internal/api"
	"github.com/finops-claw-gang/holdingpen/internal/config"
	"github.com/finops-claw-gang/holdingpen/internal/holdingpen"
	"github.com/finops-claw-gang/holdingpen/internal/observability"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger("holdingpen-api", cfg.LogLevel)
	ctx := context.Background()

	if cfg.OTelEnabled {
		shutdown, err := observability.InitTracer(ctx, observability.TracerConfig{
			Service:     "holdingpen-api",
			Version:     version,
			Mode:        string(cfg.Mode),
			SampleRatio: cfg.OTelSampleRatio,
		})
		if err != nil {
			logger.Error("otel init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Stub mode runs tasks inline and needs no Temporal server.
	var c client.Client
	if cfg.Mode == config.ModeProduction {
		c, err = client.Dial(client.Options{
			HostPort:  cfg.TemporalAddress,
			Namespace: cfg.TemporalNamespace,
			Logger:    observability.NewTemporalSlogAdapter(logger),
		})
		if err != nil {
			logger.Error("unable to create Temporal client", "error", err)
			os.Exit(1)
		}
		defer c.Close()
	}

	app, err := holdingpen.Build(ctx, cfg, c, logger)
	if err != nil {
		logger.Error("build failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	oidcCfg := api.OIDCConfig{
		IssuerURL: cfg.OIDCIssuer,
		Audience:  cfg.OIDCAudience,
		Enabled:   cfg.OIDCEnabled(),
	}
	srv, err := api.New(app.Service, cfg.CORSOrigins, oidcCfg, api.WithLogger(logger))
	if err != nil {
		logger.Error("api init failed", "error", err)
		os.Exit(1)
	}

	var handler http.Handler = srv
	if cfg.OTelEnabled {
		handler = otelhttp.NewHandler(handler, "holdingpen-api")
	}

	addr := ":" + cfg.APIPort
	logger.Info("starting API server", "addr", addr, "mode", cfg.Mode, "oidc_enabled", oidcCfg.Enabled)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
