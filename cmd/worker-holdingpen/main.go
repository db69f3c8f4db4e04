// Command worker-holdingpen runs the Temporal workers for continuation,
// bulk verb and reindex tasks. HOLDINGPEN_WORKER_QUEUES selects the
// queues ("tasks", "indexer"); by default both are served.
package main

import (
	"context"
	"log"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"golang.org/x/sync/errgroup"

	"github.com/finops-claw-gang/holdingpen/internal/config"
	"github.com/finops-claw-gang/holdingpen/internal/connectors/engine"
	"github.com/finops-claw-gang/holdingpen/internal/holdingpen"
	"github.com/finops-claw-gang/holdingpen/internal/observability"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/activities"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/queues"
	"github.com/finops-claw-gang/holdingpen/internal/testutil"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := observability.InitLogger("holdingpen-worker", cfg.LogLevel)

	if cfg.OTelEnabled {
		shutdown, err := observability.InitTracer(context.Background(), observability.TracerConfig{
			Service:     "holdingpen-worker",
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

	names, err := queues.ParseQueues(cfg.WorkerQueues)
	if err != nil {
		log.Fatalf("queues: %v", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    observability.NewTemporalSlogAdapter(logger),
	})
	if err != nil {
		log.Fatalf("unable to create Temporal client: %v", err)
	}
	defer c.Close()

	app, err := holdingpen.Build(context.Background(), cfg, c, logger)
	if err != nil {
		log.Fatalf("build: %v", err)
	}
	defer app.Close()

	var eng engine.Continuer
	switch cfg.Mode {
	case config.ModeProduction:
		eng = engine.New(cfg.EngineEndpoint)
	default: // stub mode
		eng = &testutil.StubEngine{}
	}

	acts := &activities.Activities{
		Engine:  eng,
		Records: app.Adapter,
		Limiter: app.Limiter,
		Metrics: app.Metrics,
	}

	workers, err := queues.NewWorkers(c, names, acts)
	if err != nil {
		log.Fatalf("workers: %v", err)
	}

	interrupt := worker.InterruptCh()
	stop := make(chan any)

	var g errgroup.Group
	for name, w := range workers {
		g.Go(func() error {
			logger.Info("starting worker", "queue", name, "mode", cfg.Mode)
			return w.Run(stop)
		})
	}

	go func() {
		<-interrupt
		close(stop)
	}()

	if err := g.Wait(); err != nil {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}
}
