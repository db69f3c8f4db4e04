package holdingpen

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"

	"github.com/finops-claw-gang/holdingpen/internal/actions"
	"github.com/finops-claw-gang/holdingpen/internal/config"
	awsauth "github.com/finops-claw-gang/holdingpen/internal/connectors/aws"
	"github.com/finops-claw-gang/holdingpen/internal/definitions"
	"github.com/finops-claw-gang/holdingpen/internal/observability"
	"github.com/finops-claw-gang/holdingpen/internal/ratelimit"
	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/rows"
	"github.com/finops-claw-gang/holdingpen/internal/search"
	"github.com/finops-claw-gang/holdingpen/internal/store"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/tasks"
	"github.com/finops-claw-gang/holdingpen/internal/testutil"
	"github.com/finops-claw-gang/holdingpen/internal/verifier"
)

// App is a fully wired holding pen.
type App struct {
	Service *Service
	Adapter *record.Adapter
	Store   store.WorkflowStore
	Index   search.IndexClient
	Routes  search.Routes
	Queue   tasks.Queue
	Limiter *ratelimit.ServiceLimiter
	Metrics *observability.Metrics

	closers []func()
}

// Close releases the connections opened by Build.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// OnClose registers f to run when the App is closed.
func (a *App) OnClose(f func()) {
	a.closers = append(a.closers, f)
}

// Build wires an App from cfg. In production mode it connects to Postgres,
// Elasticsearch and the given Temporal client; in stub mode it runs on the
// in-memory store and index seeded from fixtures. temporal may be nil in
// stub mode, in which case tasks run inline.
func Build(ctx context.Context, cfg config.Config, temporal client.Client, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{}

	hpFile := cfg.HoldingPenFile
	if hpFile == "" && cfg.Mode == config.ModeStub {
		hpFile = filepath.Join(testutil.FixturesDir(), "holdingpen.yaml")
	}
	hp, err := config.LoadHoldingPen(hpFile)
	if err != nil {
		return nil, err
	}
	defs, err := Definitions(hp)
	if err != nil {
		return nil, err
	}
	routes := Routes(hp)

	metrics, err := observability.NewMetrics()
	if err != nil {
		logger.Warn("metrics disabled", "error", err)
	}
	app.Metrics = metrics
	app.Limiter = ratelimit.NewServiceLimiter(ratelimit.ServiceRates{
		Search: cfg.SearchRate,
		Engine: cfg.EngineRate,
	})

	var (
		st  store.WorkflowStore
		idx search.IndexClient
	)
	switch cfg.Mode {
	case config.ModeProduction:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect store: %w", err)
		}
		app.closers = append(app.closers, pool.Close)
		pg := store.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			app.Close()
			return nil, err
		}
		st = pg

		idx, err = newElasticClient(ctx, cfg)
		if err != nil {
			app.Close()
			return nil, err
		}

	default: // stub mode
		mem := testutil.NewMemoryStore()
		objs, err := testutil.LoadObjects(testutil.FixturesDir())
		if err != nil {
			return nil, fmt.Errorf("load fixtures: %w", err)
		}
		mem.Seed(objs...)
		st = mem
		idx = testutil.NewStubIndex()
	}

	var (
		queue tasks.Queue
		stubQ *testutil.StubQueue
	)
	if temporal != nil {
		queue = tasks.New(temporal, metrics)
	} else {
		stubQ = testutil.NewStubQueue()
		queue = stubQ
	}

	acts := actions.NewRegistry()
	if err := acts.Register(actions.ApprovalName, actions.NewApproval(st, queue)); err != nil {
		app.Close()
		return nil, err
	}

	adapter := record.NewAdapter(record.Deps{
		Store:       st,
		Index:       idx,
		Definitions: defs,
		Actions:     acts,
		Queue:       queue,
		Routes:      routes,
		Limiter:     app.Limiter,
		Logger:      logger,
		Metrics:     metrics,
	})
	st.Subscribe(adapter.Receivers())
	if stubQ != nil {
		stubQ.Records = adapter
	}

	var cache rows.Cache
	if cfg.RedisAddr != "" {
		rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		app.closers = append(app.closers, func() { _ = rc.Close() })
		cache = rows.NewRedisCache(rc, rows.WithPrefix(cfg.CachePrefix), rows.WithTTL(cfg.RowCacheTTL))
	}
	formatter := rows.NewFormatter(defs, acts, cache, logger)
	st.Subscribe(formatter)

	if cfg.Mode == config.ModeStub {
		// The stub index starts empty; fill it from the seeded store.
		ids, err := st.IDsByDataType(ctx, routes.DataTypes())
		if err == nil {
			res := adapter.Reindex(ctx, ids)
			logger.Info("stub index seeded", "success", res.Success, "skipped", res.Skipped)
		}
	}

	app.Store = st
	app.Index = idx
	app.Routes = routes
	app.Queue = queue
	app.Adapter = adapter
	app.Service = NewService(Deps{
		Adapter:     adapter,
		Store:       st,
		Searcher:    search.NewSearcher(idx, routes, cfg.MaxResultWindow),
		Rows:        formatter,
		Actions:     acts,
		Definitions: defs,
		Routes:      routes,
		Queue:       queue,
		Budget:      ratelimit.NewActionBudget(cfg.BulkBudget, cfg.BulkWindow),
		Logger:      logger,
		Checker:     verifier.NewChecker(st, idx, routes, adapter, cfg.MaxResultWindow),
	})
	return app, nil
}

func newElasticClient(ctx context.Context, cfg config.Config) (*search.ElasticClient, error) {
	ec := search.ElasticConfig{
		Addresses: cfg.SearchURLs,
		Username:  cfg.SearchUsername,
		Password:  cfg.SearchPassword,
	}
	if cfg.SearchSigV4 {
		awsCfg, err := awsauth.NewAWSConfig(ctx, cfg.AWSRegion, cfg.AWSProfile, cfg.SearchRoleARN)
		if err != nil {
			return nil, err
		}
		ec.Transport = awsauth.NewSigningTransport(http.DefaultTransport, awsCfg, awsauth.ServiceES)
	}
	return search.NewElasticClient(ec)
}

// Definitions builds the workflow definitions registry from hp.
func Definitions(hp config.HoldingPen) (*definitions.Registry, error) {
	defs := make([]definitions.Definition, 0, len(hp.Workflows))
	for _, wf := range hp.Workflows {
		defs = append(defs, definitions.Definition{
			Class:       wf.Class,
			Name:        wf.Name,
			DataType:    wf.DataType,
			Title:       wf.Title,
			Description: wf.Description,
		})
	}
	return definitions.NewRegistry(defs...)
}

// Routes builds the data type routing table from hp.
func Routes(hp config.HoldingPen) search.Routes {
	routes := make(search.Routes, len(hp.DataTypes))
	for name, r := range hp.DataTypes {
		routes[name] = search.Route{Index: r.SearchIndex, DocType: r.SearchType}
	}
	return routes
}
