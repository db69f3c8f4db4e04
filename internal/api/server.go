// Package api serves the holding pen over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/finops-claw-gang/holdingpen/internal/agui"
	"github.com/finops-claw-gang/holdingpen/internal/holdingpen"
	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/rows"
	"github.com/finops-claw-gang/holdingpen/internal/search"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/tasks"
	"github.com/finops-claw-gang/holdingpen/internal/uischema"
	"github.com/finops-claw-gang/holdingpen/internal/verifier"
)

// Backend is the holding pen as seen by the HTTP layer.
type Backend interface {
	Get(ctx context.Context, id int64) (*record.Record, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*record.Record, error)
	Delete(ctx context.Context, id int64) error
	Apply(ctx context.Context, id int64, verb string, args map[string]any) (any, error)
	BulkApply(ctx context.Context, user string, ids []int64, verb string, args map[string]any) (string, error)
	List(ctx context.Context, p search.Params, base *url.URL) (*holdingpen.Listing, error)
	Row(ctx context.Context, id int64) (rows.Row, error)
	View(ctx context.Context, id int64, listing *search.Params) (*record.Record, uischema.UISchema, error)
	DataTypes() []string
	WorkflowNames() []string
	Tasks(ctx context.Context, opts tasks.ListOptions) ([]tasks.TaskSummary, error)
	Task(ctx context.Context, taskID string) (*tasks.TaskSummary, error)
	Verify(ctx context.Context, dataTypes []string) ([]verifier.Report, error)
}

var _ Backend = (*holdingpen.Service)(nil)

// Server is the HTTP API server for the holding pen.
type Server struct {
	backend Backend
	stream  agui.StreamConfig
	logger  *slog.Logger
	mux     *http.ServeMux
	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithStreamConfig overrides the SSE polling settings.
func WithStreamConfig(cfg agui.StreamConfig) Option {
	return func(s *Server) { s.stream = cfg }
}

// WithLogger sets the access logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New creates a Server. When oidcCfg is enabled every route except
// /api/v1/health requires a valid bearer token.
func New(b Backend, corsOrigins []string, oidcCfg OIDCConfig, opts ...Option) (*Server, error) {
	s := &Server{backend: b, stream: agui.DefaultConfig(), logger: slog.Default(), mux: http.NewServeMux()}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()

	var h http.Handler = s.mux
	if oidcCfg.Enabled {
		provider, err := oidc.NewProvider(context.Background(), oidcCfg.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("oidc discovery: %w", err)
		}
		h = oidcAuth(provider, oidcCfg.Audience)(h)
	}
	s.handler = requestID(logging(s.logger, cors(corsOrigins, h)))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/data-types", s.handleDataTypes)
	s.mux.HandleFunc("GET /api/v1/workflow-names", s.handleWorkflowNames)

	s.mux.HandleFunc("GET /api/v1/workflows", s.handleList)
	s.mux.HandleFunc("POST /api/v1/workflows/actions/{verb}", s.handleBulkAction)
	s.mux.HandleFunc("GET /api/v1/workflows/{id}", s.handleGet)
	s.mux.HandleFunc("PUT /api/v1/workflows/{id}", s.handleUpdate)
	s.mux.HandleFunc("DELETE /api/v1/workflows/{id}", s.handleDelete)
	s.mux.HandleFunc("GET /api/v1/workflows/{id}/row", s.handleRow)
	s.mux.HandleFunc("GET /api/v1/workflows/{id}/ui", s.handleUI)
	s.mux.HandleFunc("POST /api/v1/workflows/{id}/action/{verb}", s.handleAction)
	s.mux.HandleFunc("GET /api/v1/workflows/{id}/stream", agui.StreamHandler(s.backend, s.stream))

	s.mux.HandleFunc("GET /api/v1/tasks", s.handleListTasks)
	s.mux.HandleFunc("GET /api/v1/tasks/{id}", s.handleGetTask)
	s.mux.HandleFunc("GET /api/v1/verify", s.handleVerify)
}
