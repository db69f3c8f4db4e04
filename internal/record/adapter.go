package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finops-claw-gang/holdingpen/internal/actions"
	"github.com/finops-claw-gang/holdingpen/internal/definitions"
	"github.com/finops-claw-gang/holdingpen/internal/domain"
	"github.com/finops-claw-gang/holdingpen/internal/observability"
	"github.com/finops-claw-gang/holdingpen/internal/ratelimit"
	"github.com/finops-claw-gang/holdingpen/internal/search"
	"github.com/finops-claw-gang/holdingpen/internal/store"
)

// Queue enqueues continuation of a workflow object and returns the task id.
type Queue interface {
	Resume(ctx context.Context, objectID int64, restartPoint domain.RestartPoint) (string, error)
}

// ActionLookup finds the handler of a pending action. *actions.Registry
// implements it.
type ActionLookup interface {
	Lookup(name string) (actions.Handler, bool)
}

// Deps are the collaborators of an Adapter. Logger, Metrics and Limiter
// are optional.
type Deps struct {
	Store       store.WorkflowStore
	Index       search.IndexClient
	Definitions *definitions.Registry
	Actions     ActionLookup
	Queue       Queue
	Routes      search.Routes
	Limiter     *ratelimit.ServiceLimiter
	Logger      *slog.Logger
	Metrics     *observability.Metrics
}

// Adapter is the workflow index adapter. It holds no per-object state.
type Adapter struct {
	store   store.WorkflowStore
	index   search.IndexClient
	defs    *definitions.Registry
	actions ActionLookup
	queue   Queue
	routes  search.Routes
	limiter *ratelimit.ServiceLimiter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAdapter creates an Adapter.
func NewAdapter(d Deps) *Adapter {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	acts := d.Actions
	if acts == nil {
		acts = actions.NewRegistry()
	}
	return &Adapter{
		store:   d.Store,
		index:   d.Index,
		defs:    d.Definitions,
		actions: acts,
		queue:   d.Queue,
		routes:  d.Routes,
		limiter: d.Limiter,
		logger:  logger.With("component", "record"),
		metrics: d.Metrics,
	}
}

// Project builds the record for obj using the adapter's definitions.
func (a *Adapter) Project(obj *domain.WorkflowObject) *Record {
	return Project(obj, a.defs)
}

// Create projects obj and writes it to its index. It returns
// ErrSkipIndexing, without touching the index, when obj has no registered
// definition or is INITIAL. Index failures are logged, not returned.
func (a *Adapter) Create(ctx context.Context, obj *domain.WorkflowObject) (*Record, error) {
	if err := a.Indexable(obj); err != nil {
		return nil, err
	}
	rec := a.Project(obj)
	if err := a.write(ctx, rec); err != nil {
		a.logger.WarnContext(ctx, "index write failed", "id", rec.ID, "data_type", rec.Workflow.DataType, "error", err)
	}
	return rec, nil
}

// Indexable returns ErrSkipIndexing for objects that stay out of the index:
// unregistered workflows and INITIAL objects.
func (a *Adapter) Indexable(obj *domain.WorkflowObject) error {
	if _, ok := a.defs.Lookup(obj.WorkflowName); !ok {
		return ErrSkipIndexing
	}
	if obj.Status == domain.StatusInitial {
		return ErrSkipIndexing
	}
	return nil
}

// write indexes rec on its routed index. Unrouted data types are skipped.
func (a *Adapter) write(ctx context.Context, rec *Record) error {
	route, ok := a.routes.Lookup(rec.Workflow.DataType)
	if !ok {
		a.logger.DebugContext(ctx, "no index route for data type", "id", rec.ID, "data_type", rec.Workflow.DataType)
		return nil
	}
	if err := a.limiter.Wait(ctx, ratelimit.ServiceSearch); err != nil {
		return err
	}
	if err := a.index.Index(ctx, route.Index, route.DocType, rec.ID, rec.IndexDocument()); err != nil {
		a.metrics.RecordIndexFailure(ctx, "index", route.Index)
		return err
	}
	a.metrics.RecordIndexWrite(ctx, "index", route.Index)
	return nil
}

// Get loads the object with id and projects it.
func (a *Adapter) Get(ctx context.Context, id int64) (*Record, error) {
	obj, err := a.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.Project(obj), nil
}

// Commit writes the record back onto its object and persists it. The
// store's after-save notification reindexes it.
func (a *Adapter) Commit(ctx context.Context, rec *Record) error {
	if rec.model == nil {
		return ErrMissingModel
	}
	if err := rec.UpdateModel(rec.model); err != nil {
		return err
	}
	return a.save(ctx, rec)
}

// save persists the bound object and refreshes the projection.
func (a *Adapter) save(ctx context.Context, rec *Record) error {
	if err := a.store.Save(ctx, rec.model); err != nil {
		return fmt.Errorf("record: save %d: %w", rec.model.ID, err)
	}
	*rec = *a.Project(rec.model)
	return nil
}

// Delete removes the record's object. The index document goes with it via
// the store's before-delete notification.
func (a *Adapter) Delete(ctx context.Context, rec *Record) error {
	if rec.model == nil {
		return ErrMissingModel
	}
	if err := a.store.Delete(ctx, rec.model.ID); err != nil {
		return fmt.Errorf("record: delete %d: %w", rec.model.ID, err)
	}
	return nil
}

// DeleteFromIndex removes obj's document from its routed index. A missing
// document is not an error.
func (a *Adapter) DeleteFromIndex(ctx context.Context, obj *domain.WorkflowObject) error {
	rec := a.Project(obj)
	route, ok := a.routes.Lookup(rec.Workflow.DataType)
	if !ok {
		return nil
	}
	if err := a.limiter.Wait(ctx, ratelimit.ServiceSearch); err != nil {
		return err
	}
	err := a.index.Delete(ctx, route.Index, route.DocType, rec.ID)
	switch {
	case err == nil:
		a.metrics.RecordIndexWrite(ctx, "delete", route.Index)
		return nil
	case errors.Is(err, search.ErrIndexNotFound):
		return nil
	default:
		a.metrics.RecordIndexFailure(ctx, "delete", route.Index)
		return err
	}
}

// Resolve runs the handler for the object's pending action. With no
// pending action it returns (nil, nil) without consulting the registry.
func (a *Adapter) Resolve(ctx context.Context, rec *Record, args map[string]any) (any, error) {
	if rec.model == nil {
		return nil, ErrMissingModel
	}
	name := rec.model.Action()
	if name == "" {
		return nil, nil
	}
	h, ok := a.actions.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	out, err := h.Resolve(ctx, rec.model, args)
	if err != nil {
		return nil, err
	}
	*rec = *a.Project(rec.model)
	return out, nil
}

// RestartOptions tune Restart and Resume.
type RestartOptions struct {
	// CallbackPos overrides the position marker when non-nil.
	CallbackPos []int
}

// Restart runs the workflow again from CallbackPos, or from the first
// task. It returns the continuation task id.
func (a *Adapter) Restart(ctx context.Context, rec *Record, opts RestartOptions) (string, error) {
	if rec.model == nil {
		return "", ErrMissingModel
	}
	pos := opts.CallbackPos
	if pos == nil {
		pos = []int{0}
	}
	return a.continueFrom(ctx, rec, pos, domain.RestartTask)
}

// Resume continues the workflow with the task after the current one.
func (a *Adapter) Resume(ctx context.Context, rec *Record, opts RestartOptions) (string, error) {
	if rec.model == nil {
		return "", ErrMissingModel
	}
	return a.continueFrom(ctx, rec, opts.CallbackPos, domain.ContinueNext)
}

func (a *Adapter) continueFrom(ctx context.Context, rec *Record, pos []int, point domain.RestartPoint) (string, error) {
	obj := rec.model
	if pos != nil {
		obj.CallbackPos = append([]int{}, pos...)
	}
	obj.Status = domain.StatusRunning
	if err := a.save(ctx, rec); err != nil {
		return "", err
	}
	taskID, err := a.queue.Resume(ctx, obj.ID, point)
	if err != nil {
		return "", fmt.Errorf("record: enqueue %s for %d: %w", point, obj.ID, err)
	}
	a.logger.InfoContext(ctx, "continuation enqueued", "id", obj.ID, "restart_point", point, "task_id", taskID)
	return taskID, nil
}
