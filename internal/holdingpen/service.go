// Package holdingpen wires the record adapter, search, row formatting and
// the task queue into the operations the API, MCP server and CLI expose.
package holdingpen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/finops-claw-gang/holdingpen/internal/actions"
	"github.com/finops-claw-gang/holdingpen/internal/definitions"
	"github.com/finops-claw-gang/holdingpen/internal/ratelimit"
	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/rows"
	"github.com/finops-claw-gang/holdingpen/internal/search"
	"github.com/finops-claw-gang/holdingpen/internal/store"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/tasks"
	"github.com/finops-claw-gang/holdingpen/internal/uischema"
	"github.com/finops-claw-gang/holdingpen/internal/verifier"
)

// Deps are the collaborators of a Service. Budget, Logger and Checker are
// optional; Verify needs a Checker.
type Deps struct {
	Adapter     *record.Adapter
	Store       store.WorkflowStore
	Searcher    *search.Searcher
	Rows        *rows.Formatter
	Actions     *actions.Registry
	Definitions *definitions.Registry
	Routes      search.Routes
	Queue       tasks.Queue
	Budget      *ratelimit.ActionBudget
	Logger      *slog.Logger
	Checker     *verifier.Checker
}

// Service is the holding pen facade.
type Service struct {
	adapter  *record.Adapter
	store    store.WorkflowStore
	searcher *search.Searcher
	rows     *rows.Formatter
	actions  *actions.Registry
	defs     *definitions.Registry
	routes   search.Routes
	queue    tasks.Queue
	budget   *ratelimit.ActionBudget
	checker  *verifier.Checker
	logger   *slog.Logger
}

// NewService creates a Service.
func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		adapter:  d.Adapter,
		store:    d.Store,
		searcher: d.Searcher,
		rows:     d.Rows,
		actions:  d.Actions,
		defs:     d.Definitions,
		routes:   d.Routes,
		queue:    d.Queue,
		budget:   d.Budget,
		checker:  d.Checker,
		logger:   logger.With("component", "holdingpen"),
	}
}

// Get returns the record for id.
func (s *Service) Get(ctx context.Context, id int64) (*record.Record, error) {
	return s.adapter.Get(ctx, id)
}

// Update merges fields into the record and persists it.
func (s *Service) Update(ctx context.Context, id int64, fields map[string]any) (*record.Record, error) {
	rec, err := s.adapter.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rec.Update(fields); err != nil {
		return nil, err
	}
	if err := s.adapter.Commit(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes the object with id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	rec, err := s.adapter.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.adapter.Delete(ctx, rec)
}

// Apply runs verb on the object with id.
func (s *Service) Apply(ctx context.Context, id int64, verb string, args map[string]any) (any, error) {
	v, err := record.ParseVerb(verb)
	if err != nil {
		return nil, err
	}
	out, err := s.adapter.ApplyByID(ctx, id, v, args)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "verb applied", "id", id, "verb", v)
	return out, nil
}

// BulkApply enqueues verb for every id and returns the task id. Each user
// gets a bounded number of bulk submissions per verb and window.
func (s *Service) BulkApply(ctx context.Context, user string, ids []int64, verb string, args map[string]any) (string, error) {
	v, err := record.ParseVerb(verb)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("%w: no ids given", record.ErrInvalidField)
	}
	if s.budget != nil {
		if err := s.budget.Take(user, string(v)); err != nil {
			return "", err
		}
	}
	taskID, err := s.queue.BulkApply(ctx, ids, v, args)
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "bulk verb enqueued", "user", user, "verb", v, "ids", len(ids), "task_id", taskID)
	return taskID, nil
}

// Listing is one page of search results with their formatted rows.
type Listing struct {
	*search.Page
	Rows []rows.Row `json:"rows"`
}

// List searches the holding pen and formats each hit. Hits whose object
// is gone are left out of Rows.
func (s *Service) List(ctx context.Context, p search.Params, base *url.URL) (*Listing, error) {
	page, err := s.searcher.Search(ctx, p, base)
	if err != nil {
		return nil, err
	}
	out := &Listing{Page: page, Rows: make([]rows.Row, 0, len(page.Hits))}
	for _, hit := range page.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		obj, err := s.store.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			s.logger.DebugContext(ctx, "search hit without object", "id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out.Rows = append(out.Rows, s.rows.Format(ctx, obj))
	}
	return out, nil
}

// Row returns the formatted list row of the object with id.
func (s *Service) Row(ctx context.Context, id int64) (rows.Row, error) {
	obj, err := s.store.Get(ctx, id)
	if err != nil {
		return rows.Row{}, err
	}
	return s.rows.Format(ctx, obj), nil
}

// View returns the record with id and its detail-view schema. When
// listing is non-nil the schema links to the neighbouring results.
func (s *Service) View(ctx context.Context, id int64, listing *search.Params) (*record.Record, uischema.UISchema, error) {
	rec, err := s.adapter.Get(ctx, id)
	if err != nil {
		return nil, uischema.UISchema{}, err
	}
	in := uischema.DetailInput{Record: rec, Action: s.actions.Render(rec.Model())}
	if listing != nil {
		ids, err := s.searcher.IDs(ctx, *listing)
		if err != nil {
			s.logger.WarnContext(ctx, "neighbour lookup failed", "id", id, "error", err)
		} else {
			in.Neighbours = search.PreviousNext(ids, id)
		}
	}
	return rec, uischema.Build(in), nil
}

// DataTypes lists the routed data types.
func (s *Service) DataTypes() []string {
	return s.routes.DataTypes()
}

// WorkflowNames lists the registered workflow classes.
func (s *Service) WorkflowNames() []string {
	return s.defs.Names()
}

// Tasks lists recent queue tasks.
func (s *Service) Tasks(ctx context.Context, opts tasks.ListOptions) ([]tasks.TaskSummary, error) {
	return s.queue.ListTasks(ctx, opts)
}

// Task describes one queue task.
func (s *Service) Task(ctx context.Context, taskID string) (*tasks.TaskSummary, error) {
	return s.queue.DescribeTask(ctx, taskID)
}

// Verify compares the index of each data type with the store.
func (s *Service) Verify(ctx context.Context, dataTypes []string) ([]verifier.Report, error) {
	if s.checker == nil {
		return nil, errors.New("holdingpen: verification not configured")
	}
	if len(dataTypes) == 0 {
		return nil, ErrNoDataTypes
	}
	reports := make([]verifier.Report, 0, len(dataTypes))
	for _, dt := range dataTypes {
		rep, err := s.checker.Check(ctx, dt)
		if err != nil {
			return nil, err
		}
		if !rep.Consistent() {
			s.logger.WarnContext(ctx, "index inconsistent", "data_type", dt,
				"missing", len(rep.Missing), "stale", len(rep.Stale), "orphans", len(rep.Orphans))
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
