// Package rows formats workflow objects into list rows for the holding
// pen, with an optional Redis cache keyed by object id.
package rows

import (
	"context"
	"log/slog"
	"time"

	"github.com/finops-claw-gang/holdingpen/internal/actions"
	"github.com/finops-claw-gang/holdingpen/internal/definitions"
	"github.com/finops-claw-gang/holdingpen/internal/domain"
)

// Row is one formatted list entry.
type Row struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Date        string         `json:"date"`
	Additional  map[string]any `json:"additional"`
	Action      string         `json:"action"`
	SortData    map[string]any `json:"sort_data"`
}

// Cache stores formatted rows. A cached row is only reused while its Date
// matches the object's modification time.
type Cache interface {
	Get(ctx context.Context, id int64) (*Row, bool, error)
	Set(ctx context.Context, row Row) error
	Delete(ctx context.Context, id int64) error
}

// Formatter builds rows from objects.
type Formatter struct {
	defs    *definitions.Registry
	actions *actions.Registry
	cache   Cache
	logger  *slog.Logger
}

// NewFormatter creates a Formatter. cache and logger may be nil.
func NewFormatter(defs *definitions.Registry, acts *actions.Registry, cache Cache, logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.Default()
	}
	if acts == nil {
		acts = actions.NewRegistry()
	}
	return &Formatter{defs: defs, actions: acts, cache: cache, logger: logger.With("component", "rows")}
}

// Format returns the row for obj, from the cache when it is still fresh.
// Cache failures are logged and the row is rebuilt.
func (f *Formatter) Format(ctx context.Context, obj *domain.WorkflowObject) Row {
	date := formatDate(obj.Modified)
	if f.cache != nil {
		row, ok, err := f.cache.Get(ctx, obj.ID)
		switch {
		case err != nil:
			f.logger.WarnContext(ctx, "row cache read failed", "id", obj.ID, "error", err)
		case ok && row.Date == date:
			return *row
		}
	}

	row := f.build(obj, date)
	if f.cache != nil {
		if err := f.cache.Set(ctx, row); err != nil {
			f.logger.WarnContext(ctx, "row cache write failed", "id", obj.ID, "error", err)
		}
	}
	return row
}

func (f *Formatter) build(obj *domain.WorkflowObject, date string) Row {
	def, ok := f.defs.Lookup(obj.WorkflowName)
	if !ok {
		def = definitions.Fallback
	}
	name := def.Name
	if name == "" {
		name = obj.WorkflowName
	}
	return Row{
		ID:          obj.ID,
		Name:        name,
		Title:       def.TitleFor(obj),
		Description: def.DescriptionFor(obj),
		Date:        date,
		Additional: map[string]any{
			"status":    string(obj.Status),
			"data_type": obj.DataType,
		},
		Action: f.actions.RenderMini(obj),
		SortData: map[string]any{
			"type":   obj.DataType,
			"status": string(obj.Status),
			"date":   date,
		},
	}
}

// AfterSave is a no-op: rows go stale through their date, not eagerly.
func (f *Formatter) AfterSave(context.Context, *domain.WorkflowObject) {}

// BeforeDelete drops the cached row of a deleted object.
func (f *Formatter) BeforeDelete(ctx context.Context, obj *domain.WorkflowObject) {
	if f.cache == nil {
		return
	}
	if err := f.cache.Delete(ctx, obj.ID); err != nil {
		f.logger.WarnContext(ctx, "row cache delete failed", "id", obj.ID, "error", err)
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
