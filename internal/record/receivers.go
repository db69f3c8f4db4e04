package record

import (
	"context"
	"errors"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
	"github.com/finops-claw-gang/holdingpen/internal/store"
)

// Receivers keeps the index in step with the store.
type Receivers struct {
	adapter *Adapter
}

// Receivers returns the store listener for a.
func (a *Adapter) Receivers() *Receivers {
	return &Receivers{adapter: a}
}

// AfterSave indexes the saved object.
func (r *Receivers) AfterSave(ctx context.Context, obj *domain.WorkflowObject) {
	if _, err := r.adapter.Create(ctx, obj); err != nil && !errors.Is(err, ErrSkipIndexing) {
		r.adapter.logger.ErrorContext(ctx, "index after save failed", "id", obj.ID, "error", err)
	}
}

// BeforeDelete removes the object's document. Failures are logged; the
// delete itself goes ahead and the index keeps a stale document.
func (r *Receivers) BeforeDelete(ctx context.Context, obj *domain.WorkflowObject) {
	if err := r.adapter.DeleteFromIndex(ctx, obj); err != nil {
		r.adapter.logger.ErrorContext(ctx, "index delete failed", "id", obj.ID, "error", err)
	}
}

var _ store.Listener = (*Receivers)(nil)
