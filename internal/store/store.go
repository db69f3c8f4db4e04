// Package store persists workflow objects and notifies listeners around
// saves and deletes.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
)

// ErrNotFound is returned when no object exists for an id.
var ErrNotFound = errors.New("workflow object not found")

// WorkflowStore is the persistence boundary for workflow objects.
type WorkflowStore interface {
	Get(ctx context.Context, id int64) (*domain.WorkflowObject, error)
	// Save inserts or updates obj, assigning an id on insert and bumping
	// Modified. Listeners see the object after the transaction commits.
	Save(ctx context.Context, obj *domain.WorkflowObject) error
	// Delete removes the object. Listeners see it before the row goes.
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	IDsByDataType(ctx context.Context, dataTypes []string) ([]int64, error)
	Subscribe(l Listener)
}

// Listener receives persistence notifications. Implementations must not
// fail the surrounding operation; they log and carry on.
type Listener interface {
	AfterSave(ctx context.Context, obj *domain.WorkflowObject)
	BeforeDelete(ctx context.Context, obj *domain.WorkflowObject)
}

// Listeners is a fan-out list of Listener values, safe for concurrent use.
type Listeners struct {
	mu sync.RWMutex
	ls []Listener
}

// Subscribe adds l to the fan-out list.
func (l *Listeners) Subscribe(x Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ls = append(l.ls, x)
}

// NotifyAfterSave calls AfterSave on every listener in subscription order.
func (l *Listeners) NotifyAfterSave(ctx context.Context, obj *domain.WorkflowObject) {
	for _, x := range l.snapshot() {
		x.AfterSave(ctx, obj)
	}
}

// NotifyBeforeDelete calls BeforeDelete on every listener in subscription order.
func (l *Listeners) NotifyBeforeDelete(ctx context.Context, obj *domain.WorkflowObject) {
	for _, x := range l.snapshot() {
		x.BeforeDelete(ctx, obj)
	}
}

func (l *Listeners) snapshot() []Listener {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Listener(nil), l.ls...)
}
