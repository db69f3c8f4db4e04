// Package actions holds the handlers that resolve the actions a halted
// workflow object waits on.
package actions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
)

// ErrInvalidArgument is returned when a handler rejects its arguments.
var ErrInvalidArgument = errors.New("invalid action argument")

// Handler resolves one kind of action.
type Handler interface {
	Resolve(ctx context.Context, obj *domain.WorkflowObject, args map[string]any) (any, error)
}

// Renderer is implemented by handlers that describe themselves in the UI.
type Renderer interface {
	Render(obj *domain.WorkflowObject) map[string]any
	RenderMini(obj *domain.WorkflowObject) string
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, obj *domain.WorkflowObject, args map[string]any) (any, error)

func (f HandlerFunc) Resolve(ctx context.Context, obj *domain.WorkflowObject, args map[string]any) (any, error) {
	return f(ctx, obj, args)
}

// Registry maps action names to handlers. It is built once at startup and
// passed to whatever needs it.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds h under name. Empty and duplicate names are rejected.
func (r *Registry) Register(name string, h Handler) error {
	if name == "" {
		return fmt.Errorf("actions: empty action name")
	}
	if h == nil {
		return fmt.Errorf("actions: nil handler for %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[name]; ok {
		return fmt.Errorf("actions: %q already registered", name)
	}
	r.handlers[name] = h
	return nil
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered action names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenderMini returns the short UI label of the handler for obj's current
// action, or "" when there is none or the handler does not render.
func (r *Registry) RenderMini(obj *domain.WorkflowObject) string {
	h, ok := r.Lookup(obj.Action())
	if !ok {
		return ""
	}
	if rd, ok := h.(Renderer); ok {
		return rd.RenderMini(obj)
	}
	return ""
}

// Render returns the full UI description for obj's current action, or nil.
func (r *Registry) Render(obj *domain.WorkflowObject) map[string]any {
	h, ok := r.Lookup(obj.Action())
	if !ok {
		return nil
	}
	if rd, ok := h.(Renderer); ok {
		return rd.Render(obj)
	}
	return nil
}
