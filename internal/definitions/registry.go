// Package definitions holds the workflow definitions known to the engine,
// keyed by the class name the engine stores on each workflow object.
package definitions

import (
	"fmt"
	"sort"
	"sync"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
)

const (
	defaultTitle       = "No title available"
	defaultDescription = "No description available"
)

// Definition describes one workflow definition.
type Definition struct {
	Class       string
	Name        string
	DataType    string
	Title       string
	Description string
}

// TitleFor returns the list title for obj. A "title" string in the
// object's data wins over the definition's static title.
func (d Definition) TitleFor(obj *domain.WorkflowObject) string {
	if t, ok := obj.Data["title"].(string); ok && t != "" {
		return t
	}
	if d.Title != "" {
		return d.Title
	}
	return defaultTitle
}

// DescriptionFor returns the list description for obj.
func (d Definition) DescriptionFor(obj *domain.WorkflowObject) string {
	if msg := obj.Message(); msg != "" {
		return msg
	}
	if d.Description != "" {
		return d.Description
	}
	return defaultDescription
}

// Fallback is used for objects whose workflow is not registered.
var Fallback = Definition{Title: defaultTitle, Description: defaultDescription}

// Registry maps workflow class names to definitions. Safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates a registry pre-populated with defs.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a definition. Duplicate or empty class names are rejected.
func (r *Registry) Register(d Definition) error {
	if d.Class == "" {
		return fmt.Errorf("definitions: class required")
	}
	if d.Name == "" {
		d.Name = d.Class
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[d.Class]; ok {
		return fmt.Errorf("definitions: workflow %q already registered", d.Class)
	}
	r.defs[d.Class] = d
	return nil
}

// Lookup returns the definition registered under class.
func (r *Registry) Lookup(class string) (Definition, bool) {
	if r == nil || class == "" {
		return Definition{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[class]
	return d, ok
}

// Names returns the human names of all definitions, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for _, d := range r.defs {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}
