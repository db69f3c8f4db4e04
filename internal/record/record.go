// Package record projects workflow objects into search documents, keeps the
// search index in step with the store and dispatches operator verbs.
package record

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/finops-claw-gang/holdingpen/internal/definitions"
	"github.com/finops-claw-gang/holdingpen/internal/domain"
)

// Workflow is the "_workflow" section of a record.
type Workflow struct {
	DataType         string
	Status           domain.ObjectStatus
	IDUser           int64
	IDParent         *int64
	IDWorkflow       *string
	WorkflowClass    *string
	WorkflowName     *string
	WorkflowPosition []int
	Created          time.Time
	Modified         time.Time
}

// Record is the projection of one workflow object. It is rebuilt on every
// read and never stored on its own.
type Record struct {
	ID        int64
	Workflow  Workflow
	Metadata  map[string]any
	ExtraData map[string]any

	model *domain.WorkflowObject
}

// Project builds the record for obj. Workflow identity fields are only
// filled when obj's workflow is registered in defs.
func Project(obj *domain.WorkflowObject, defs *definitions.Registry) *Record {
	wf := Workflow{
		DataType:         obj.DataType,
		Status:           obj.Status,
		IDUser:           obj.IDUser,
		IDParent:         copyInt64(obj.IDParent),
		WorkflowPosition: append([]int{}, obj.CallbackPos...),
		Created:          obj.Created,
		Modified:         obj.Modified,
	}

	if def, ok := defs.Lookup(obj.WorkflowName); ok {
		if wf.DataType == "" {
			wf.DataType = def.DataType
		}
		name := def.Name
		wf.WorkflowName = &name
		if obj.IDWorkflow != nil {
			id := obj.IDWorkflow.String()
			wf.IDWorkflow = &id
		}
		class := obj.WorkflowName
		wf.WorkflowClass = &class
	}

	return &Record{
		ID:        obj.ID,
		Workflow:  wf,
		Metadata:  obj.Data,
		ExtraData: obj.ExtraData,
		model:     obj,
	}
}

// Model returns the bound workflow object, or nil.
func (r *Record) Model() *domain.WorkflowObject { return r.model }

// Dumps returns the canonical document:
//
//	{"id", "_workflow": {...}, "metadata"?, "_extra_data"?}
func (r *Record) Dumps() map[string]any {
	wf := map[string]any{
		"data_type":         r.Workflow.DataType,
		"status":            string(r.Workflow.Status),
		"id_user":           r.Workflow.IDUser,
		"id_parent":         nullable(r.Workflow.IDParent),
		"id_workflow":       nullable(r.Workflow.IDWorkflow),
		"workflow_class":    nullable(r.Workflow.WorkflowClass),
		"workflow_name":     nullable(r.Workflow.WorkflowName),
		"workflow_position": append([]int{}, r.Workflow.WorkflowPosition...),
		"created":           timestamp(r.Workflow.Created),
		"modified":          timestamp(r.Workflow.Modified),
	}
	doc := map[string]any{
		"id":        r.ID,
		"_workflow": wf,
	}
	if r.Metadata != nil {
		doc["metadata"] = r.Metadata
	}
	if r.ExtraData != nil {
		doc["_extra_data"] = r.ExtraData
	}
	return doc
}

// IndexDocument is Dumps plus the "_created" and "_updated" timestamps
// taken from the bound object.
func (r *Record) IndexDocument() map[string]any {
	doc := r.Dumps()
	created, modified := r.Workflow.Created, r.Workflow.Modified
	if r.model != nil {
		created, modified = r.model.Created, r.model.Modified
	}
	doc["_created"] = timestamp(created)
	doc["_updated"] = timestamp(modified)
	return doc
}

func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Dumps())
}

// Update merges a partial document into the record. Recognised keys are
// "_workflow" (data_type, status, id_user, id_parent, id_workflow,
// workflow_position), "metadata" and "_extra_data". Derived fields are
// ignored. Nothing changes if any value is invalid.
func (r *Record) Update(fields map[string]any) error {
	next := *r
	next.Workflow.WorkflowPosition = append([]int{}, r.Workflow.WorkflowPosition...)

	if raw, ok := fields["id"]; ok {
		id, ok := toInt64(raw)
		if !ok || id != r.ID {
			return fmt.Errorf("%w: id cannot change", ErrInvalidField)
		}
	}

	if raw, ok := fields["_workflow"]; ok {
		wf, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: _workflow must be an object", ErrInvalidField)
		}
		if err := next.Workflow.merge(wf); err != nil {
			return err
		}
	}

	if raw, ok := fields["metadata"]; ok {
		m, err := toMap("metadata", raw)
		if err != nil {
			return err
		}
		next.Metadata = m
	}
	if raw, ok := fields["_extra_data"]; ok {
		m, err := toMap("_extra_data", raw)
		if err != nil {
			return err
		}
		next.ExtraData = m
	}

	*r = next
	return nil
}

func (w *Workflow) merge(fields map[string]any) error {
	for key, raw := range fields {
		switch key {
		case "data_type":
			s, ok := raw.(string)
			if !ok {
				return fmt.Errorf("%w: data_type must be a string", ErrInvalidField)
			}
			w.DataType = s
		case "status":
			s, _ := raw.(string)
			status, err := domain.ParseObjectStatus(s)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidField, err)
			}
			w.Status = status
		case "id_user":
			n, ok := toInt64(raw)
			if !ok {
				return fmt.Errorf("%w: id_user must be an integer", ErrInvalidField)
			}
			w.IDUser = n
		case "id_parent":
			if raw == nil {
				w.IDParent = nil
				continue
			}
			n, ok := toInt64(raw)
			if !ok {
				return fmt.Errorf("%w: id_parent must be an integer", ErrInvalidField)
			}
			w.IDParent = &n
		case "id_workflow":
			if raw == nil {
				w.IDWorkflow = nil
				continue
			}
			s, ok := raw.(string)
			if !ok {
				return fmt.Errorf("%w: id_workflow must be a string", ErrInvalidField)
			}
			if _, err := uuid.Parse(s); err != nil {
				return fmt.Errorf("%w: id_workflow: %v", ErrInvalidField, err)
			}
			w.IDWorkflow = &s
		case "workflow_position":
			pos, ok := toIntSlice(raw)
			if !ok {
				return fmt.Errorf("%w: workflow_position must be a list of integers", ErrInvalidField)
			}
			w.WorkflowPosition = pos
		}
	}
	return nil
}

// UpdateModel writes the record's workflow fields and payloads onto obj.
func (r *Record) UpdateModel(obj *domain.WorkflowObject) error {
	if obj == nil {
		return ErrMissingModel
	}
	if !r.Workflow.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidField, r.Workflow.Status)
	}
	var idWorkflow *uuid.UUID
	if r.Workflow.IDWorkflow != nil {
		u, err := uuid.Parse(*r.Workflow.IDWorkflow)
		if err != nil {
			return fmt.Errorf("%w: id_workflow: %v", ErrInvalidField, err)
		}
		idWorkflow = &u
	}

	obj.DataType = r.Workflow.DataType
	obj.Status = r.Workflow.Status
	obj.IDUser = r.Workflow.IDUser
	obj.IDParent = copyInt64(r.Workflow.IDParent)
	obj.IDWorkflow = idWorkflow
	obj.CallbackPos = append([]int{}, r.Workflow.WorkflowPosition...)
	obj.Data = maps.Clone(r.Metadata)
	obj.ExtraData = maps.Clone(r.ExtraData)
	return nil
}

func copyInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func timestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func toMap(field string, raw any) (map[string]any, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be an object", ErrInvalidField, field)
	}
	return m, nil
}

func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	}
	return 0, false
}

func toIntSlice(raw any) ([]int, bool) {
	switch v := raw.(type) {
	case []int:
		return append([]int{}, v...), true
	case []any:
		out := make([]int, 0, len(v))
		for _, item := range v {
			n, ok := toInt64(item)
			if !ok || n < 0 {
				return nil, false
			}
			out = append(out, int(n))
		}
		return out, true
	}
	return nil, false
}
