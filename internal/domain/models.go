package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActionKey is the extra_data key under which the engine stores the name of
// the action a halted object is waiting on.
const ActionKey = "_action"

// MessageKey is the extra_data key holding the engine's last message for the object.
const MessageKey = "_message"

// WorkflowObject is a persisted unit of work tracked by the workflow engine.
// The engine owns it; this service reads it, edits a few fields and
// delegates persistence back to the store.
type WorkflowObject struct {
	ID           int64          `json:"id"`
	Status       ObjectStatus   `json:"status"`
	DataType     string         `json:"data_type"`
	IDUser       int64          `json:"id_user"`
	IDParent     *int64         `json:"id_parent"`
	IDWorkflow   *uuid.UUID     `json:"id_workflow"`
	WorkflowName string         `json:"workflow_name"`
	CallbackPos  []int          `json:"callback_pos"`
	Data         map[string]any `json:"data"`
	ExtraData    map[string]any `json:"extra_data"`
	Created      time.Time      `json:"created"`
	Modified     time.Time      `json:"modified"`
}

// NewWorkflowObject creates an object in the INITIAL state with empty payloads.
func NewWorkflowObject(dataType string) *WorkflowObject {
	now := time.Now().UTC()
	return &WorkflowObject{
		Status:      StatusInitial,
		DataType:    dataType,
		CallbackPos: []int{},
		Data:        map[string]any{},
		ExtraData:   map[string]any{},
		Created:     now,
		Modified:    now,
	}
}

// HasWorkflow reports whether a workflow definition has been assigned.
func (o *WorkflowObject) HasWorkflow() bool {
	return o.WorkflowName != ""
}

// Action returns the action name the object is waiting on, or "".
func (o *WorkflowObject) Action() string {
	if o.ExtraData == nil {
		return ""
	}
	name, _ := o.ExtraData[ActionKey].(string)
	return name
}

// SetAction records the action the object is waiting on.
func (o *WorkflowObject) SetAction(name string) {
	if o.ExtraData == nil {
		o.ExtraData = map[string]any{}
	}
	o.ExtraData[ActionKey] = name
}

// ClearAction removes the pending action.
func (o *WorkflowObject) ClearAction() {
	delete(o.ExtraData, ActionKey)
}

// Message returns the engine's last message for the object, or "".
func (o *WorkflowObject) Message() string {
	if o.ExtraData == nil {
		return ""
	}
	msg, _ := o.ExtraData[MessageKey].(string)
	return msg
}

// Clone returns a deep copy of the object's top-level fields and payload maps.
func (o *WorkflowObject) Clone() *WorkflowObject {
	c := *o
	if o.IDParent != nil {
		p := *o.IDParent
		c.IDParent = &p
	}
	if o.IDWorkflow != nil {
		u := *o.IDWorkflow
		c.IDWorkflow = &u
	}
	if o.CallbackPos != nil {
		c.CallbackPos = append([]int(nil), o.CallbackPos...)
	}
	c.Data = cloneMap(o.Data)
	c.ExtraData = cloneMap(o.ExtraData)
	return &c
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}
