// Package agui streams a workflow object's detail view to the browser as
// AG-UI server-sent events.
package agui

import (
	"strings"
	"time"

	"github.com/finops-claw-gang/holdingpen/internal/uischema"
)

// EventType identifies an AG-UI event.
type EventType string

// A run spans one stream; a step spans one object status.
const (
	EventRunStarted    EventType = "RUN_STARTED"
	EventRunFinished   EventType = "RUN_FINISHED"
	EventRunError      EventType = "RUN_ERROR"
	EventStepStarted   EventType = "STEP_STARTED"
	EventStepFinished  EventType = "STEP_FINISHED"
	EventStateSnapshot EventType = "STATE_SNAPSHOT"
	EventStateDelta    EventType = "STATE_DELTA"
)

// Event is one SSE frame. Seq increases by one per frame within a stream
// and doubles as the SSE id.
type Event struct {
	Type      EventType `json:"type"`
	Seq       int       `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	ObjectID  int64     `json:"object_id"`
	Data      any       `json:"data,omitempty"`
}

// StateSnapshotData is the object's full record dump and its UI schema.
type StateSnapshotData struct {
	Status   string            `json:"status"`
	State    map[string]any    `json:"state"`
	UISchema uischema.UISchema `json:"ui_schema"`
}

// StateDeltaData carries the patches since the previous snapshot or delta
// plus the recomputed UI schema.
type StateDeltaData struct {
	Status   string            `json:"status"`
	Patches  []Patch           `json:"patches"`
	UISchema uischema.UISchema `json:"ui_schema"`
}

// PatchOp is a JSON Patch operation name.
type PatchOp string

const (
	OpAdd     PatchOp = "add"
	OpReplace PatchOp = "replace"
	OpRemove  PatchOp = "remove"
)

// Patch is one RFC 6902 operation against the record dump.
type Patch struct {
	Op    PatchOp `json:"op"`
	Path  string  `json:"path"`
	Value any     `json:"value,omitempty"`
}

// StepData names the status a step event refers to.
type StepData struct {
	Status string `json:"status"`
}

// FinishedData says why a stream ended.
type FinishedData struct {
	Reason string `json:"reason"`
}

// ErrorData carries the message of a RUN_ERROR.
type ErrorData struct {
	Message string `json:"message"`
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// pointer appends key to a JSON Pointer (RFC 6901).
func pointer(prefix, key string) string {
	return prefix + "/" + pointerEscaper.Replace(key)
}
