package agui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"time"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/search"
	"github.com/finops-claw-gang/holdingpen/internal/uischema"
)

// Finish reasons.
const (
	ReasonCompleted = "completed"
	ReasonDeleted   = "deleted"
)

// Viewer loads a record with its detail-view schema.
type Viewer interface {
	View(ctx context.Context, id int64, listing *search.Params) (*record.Record, uischema.UISchema, error)
}

// StreamConfig controls SSE stream behavior.
type StreamConfig struct {
	PollInterval time.Duration
	MaxDuration  time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() StreamConfig {
	return StreamConfig{
		PollInterval: 2 * time.Second,
		MaxDuration:  30 * time.Minute,
	}
}

// StreamHandler serves SSE events for one object's state changes. The
// stream ends when the object completes or is deleted.
func StreamHandler(v Viewer, cfg StreamConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "object id must be an integer", http.StatusBadRequest)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ctx, cancel := context.WithTimeout(r.Context(), cfg.MaxDuration)
		defer cancel()

		seq := 0
		emit := func(typ EventType, data any) {
			seq++
			writeSSE(w, flusher, Event{Type: typ, Seq: seq, Timestamp: time.Now().UTC(), ObjectID: id, Data: data})
		}

		emit(EventRunStarted, nil)

		rec, schema, err := v.View(ctx, id, nil)
		if err != nil {
			emit(EventRunError, ErrorData{Message: err.Error()})
			return
		}
		state := rec.Dumps()
		emit(EventStateSnapshot, StateSnapshotData{
			Status:   string(rec.Workflow.Status),
			State:    state,
			UISchema: schema,
		})
		if rec.Workflow.Status == domain.StatusCompleted {
			emit(EventRunFinished, FinishedData{Reason: ReasonCompleted})
			return
		}

		lastStatus := rec.Workflow.Status
		lastModified := rec.Workflow.Modified

		ticker := time.NewTicker(cfg.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rec, schema, err = v.View(ctx, id, nil)
				if errors.Is(err, record.ErrNotFound) {
					emit(EventRunFinished, FinishedData{Reason: ReasonDeleted})
					return
				}
				if err != nil {
					emit(EventRunError, ErrorData{Message: err.Error()})
					return
				}
				if rec.Workflow.Modified.Equal(lastModified) {
					continue
				}
				lastModified = rec.Workflow.Modified

				status := rec.Workflow.Status
				if status != lastStatus {
					emit(EventStepFinished, StepData{Status: string(lastStatus)})
					emit(EventStepStarted, StepData{Status: string(status)})
					lastStatus = status
				}

				next := rec.Dumps()
				if patches := Diff(state, next); len(patches) > 0 {
					emit(EventStateDelta, StateDeltaData{
						Status:   string(status),
						Patches:  patches,
						UISchema: schema,
					})
				}
				state = next

				if status == domain.StatusCompleted {
					emit(EventRunFinished, FinishedData{Reason: ReasonCompleted})
					return
				}
			}
		}
	}
}

// Diff returns replace/add/remove patches turning prev into next. The
// "_workflow" section is compared per field; other top-level keys as a
// whole.
func Diff(prev, next map[string]any) []Patch {
	var patches []Patch
	pw, _ := prev["_workflow"].(map[string]any)
	nw, _ := next["_workflow"].(map[string]any)
	patches = append(patches, diffLevel("/_workflow", pw, nw)...)

	top := func(m map[string]any) map[string]any {
		out := make(map[string]any, len(m))
		for k, v := range m {
			if k != "_workflow" {
				out[k] = v
			}
		}
		return out
	}
	patches = append(patches, diffLevel("", top(prev), top(next))...)
	return patches
}

func diffLevel(prefix string, prev, next map[string]any) []Patch {
	var patches []Patch
	for _, k := range sortedKeys(next) {
		old, had := prev[k]
		switch {
		case !had:
			patches = append(patches, Patch{Op: OpAdd, Path: pointer(prefix, k), Value: next[k]})
		case !reflect.DeepEqual(old, next[k]):
			patches = append(patches, Patch{Op: OpReplace, Path: pointer(prefix, k), Value: next[k]})
		}
	}
	for _, k := range sortedKeys(prev) {
		if _, ok := next[k]; !ok {
			patches = append(patches, Patch{Op: OpRemove, Path: pointer(prefix, k)})
		}
	}
	return patches
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.Seq, event.Type, data)
	flusher.Flush()
}
