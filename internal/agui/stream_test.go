package agui_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finops-claw-gang/holdingpen/internal/agui"
	"github.com/finops-claw-gang/holdingpen/internal/domain"
	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/search"
	"github.com/finops-claw-gang/holdingpen/internal/uischema"
)

// stubViewer returns its states in order, repeating the last one.
type stubViewer struct {
	mu     sync.Mutex
	states []*domain.WorkflowObject
	errs   []error
	calls  int
}

func (s *stubViewer) View(_ context.Context, _ int64, _ *search.Params) (*record.Record, uischema.UISchema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := min(s.calls, max(len(s.states), len(s.errs))-1)
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, uischema.UISchema{}, s.errs[i]
	}
	rec := record.Project(s.states[i], nil)
	return rec, uischema.Build(uischema.DetailInput{Record: rec}), nil
}

func object(status domain.ObjectStatus, modified time.Time) *domain.WorkflowObject {
	return &domain.WorkflowObject{
		ID:          7,
		Status:      status,
		DataType:    "hep",
		CallbackPos: []int{1},
		Data:        map[string]any{"title": "A paper"},
		ExtraData:   map[string]any{},
		Created:     modified,
		Modified:    modified,
	}
}

func serve(t *testing.T, v agui.Viewer) *http.Response {
	t.Helper()
	cfg := agui.StreamConfig{PollInterval: 20 * time.Millisecond, MaxDuration: 5 * time.Second}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/workflows/{id}/stream", agui.StreamHandler(v, cfg))
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/api/v1/workflows/7/stream")
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestStreamHandler_CompletedObject(t *testing.T) {
	t0 := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	v := &stubViewer{states: []*domain.WorkflowObject{object(domain.StatusCompleted, t0)}}

	resp := serve(t, v)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := parseSSE(t, resp)
	require.Len(t, events, 3)
	assert.Equal(t, "RUN_STARTED", events[0].Type)
	assert.Equal(t, "STATE_SNAPSHOT", events[1].Type)
	assert.Equal(t, "RUN_FINISHED", events[2].Type)
	assert.Contains(t, events[2].Data, `"reason":"completed"`)
	for i, e := range events {
		assert.Equal(t, strconv.Itoa(i+1), e.ID)
	}
}

func TestStreamHandler_StatusChange(t *testing.T) {
	t0 := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	v := &stubViewer{states: []*domain.WorkflowObject{
		object(domain.StatusHalted, t0),
		object(domain.StatusHalted, t0),
		object(domain.StatusCompleted, t0.Add(time.Minute)),
	}}

	events := parseSSE(t, serve(t, v))
	var types []string
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{
		"RUN_STARTED", "STATE_SNAPSHOT",
		"STEP_FINISHED", "STEP_STARTED", "STATE_DELTA",
		"RUN_FINISHED",
	}, types)

	var delta struct {
		Data agui.StateDeltaData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(events[4].Data), &delta))
	assert.Equal(t, "COMPLETED", delta.Data.Status)
	paths := map[string]bool{}
	for _, p := range delta.Data.Patches {
		paths[p.Path] = true
	}
	assert.True(t, paths["/_workflow/status"])
	assert.True(t, paths["/_workflow/modified"])
}

func TestStreamHandler_Deleted(t *testing.T) {
	t0 := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	v := &stubViewer{
		states: []*domain.WorkflowObject{object(domain.StatusRunning, t0), nil},
		errs:   []error{nil, record.ErrNotFound},
	}

	events := parseSSE(t, serve(t, v))
	require.Len(t, events, 3)
	assert.Equal(t, "RUN_FINISHED", events[2].Type)
	assert.Contains(t, events[2].Data, `"reason":"deleted"`)
}

func TestStreamHandler_ErrorViewing(t *testing.T) {
	v := &stubViewer{errs: []error{assert.AnError}}

	events := parseSSE(t, serve(t, v))
	require.Len(t, events, 2)
	assert.Equal(t, "RUN_STARTED", events[0].Type)
	assert.Equal(t, "RUN_ERROR", events[1].Type)
}

func TestStreamHandler_BadID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/workflows/{id}/stream", agui.StreamHandler(&stubViewer{}, agui.DefaultConfig()))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/workflows/abc/stream", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDiff(t *testing.T) {
	prev := map[string]any{
		"id":          int64(1),
		"_workflow":   map[string]any{"status": "HALTED", "workflow_position": []int{1}},
		"_extra_data": map[string]any{"_action": "approval"},
	}
	next := map[string]any{
		"id":        int64(1),
		"_workflow": map[string]any{"status": "RUNNING", "workflow_position": []int{1}},
		"metadata":  map[string]any{"title": "x"},
	}

	patches := agui.Diff(prev, next)
	assert.Equal(t, []agui.Patch{
		{Op: "replace", Path: "/_workflow/status", Value: "RUNNING"},
		{Op: "add", Path: "/metadata", Value: map[string]any{"title": "x"}},
		{Op: "remove", Path: "/_extra_data"},
	}, patches)

	assert.Empty(t, agui.Diff(next, next))

	escaped := agui.Diff(map[string]any{}, map[string]any{"a/b~c": 1})
	require.Len(t, escaped, 1)
	assert.Equal(t, "/a~1b~0c", escaped[0].Path)
}

type sseEvent struct {
	ID   string
	Type string
	Data string
}

func parseSSE(t *testing.T, resp *http.Response) []sseEvent {
	t.Helper()
	var events []sseEvent
	scanner := bufio.NewScanner(resp.Body)
	var current sseEvent
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "id: ") {
			current.ID = strings.TrimPrefix(line, "id: ")
		} else if strings.HasPrefix(line, "event: ") {
			current.Type = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			current.Data = strings.TrimPrefix(line, "data: ")
		} else if line == "" && current.Type != "" {
			events = append(events, current)
			current = sseEvent{}
		}
	}
	return events
}

func TestEventSerialization(t *testing.T) {
	event := agui.Event{
		Type:      agui.EventRunStarted,
		Timestamp: time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC),
		ObjectID:  42,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "RUN_STARTED", decoded["type"])
	assert.Equal(t, float64(42), decoded["object_id"])
	assert.Equal(t, float64(0), decoded["seq"])
	assert.NotContains(t, decoded, "data")
}
