package record_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
	"github.com/finops-claw-gang/holdingpen/internal/record"
)

func TestProject_RegisteredWorkflow(t *testing.T) {
	h := newHarness(t)
	obj := h.object(t, 1)

	rec := record.Project(obj, h.defs)

	assert.Equal(t, int64(1), rec.ID)
	assert.Equal(t, "hep", rec.Workflow.DataType)
	assert.Equal(t, domain.StatusHalted, rec.Workflow.Status)
	require.NotNil(t, rec.Workflow.WorkflowName)
	assert.Equal(t, "HEP article", *rec.Workflow.WorkflowName)
	require.NotNil(t, rec.Workflow.WorkflowClass)
	assert.Equal(t, "article", *rec.Workflow.WorkflowClass)
	require.NotNil(t, rec.Workflow.IDWorkflow)
	assert.Equal(t, "4a1f0c86-7e5c-4a8f-9a44-3f0b2d9c8e11", *rec.Workflow.IDWorkflow)
	assert.Equal(t, []int{0, 4}, rec.Workflow.WorkflowPosition)
	assert.Same(t, obj, rec.Model())
}

func TestProject_UnregisteredWorkflow(t *testing.T) {
	h := newHarness(t)
	obj := h.object(t, 1)
	obj.WorkflowName = "retired"

	rec := record.Project(obj, h.defs)

	assert.Equal(t, "hep", rec.Workflow.DataType)
	assert.Nil(t, rec.Workflow.WorkflowName)
	assert.Nil(t, rec.Workflow.WorkflowClass)
	assert.Nil(t, rec.Workflow.IDWorkflow)
}

func TestProject_DataTypeFromDefinition(t *testing.T) {
	h := newHarness(t)
	obj := h.object(t, 3)
	obj.DataType = ""

	rec := record.Project(obj, h.defs)
	assert.Equal(t, "authors", rec.Workflow.DataType)
}

func TestDumps_Shape(t *testing.T) {
	h := newHarness(t)
	rec := h.record(t, 1)

	doc := rec.Dumps()
	assert.Equal(t, int64(1), doc["id"])
	assert.Contains(t, doc, "metadata")
	assert.Contains(t, doc, "_extra_data")

	wf := doc["_workflow"].(map[string]any)
	assert.Equal(t, "HALTED", wf["status"])
	assert.Equal(t, "article", wf["workflow_class"])
	assert.Equal(t, "HEP article", wf["workflow_name"])
	assert.Nil(t, wf["id_parent"])
	assert.Equal(t, "2026-09-01T08:05:00Z", wf["modified"])
	assert.NotContains(t, doc, "_created")
}

func TestDumps_OmitsNilPayloads(t *testing.T) {
	obj := domain.NewWorkflowObject("hep")
	obj.Data = nil
	obj.ExtraData = nil

	doc := record.Project(obj, nil).Dumps()
	assert.NotContains(t, doc, "metadata")
	assert.NotContains(t, doc, "_extra_data")
}

func TestIndexDocument_AddsTimestamps(t *testing.T) {
	h := newHarness(t)
	doc := h.record(t, 2).IndexDocument()
	assert.Equal(t, "2026-09-02T10:00:00Z", doc["_created"])
	assert.Equal(t, "2026-09-02T10:01:00Z", doc["_updated"])
}

func TestMarshalJSON(t *testing.T) {
	h := newHarness(t)
	data, err := json.Marshal(h.record(t, 3))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(3), got["id"])
	assert.Equal(t, "COMPLETED", got["_workflow"].(map[string]any)["status"])
}

func TestUpdate_MergesRecognisedFields(t *testing.T) {
	h := newHarness(t)
	rec := h.record(t, 2)

	err := rec.Update(map[string]any{
		"_workflow": map[string]any{
			"status":            "COMPLETED",
			"workflow_position": []any{float64(5), float64(1)},
			"id_parent":         float64(1),
			"workflow_name":     "ignored",
		},
		"metadata": map[string]any{"title": "Corrected title"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, rec.Workflow.Status)
	assert.Equal(t, []int{5, 1}, rec.Workflow.WorkflowPosition)
	require.NotNil(t, rec.Workflow.IDParent)
	assert.Equal(t, int64(1), *rec.Workflow.IDParent)
	assert.Equal(t, "HEP article", *rec.Workflow.WorkflowName)
	assert.Equal(t, "Corrected title", rec.Metadata["title"])
}

func TestUpdate_InvalidValueChangesNothing(t *testing.T) {
	h := newHarness(t)
	rec := h.record(t, 2)
	before := rec.Dumps()

	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"bad status", map[string]any{"_workflow": map[string]any{"status": "LOST", "data_type": "authors"}}},
		{"bad position", map[string]any{"_workflow": map[string]any{"workflow_position": []any{"a"}}}},
		{"negative position", map[string]any{"_workflow": map[string]any{"workflow_position": []any{float64(-1)}}}},
		{"bad id_workflow", map[string]any{"_workflow": map[string]any{"id_workflow": "not-a-uuid"}}},
		{"workflow not an object", map[string]any{"_workflow": "x"}},
		{"metadata not an object", map[string]any{"metadata": []any{1}, "_workflow": map[string]any{"data_type": "authors"}}},
		{"id changes", map[string]any{"id": float64(99)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rec.Update(tt.fields)
			require.ErrorIs(t, err, record.ErrInvalidField)
			assert.Equal(t, before, rec.Dumps())
		})
	}
}

func TestUpdateModel_RoundTrip(t *testing.T) {
	h := newHarness(t)
	obj := h.object(t, 1)
	rec := record.Project(obj, h.defs)

	target := domain.NewWorkflowObject("")
	require.NoError(t, rec.UpdateModel(target))

	assert.Equal(t, obj.DataType, target.DataType)
	assert.Equal(t, obj.Status, target.Status)
	assert.Equal(t, obj.IDUser, target.IDUser)
	assert.Equal(t, obj.IDWorkflow, target.IDWorkflow)
	assert.Equal(t, obj.CallbackPos, target.CallbackPos)
	assert.Equal(t, obj.Data, target.Data)
	assert.Equal(t, obj.ExtraData, target.ExtraData)

	// Payloads are copied, not shared.
	target.Data["title"] = "changed"
	assert.NotEqual(t, "changed", obj.Data["title"])
}

func TestUpdateModel_NilTarget(t *testing.T) {
	h := newHarness(t)
	err := h.record(t, 1).UpdateModel(nil)
	assert.ErrorIs(t, err, record.ErrMissingModel)
}
