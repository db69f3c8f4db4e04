package uischema_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finops-claw-gang/holdingpen/internal/actions"
	"github.com/finops-claw-gang/holdingpen/internal/definitions"
	"github.com/finops-claw-gang/holdingpen/internal/domain"
	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/search"
	"github.com/finops-claw-gang/holdingpen/internal/uischema"
)

func baseRecord(t *testing.T, status domain.ObjectStatus) *record.Record {
	t.Helper()
	defs, err := definitions.NewRegistry(definitions.Definition{Class: "article", Name: "HEP article", DataType: "hep"})
	require.NoError(t, err)

	obj := domain.NewWorkflowObject("hep")
	obj.ID = 12
	obj.Status = status
	obj.WorkflowName = "article"
	obj.CallbackPos = []int{2, 1}
	obj.Data["title"] = "Neutrino oscillations"
	obj.Modified = time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	return record.Project(obj, defs)
}

func componentTypes(s uischema.UISchema) []uischema.ComponentType {
	var out []uischema.ComponentType
	for _, c := range s.Components {
		out = append(out, c.Type)
	}
	return out
}

func actionTypes(s uischema.UISchema) []uischema.ActionUIType {
	var out []uischema.ActionUIType
	for _, a := range s.Actions {
		out = append(out, a.Type)
	}
	return out
}

func TestBuild_CompletedRecord(t *testing.T) {
	schema := uischema.Build(uischema.DetailInput{Record: baseRecord(t, domain.StatusCompleted)})

	assert.Equal(t, "v1", schema.Version)
	assert.Equal(t, int64(12), schema.ObjectID)
	assert.Equal(t, "COMPLETED", schema.Status)
	assert.Equal(t, []uischema.ComponentType{
		uischema.ComponentWorkflowSummary,
		uischema.ComponentRecordMetadata,
		uischema.ComponentExtraData,
		uischema.ComponentNavigation,
	}, componentTypes(schema))
	assert.Equal(t, []uischema.ActionUIType{uischema.ActionRestart, uischema.ActionDelete}, actionTypes(schema))

	summary := schema.Components[0].Data
	assert.Equal(t, "HEP article", summary["workflow_name"])
	assert.Equal(t, int64(12), summary["id"])
}

func TestBuild_ErrorRecordShowsMessage(t *testing.T) {
	rec := baseRecord(t, domain.StatusError)
	rec.Model().ExtraData[domain.MessageKey] = "Fulltext download failed"

	schema := uischema.Build(uischema.DetailInput{Record: rec})
	require.GreaterOrEqual(t, len(schema.Components), 2)
	assert.Equal(t, uischema.ComponentErrorMessage, schema.Components[1].Type)
	assert.Equal(t, "Fulltext download failed", schema.Components[1].Data["message"])
	assert.Contains(t, actionTypes(schema), uischema.ActionResume)
}

func TestBuild_PendingApproval(t *testing.T) {
	rec := baseRecord(t, domain.StatusHalted)
	rec.Model().SetAction(actions.ApprovalName)
	rendered := actions.NewApproval(nil, nil).Render(rec.Model())

	schema := uischema.Build(uischema.DetailInput{Record: rec, Action: rendered})

	assert.Contains(t, componentTypes(schema), uischema.ComponentActionPanel)
	require.GreaterOrEqual(t, len(schema.Actions), 2)
	assert.Equal(t, uischema.ActionResolve, schema.Actions[0].Type)
	assert.Equal(t, "Accept", schema.Actions[0].Label)
	assert.Equal(t, map[string]any{"value": "accept"}, schema.Actions[0].Args)
	assert.Equal(t, map[string]any{"value": "reject"}, schema.Actions[1].Args)
	assert.Equal(t, "danger", schema.Actions[1].Style)
}

func TestBuild_RunningRecordCannotRestart(t *testing.T) {
	schema := uischema.Build(uischema.DetailInput{Record: baseRecord(t, domain.StatusRunning)})
	assert.Equal(t, []uischema.ActionUIType{uischema.ActionDelete}, actionTypes(schema))
}

func TestBuild_DeleteNeedsConfirmation(t *testing.T) {
	schema := uischema.Build(uischema.DetailInput{Record: baseRecord(t, domain.StatusHalted)})
	last := schema.Actions[len(schema.Actions)-1]
	assert.Equal(t, uischema.ActionDelete, last.Type)
	require.NotNil(t, last.Confirm)
	assert.True(t, last.Confirm.Required)
}

func TestBuild_Visibility(t *testing.T) {
	rec := baseRecord(t, domain.StatusHalted)
	rec.ExtraData = nil

	schema := uischema.Build(uischema.DetailInput{Record: rec})
	byType := map[uischema.ComponentType]uischema.Component{}
	for _, c := range schema.Components {
		byType[c.Type] = c
	}
	assert.Equal(t, uischema.VisibilityVisible, byType[uischema.ComponentRecordMetadata].Visibility)
	assert.Equal(t, uischema.VisibilityHidden, byType[uischema.ComponentExtraData].Visibility)
	assert.Equal(t, uischema.VisibilityHidden, byType[uischema.ComponentNavigation].Visibility)
}

func TestBuild_Navigation(t *testing.T) {
	nav := search.PreviousNext([]int64{3, 12, 40}, 12)
	schema := uischema.Build(uischema.DetailInput{Record: baseRecord(t, domain.StatusHalted), Neighbours: nav})

	var navComp uischema.Component
	for _, c := range schema.Components {
		if c.Type == uischema.ComponentNavigation {
			navComp = c
		}
	}
	assert.Equal(t, uischema.VisibilityVisible, navComp.Visibility)
	assert.Equal(t, int64(3), navComp.Data["previous"])
	assert.Equal(t, int64(40), navComp.Data["next"])
}
