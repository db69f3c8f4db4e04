package uischema

import (
	"github.com/finops-claw-gang/holdingpen/internal/domain"
	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/search"
)

const schemaVersion = "v1"

// DetailInput is everything the detail view needs.
type DetailInput struct {
	Record *record.Record
	// Action is the rendered pending action, nil when there is none.
	Action     map[string]any
	Neighbours search.Neighbours
}

// Build constructs the detail-view schema for one record.
func Build(in DetailInput) UISchema {
	rec := in.Record
	schema := UISchema{
		Version:  schemaVersion,
		ObjectID: rec.ID,
		Status:   string(rec.Workflow.Status),
	}

	schema.Components = append(schema.Components, workflowSummary(rec))

	if rec.Workflow.Status == domain.StatusError {
		schema.Components = append(schema.Components, errorMessage(rec))
	}

	// Pending action: its panel plus one resolve button per choice.
	if in.Action != nil {
		schema.Components = append(schema.Components, actionPanel(in.Action))
		schema.Actions = append(schema.Actions, resolveActions(in.Action)...)
	}

	schema.Components = append(schema.Components,
		recordMetadata(rec),
		extraData(rec),
		navigation(in.Neighbours),
	)

	if rec.Workflow.Status != domain.StatusRunning {
		schema.Actions = append(schema.Actions, Action{
			Type:  ActionRestart,
			Label: "Restart workflow",
		})
	}
	if resumable(rec.Workflow.Status) {
		schema.Actions = append(schema.Actions, Action{
			Type:  ActionResume,
			Label: "Resume workflow",
		})
	}
	schema.Actions = append(schema.Actions, Action{
		Type:  ActionDelete,
		Label: "Delete record",
		Style: "danger",
		Confirm: &ConfirmConfig{
			Required:        true,
			AcknowledgeText: "I want to delete this workflow object",
		},
	})

	return schema
}

func resumable(s domain.ObjectStatus) bool {
	switch s {
	case domain.StatusHalted, domain.StatusWaiting, domain.StatusError:
		return true
	}
	return false
}
