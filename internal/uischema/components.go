package uischema

import (
	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/search"
)

// workflowSummary builds the always-present "_workflow" overview.
func workflowSummary(rec *record.Record) Component {
	wf := rec.Dumps()["_workflow"].(map[string]any)
	data := make(map[string]any, len(wf)+1)
	for k, v := range wf {
		data[k] = v
	}
	data["id"] = rec.ID
	return Component{
		Type:       ComponentWorkflowSummary,
		Title:      "Workflow",
		Priority:   0,
		Visibility: VisibilityVisible,
		Data:       data,
	}
}

func errorMessage(rec *record.Record) Component {
	msg := ""
	if m := rec.Model(); m != nil {
		msg = m.Message()
	}
	if msg == "" {
		msg = "The workflow stopped with an error."
	}
	return Component{
		Type:       ComponentErrorMessage,
		Title:      "Error",
		Priority:   5,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"message":  msg,
			"position": rec.Workflow.WorkflowPosition,
		},
	}
}

func actionPanel(rendered map[string]any) Component {
	return Component{
		Type:       ComponentActionPanel,
		Title:      "Pending decision",
		Priority:   10,
		Visibility: VisibilityVisible,
		Data:       rendered,
	}
}

// resolveActions turns the rendered buttons of a pending action into
// resolve actions carrying the button's value.
func resolveActions(rendered map[string]any) []Action {
	buttons, _ := rendered["buttons"].([]map[string]any)
	actions := make([]Action, 0, len(buttons))
	for _, b := range buttons {
		label, _ := b["label"].(string)
		style, _ := b["style"].(string)
		actions = append(actions, Action{
			Type:  ActionResolve,
			Label: label,
			Style: style,
			Args:  map[string]any{"value": b["value"]},
		})
	}
	return actions
}

func recordMetadata(rec *record.Record) Component {
	c := Component{
		Type:       ComponentRecordMetadata,
		Title:      "Record",
		Priority:   20,
		Visibility: VisibilityVisible,
		Data:       rec.Metadata,
	}
	if len(rec.Metadata) == 0 {
		c.Visibility = VisibilityHidden
	}
	return c
}

func extraData(rec *record.Record) Component {
	c := Component{
		Type:       ComponentExtraData,
		Title:      "Extra data",
		Priority:   30,
		Visibility: VisibilityCollapsed,
		Data:       rec.ExtraData,
	}
	if len(rec.ExtraData) == 0 {
		c.Visibility = VisibilityHidden
	}
	return c
}

func navigation(n search.Neighbours) Component {
	data := map[string]any{"previous": nil, "next": nil}
	if n.Prev != nil {
		data["previous"] = *n.Prev
	}
	if n.Next != nil {
		data["next"] = *n.Next
	}
	c := Component{
		Type:       ComponentNavigation,
		Title:      "Navigation",
		Priority:   40,
		Visibility: VisibilityVisible,
		Data:       data,
	}
	if n.Prev == nil && n.Next == nil {
		c.Visibility = VisibilityHidden
	}
	return c
}
