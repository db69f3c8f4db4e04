// Package uischema defines the typed UI contract emitted by the backend.
// The frontend renders dynamic components based on this schema -- it never
// decides what to show on its own.
package uischema

// UISchema is the top-level schema the backend emits for a workflow object.
type UISchema struct {
	Version    string      `json:"ui_schema_version"`
	ObjectID   int64       `json:"object_id"`
	Status     string      `json:"status"`
	Components []Component `json:"components"`
	Actions    []Action    `json:"actions"`
}

// ComponentType identifies what component to render.
type ComponentType string

const (
	ComponentWorkflowSummary ComponentType = "workflow_summary"
	ComponentErrorMessage    ComponentType = "error_message"
	ComponentActionPanel     ComponentType = "action_panel"
	ComponentRecordMetadata  ComponentType = "record_metadata"
	ComponentExtraData       ComponentType = "extra_data"
	ComponentNavigation      ComponentType = "navigation"
)

// Visibility controls component rendering.
type Visibility string

const (
	VisibilityVisible   Visibility = "visible"
	VisibilityHidden    Visibility = "hidden"
	VisibilityCollapsed Visibility = "collapsed"
)

// Component is a single renderable UI element.
type Component struct {
	Type       ComponentType  `json:"type"`
	Title      string         `json:"title"`
	Priority   int            `json:"priority"`
	Visibility Visibility     `json:"visibility"`
	Data       map[string]any `json:"data,omitempty"`
}

// ActionUIType classifies the user-facing action.
type ActionUIType string

const (
	ActionResolve ActionUIType = "resolve"
	ActionRestart ActionUIType = "restart"
	ActionResume  ActionUIType = "resume"
	ActionDelete  ActionUIType = "delete"
)

// ConfirmConfig describes confirmation requirements for destructive actions.
type ConfirmConfig struct {
	Required        bool   `json:"required"`
	AcknowledgeText string `json:"acknowledge_text,omitempty"`
}

// Action is a user-triggerable operation from the UI. Args are posted
// as-is to the action endpoint.
type Action struct {
	Type    ActionUIType   `json:"type"`
	Label   string         `json:"label"`
	Args    map[string]any `json:"args,omitempty"`
	Style   string         `json:"style,omitempty"`
	Confirm *ConfirmConfig `json:"confirm,omitempty"`
}
