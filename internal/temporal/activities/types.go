// Package activities defines the Temporal activity I/O structs and the
// Activities implementation that bridges Temporal's serialization boundary
// to the record adapter and the workflow engine.
package activities

import (
	"github.com/finops-claw-gang/holdingpen/internal/domain"
	"github.com/finops-claw-gang/holdingpen/internal/record"
)

// ContinueObjectInput is the activity input for an engine continuation.
type ContinueObjectInput struct {
	ObjectID     int64               `json:"object_id"`
	RestartPoint domain.RestartPoint `json:"restart_point"`
}

// ContinueObjectOutput is the activity output of an engine continuation.
type ContinueObjectOutput struct {
	ObjectID int64 `json:"object_id"`
	Missing  bool  `json:"missing"`
}

// ApplyActionInput is the activity input for a verb applied to a batch.
type ApplyActionInput struct {
	ObjectIDs []int64        `json:"object_ids"`
	Verb      string         `json:"verb"`
	Args      map[string]any `json:"args,omitempty"`
}

// ApplyActionOutput is the activity output for a batch verb.
type ApplyActionOutput struct {
	Result record.BulkResult `json:"result"`
}

// ReindexBatchInput is the activity input for one reindex chunk.
type ReindexBatchInput struct {
	ObjectIDs []int64 `json:"object_ids"`
}

// ReindexBatchOutput is the activity output for one reindex chunk.
type ReindexBatchOutput struct {
	Result record.ReindexResult `json:"result"`
}
