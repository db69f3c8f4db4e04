// Package tasks submits holding-pen work to Temporal and reads it back.
package tasks

import (
	"context"
	"time"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
	"github.com/finops-claw-gang/holdingpen/internal/record"
)

// Queue submits continuation, bulk and reindex tasks. Used by the record
// adapter, the HTTP API, the MCP server and the CLI.
type Queue interface {
	Resume(ctx context.Context, objectID int64, restartPoint domain.RestartPoint) (string, error)
	BulkApply(ctx context.Context, ids []int64, verb record.Verb, args map[string]any) (string, error)
	Reindex(ctx context.Context, ids []int64, queue string) (string, error)
	WaitReindex(ctx context.Context, taskID string) (record.ReindexResult, error)
	ListTasks(ctx context.Context, opts ListOptions) ([]TaskSummary, error)
	DescribeTask(ctx context.Context, taskID string) (*TaskSummary, error)
}

// ListOptions controls filtering for ListTasks.
type ListOptions struct {
	// TaskQueue filters by task queue name. Empty means no filter.
	TaskQueue string
	// StatusFilter filters by execution status (e.g. "Running", "Completed").
	StatusFilter string
	// PageSize limits the number of results.
	PageSize int
}

// TaskSummary is a lightweight overview of a task execution.
type TaskSummary struct {
	TaskID    string    `json:"task_id"`
	RunID     string    `json:"run_id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	CloseTime time.Time `json:"close_time,omitempty"`
	TaskQueue string    `json:"task_queue"`
}
