package tasks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"

	workflowpb "go.temporal.io/api/workflow/v1"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
	"github.com/finops-claw-gang/holdingpen/internal/observability"
	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/versioning"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/workflows"
)

// TemporalQueue implements Queue using a Temporal client.
type TemporalQueue struct {
	client  client.Client
	metrics *observability.Metrics
	newID   func() string
}

// New creates a TemporalQueue. metrics may be nil.
func New(c client.Client, metrics *observability.Metrics) *TemporalQueue {
	return &TemporalQueue{client: c, metrics: metrics, newID: uuid.NewString}
}

// Resume starts a ResumeObjectWorkflow for objectID and returns its id.
func (q *TemporalQueue) Resume(ctx context.Context, objectID int64, restartPoint domain.RestartPoint) (string, error) {
	if !restartPoint.Valid() {
		return "", fmt.Errorf("tasks: invalid restart point %q", restartPoint)
	}
	id := fmt.Sprintf("resume-%d-%s", objectID, q.newID())
	return q.start(ctx, id, versioning.QueueTasks, "ResumeObjectWorkflow", workflows.ResumeObjectWorkflow,
		workflows.ResumeInput{ObjectID: objectID, RestartPoint: restartPoint})
}

// BulkApply starts a BulkActionWorkflow and returns its id.
func (q *TemporalQueue) BulkApply(ctx context.Context, ids []int64, verb record.Verb, args map[string]any) (string, error) {
	id := fmt.Sprintf("bulk-%s-%s", verb, q.newID())
	return q.start(ctx, id, versioning.QueueTasks, "BulkActionWorkflow", workflows.BulkActionWorkflow,
		workflows.BulkInput{ObjectIDs: ids, Verb: string(verb), Args: args})
}

// Reindex starts a ReindexBatchWorkflow on queue, or on the indexer
// queue when queue is empty, and returns its id.
func (q *TemporalQueue) Reindex(ctx context.Context, ids []int64, queue string) (string, error) {
	if queue == "" {
		queue = versioning.QueueIndexer
	}
	id := "reindex-" + q.newID()
	return q.start(ctx, id, queue, "ReindexBatchWorkflow", workflows.ReindexBatchWorkflow,
		workflows.ReindexInput{ObjectIDs: ids})
}

func (q *TemporalQueue) start(ctx context.Context, id, queue, name string, wf any, input any) (string, error) {
	run, err := q.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        id,
		TaskQueue: queue,
	}, wf, input)
	if err != nil {
		return "", fmt.Errorf("start %s: %w", name, err)
	}
	q.metrics.RecordTask(ctx, name)
	return run.GetID(), nil
}

// WaitReindex blocks until the reindex task completes and returns its result.
func (q *TemporalQueue) WaitReindex(ctx context.Context, taskID string) (record.ReindexResult, error) {
	var result record.ReindexResult
	if err := q.client.GetWorkflow(ctx, taskID, "").Get(ctx, &result); err != nil {
		return record.ReindexResult{}, fmt.Errorf("wait for %s: %w", taskID, err)
	}
	return result, nil
}

// ListTasks lists task executions using Temporal's visibility API.
func (q *TemporalQueue) ListTasks(ctx context.Context, opts ListOptions) ([]TaskSummary, error) {
	query := ""
	if opts.TaskQueue != "" {
		query = fmt.Sprintf("TaskQueue = %q", opts.TaskQueue)
	}
	if opts.StatusFilter != "" {
		if query != "" {
			query += " AND "
		}
		query += fmt.Sprintf("ExecutionStatus = %q", opts.StatusFilter)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	resp, err := q.client.ListWorkflow(ctx, &workflowservice.ListWorkflowExecutionsRequest{
		Query:    query,
		PageSize: int32(pageSize),
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	summaries := make([]TaskSummary, 0, len(resp.Executions))
	for _, exec := range resp.Executions {
		summaries = append(summaries, summarize(exec))
	}
	return summaries, nil
}

// DescribeTask returns the current state of one task.
func (q *TemporalQueue) DescribeTask(ctx context.Context, taskID string) (*TaskSummary, error) {
	desc, err := q.client.DescribeWorkflowExecution(ctx, taskID, "")
	if err != nil {
		return nil, fmt.Errorf("describe task: %w", err)
	}
	s := summarize(desc.WorkflowExecutionInfo)
	return &s, nil
}

func summarize(info *workflowpb.WorkflowExecutionInfo) TaskSummary {
	s := TaskSummary{
		TaskID:    info.GetExecution().GetWorkflowId(),
		RunID:     info.GetExecution().GetRunId(),
		Type:      info.GetType().GetName(),
		Status:    info.GetStatus().String(),
		TaskQueue: info.GetTaskQueue(),
	}
	if info.StartTime != nil {
		s.StartTime = info.StartTime.AsTime()
	}
	if info.CloseTime != nil {
		s.CloseTime = info.CloseTime.AsTime()
	}
	return s
}
