package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/tasks"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/versioning"
)

// QueueRecords is the part of the record adapter StubQueue runs bulk and
// reindex tasks against.
type QueueRecords interface {
	ApplyMany(ctx context.Context, ids []int64, verb record.Verb, args map[string]any) (record.BulkResult, error)
	Reindex(ctx context.Context, ids []int64) record.ReindexResult
}

// ResumeCall is one recorded Resume.
type ResumeCall struct {
	ObjectID     int64
	RestartPoint domain.RestartPoint
	TaskID       string
}

// StubQueue satisfies tasks.Queue without Temporal. Continuations are
// recorded only. When Records is set, bulk and reindex tasks run inline.
// Task ids are deterministic: "<kind>-<n>".
type StubQueue struct {
	mu      sync.Mutex
	seq     int
	tasks   []tasks.TaskSummary
	reindex map[string]record.ReindexResult

	Resumes   []ResumeCall
	Records   QueueRecords
	ResumeErr error
}

func NewStubQueue() *StubQueue {
	return &StubQueue{reindex: make(map[string]record.ReindexResult)}
}

func (q *StubQueue) nextID(kind, queue, typ string) string {
	q.seq++
	id := fmt.Sprintf("%s-%d", kind, q.seq)
	now := time.Now().UTC()
	q.tasks = append(q.tasks, tasks.TaskSummary{
		TaskID:    id,
		RunID:     id,
		Type:      typ,
		Status:    "Completed",
		StartTime: now,
		CloseTime: now,
		TaskQueue: queue,
	})
	return id
}

func (q *StubQueue) Resume(_ context.Context, objectID int64, restartPoint domain.RestartPoint) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ResumeErr != nil {
		return "", q.ResumeErr
	}
	id := q.nextID("resume", versioning.QueueTasks, "ResumeObjectWorkflow")
	q.Resumes = append(q.Resumes, ResumeCall{ObjectID: objectID, RestartPoint: restartPoint, TaskID: id})
	return id, nil
}

func (q *StubQueue) BulkApply(ctx context.Context, ids []int64, verb record.Verb, args map[string]any) (string, error) {
	q.mu.Lock()
	id := q.nextID("bulk", versioning.QueueTasks, "BulkActionWorkflow")
	recs := q.Records
	q.mu.Unlock()
	if recs != nil {
		if _, err := recs.ApplyMany(ctx, ids, verb, args); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (q *StubQueue) Reindex(ctx context.Context, ids []int64, queue string) (string, error) {
	if queue == "" {
		queue = versioning.QueueIndexer
	}
	q.mu.Lock()
	id := q.nextID("reindex", queue, "ReindexBatchWorkflow")
	recs := q.Records
	q.mu.Unlock()

	var res record.ReindexResult
	if recs != nil {
		res = recs.Reindex(ctx, ids)
	}
	q.mu.Lock()
	q.reindex[id] = res
	q.mu.Unlock()
	return id, nil
}

func (q *StubQueue) WaitReindex(_ context.Context, taskID string) (record.ReindexResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	res, ok := q.reindex[taskID]
	if !ok {
		return record.ReindexResult{}, fmt.Errorf("unknown task %q", taskID)
	}
	return res, nil
}

func (q *StubQueue) ListTasks(_ context.Context, opts tasks.ListOptions) ([]tasks.TaskSummary, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]tasks.TaskSummary, 0, len(q.tasks))
	for _, t := range slices.Backward(q.tasks) {
		if opts.TaskQueue != "" && t.TaskQueue != opts.TaskQueue {
			continue
		}
		if opts.StatusFilter != "" && t.Status != opts.StatusFilter {
			continue
		}
		out = append(out, t)
		if opts.PageSize > 0 && len(out) == opts.PageSize {
			break
		}
	}
	return out, nil
}

func (q *StubQueue) DescribeTask(_ context.Context, taskID string) (*tasks.TaskSummary, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, t := range q.tasks {
		if t.TaskID == taskID {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unknown task %q", taskID)
}
