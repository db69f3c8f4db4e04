// Package queues defines per-queue worker configuration for task-queue partitioning.
package queues

import (
	"fmt"
	"strings"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/finops-claw-gang/holdingpen/internal/temporal/activities"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/versioning"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/workflows"
)

// QueueConfig holds worker options for a single task queue.
type QueueConfig struct {
	Name    string
	Options worker.Options
}

// DefaultConfigs returns the standard per-queue worker options.
//
//   - QueueTasks: short engine calls and bulk verbs, moderate concurrency
//   - QueueIndexer: search-bound reindex batches, throttled by the search limiter
func DefaultConfigs() map[string]QueueConfig {
	return map[string]QueueConfig{
		versioning.QueueTasks: {
			Name: versioning.QueueTasks,
			Options: worker.Options{
				MaxConcurrentActivityExecutionSize:     20,
				MaxConcurrentWorkflowTaskExecutionSize: 10,
			},
		},
		versioning.QueueIndexer: {
			Name: versioning.QueueIndexer,
			Options: worker.Options{
				MaxConcurrentActivityExecutionSize:     4,
				MaxConcurrentWorkflowTaskExecutionSize: 4,
			},
		},
	}
}

// ParseQueues parses a comma-separated queue list (e.g. "tasks,indexer")
// into queue names. Accepts both short names ("tasks") and full names
// ("holdingpen-tasks"). An empty list selects every queue.
func ParseQueues(raw string) ([]string, error) {
	all := []string{versioning.QueueTasks, versioning.QueueIndexer}
	if raw == "" {
		return all, nil
	}

	shortNames := map[string]string{
		"tasks":   versioning.QueueTasks,
		"indexer": versioning.QueueIndexer,
	}
	fullNames := map[string]bool{
		versioning.QueueTasks:   true,
		versioning.QueueIndexer: true,
	}

	seen := make(map[string]bool)
	var result []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if full, ok := shortNames[name]; ok {
			name = full
		}
		if !fullNames[name] {
			return nil, fmt.Errorf("unknown queue %q", name)
		}
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	if len(result) == 0 {
		return all, nil
	}
	return result, nil
}

// Registrar is the part of worker.Worker that Register needs.
type Registrar interface {
	RegisterWorkflow(w any)
	RegisterActivity(a any)
}

// Register adds every holding pen workflow and the activity set to r.
// Each queue serves all of them since reindex batches may be routed to
// the tasks queue.
func Register(r Registrar, acts *activities.Activities) {
	r.RegisterWorkflow(workflows.ResumeObjectWorkflow)
	r.RegisterWorkflow(workflows.BulkActionWorkflow)
	r.RegisterWorkflow(workflows.ReindexBatchWorkflow)
	r.RegisterActivity(acts)
}

// NewWorkers builds one registered worker per queue name.
func NewWorkers(c client.Client, names []string, acts *activities.Activities) (map[string]worker.Worker, error) {
	configs := DefaultConfigs()
	out := make(map[string]worker.Worker, len(names))
	for _, name := range names {
		qc, ok := configs[name]
		if !ok {
			return nil, fmt.Errorf("unknown queue %q", name)
		}
		w := worker.New(c, qc.Name, qc.Options)
		Register(w, acts)
		out[name] = w
	}
	return out, nil
}
