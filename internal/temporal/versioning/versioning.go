// Package versioning defines workflow versions and task queue names.
package versioning

const (
	// Workflow versions for determinism tracking.
	ResumeObjectV1 = "resume-object-v1"
	BulkActionV1   = "bulk-action-v1"
	ReindexBatchV1 = "reindex-batch-v1"

	// Task queues. Continuations and bulk verbs share QueueTasks; reindex
	// batches run on their own queue so a full reindex cannot starve
	// operator actions.
	QueueTasks   = "holdingpen-tasks"
	QueueIndexer = "holdingpen-indexer"
)
