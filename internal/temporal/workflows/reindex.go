package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/activities"
)

// ReindexInput is the input to ReindexBatchWorkflow.
type ReindexInput struct {
	ObjectIDs []int64 `json:"object_ids"`
}

// ReindexBatchWorkflow writes one batch of objects to the search index.
// The activity reports per-object failures itself, so only infrastructure
// errors are retried.
func ReindexBatchWorkflow(ctx workflow.Context, input ReindexInput) (record.ReindexResult, error) {
	logger := workflow.GetLogger(ctx)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		HeartbeatTimeout:    2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	actCtx := workflow.WithActivityOptions(ctx, actOpts)

	var out activities.ReindexBatchOutput
	err := workflow.ExecuteActivity(actCtx, "ReindexBatch", activities.ReindexBatchInput{
		ObjectIDs: input.ObjectIDs,
	}).Get(ctx, &out)
	if err != nil {
		return record.ReindexResult{}, err
	}
	logger.Info("reindex batch complete", "ids", len(input.ObjectIDs),
		"success", out.Result.Success, "skipped", out.Result.Skipped, "failures", len(out.Result.Failures))
	return out.Result, nil
}
