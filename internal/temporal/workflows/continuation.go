// Package workflows defines the Temporal workflow functions.
package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/activities"
)

// ResumeInput is the input to ResumeObjectWorkflow.
type ResumeInput struct {
	ObjectID     int64               `json:"object_id"`
	RestartPoint domain.RestartPoint `json:"restart_point"`
}

// ResumeResult is the output of ResumeObjectWorkflow.
type ResumeResult struct {
	ObjectID int64 `json:"object_id"`
	Missing  bool  `json:"missing"`
}

// ResumeObjectWorkflow hands one object back to the workflow engine at the
// given restart point. Engine calls are idempotent for a given position,
// so transient failures are retried with backoff.
func ResumeObjectWorkflow(ctx workflow.Context, input ResumeInput) (ResumeResult, error) {
	logger := workflow.GetLogger(ctx)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	}
	actCtx := workflow.WithActivityOptions(ctx, actOpts)

	var out activities.ContinueObjectOutput
	err := workflow.ExecuteActivity(actCtx, "ContinueObject", activities.ContinueObjectInput{
		ObjectID:     input.ObjectID,
		RestartPoint: input.RestartPoint,
	}).Get(ctx, &out)
	if err != nil {
		return ResumeResult{ObjectID: input.ObjectID}, err
	}
	logger.Info("object continued", "object_id", input.ObjectID, "restart_point", input.RestartPoint, "missing", out.Missing)
	return ResumeResult{ObjectID: input.ObjectID, Missing: out.Missing}, nil
}
