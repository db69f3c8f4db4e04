package activities

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/finops-claw-gang/holdingpen/internal/connectors/engine"
	"github.com/finops-claw-gang/holdingpen/internal/observability"
	"github.com/finops-claw-gang/holdingpen/internal/ratelimit"
	"github.com/finops-claw-gang/holdingpen/internal/record"
)

// RecordDeps is the slice of the record adapter consumed by activities.
// *record.Adapter satisfies it.
type RecordDeps interface {
	ApplyMany(ctx context.Context, ids []int64, verb record.Verb, args map[string]any) (record.BulkResult, error)
	Reindex(ctx context.Context, ids []int64) record.ReindexResult
}

// Activities holds the dependencies for all Temporal activities.
// Each method is registered as a Temporal activity.
type Activities struct {
	Engine  engine.Continuer
	Records RecordDeps
	Limiter *ratelimit.ServiceLimiter // nil = unthrottled
	Metrics *observability.Metrics    // nil = no metrics
}

// ContinueObject asks the workflow engine to continue an object. An
// object the engine no longer knows is reported as missing rather than
// retried.
func (a *Activities) ContinueObject(ctx context.Context, input ContinueObjectInput) (ContinueObjectOutput, error) {
	if !input.RestartPoint.Valid() {
		return ContinueObjectOutput{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("invalid restart point %q", input.RestartPoint), "InvalidArgument", nil)
	}
	if err := a.Limiter.Wait(ctx, ratelimit.ServiceEngine); err != nil {
		return ContinueObjectOutput{}, err
	}
	out := ContinueObjectOutput{ObjectID: input.ObjectID}
	err := a.Engine.Continue(ctx, input.ObjectID, input.RestartPoint)
	if errors.Is(err, engine.ErrObjectNotFound) {
		activity.GetLogger(ctx).Warn("engine does not know object", "object_id", input.ObjectID)
		out.Missing = true
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("continue object %d: %w", input.ObjectID, err)
	}
	a.Metrics.RecordTask(ctx, "ContinueObject")
	return out, nil
}

// ApplyAction applies a verb to a batch of objects.
func (a *Activities) ApplyAction(ctx context.Context, input ApplyActionInput) (ApplyActionOutput, error) {
	verb, err := record.ParseVerb(input.Verb)
	if err != nil {
		return ApplyActionOutput{}, temporal.NewNonRetryableApplicationError(err.Error(), "UnknownVerb", err)
	}
	res, err := a.Records.ApplyMany(ctx, input.ObjectIDs, verb, input.Args)
	if err != nil {
		return ApplyActionOutput{Result: res}, err
	}
	a.Metrics.RecordTask(ctx, "ApplyAction")
	return ApplyActionOutput{Result: res}, nil
}

// ReindexBatch writes one chunk of objects to the search index. Per-object
// failures are part of the output, not an activity error.
func (a *Activities) ReindexBatch(ctx context.Context, input ReindexBatchInput) (ReindexBatchOutput, error) {
	activity.RecordHeartbeat(ctx, len(input.ObjectIDs))
	res := a.Records.Reindex(ctx, input.ObjectIDs)
	a.Metrics.RecordTask(ctx, "ReindexBatch")
	return ReindexBatchOutput{Result: res}, nil
}
