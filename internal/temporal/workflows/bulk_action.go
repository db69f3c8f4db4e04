package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/finops-claw-gang/holdingpen/internal/record"
	"github.com/finops-claw-gang/holdingpen/internal/temporal/activities"
)

// DefaultBulkChunk is the number of objects handled per ApplyAction call.
const DefaultBulkChunk = 50

// BulkInput is the input to BulkActionWorkflow.
type BulkInput struct {
	ObjectIDs []int64        `json:"object_ids"`
	Verb      string         `json:"verb"`
	Args      map[string]any `json:"args,omitempty"`
	ChunkSize int            `json:"chunk_size,omitempty"`
}

// BulkActionWorkflow applies one verb to many objects, a chunk per
// activity. A failed chunk marks each of its ids as failed and the
// workflow moves on.
func BulkActionWorkflow(ctx workflow.Context, input BulkInput) (record.BulkResult, error) {
	logger := workflow.GetLogger(ctx)
	result := record.BulkResult{Failed: map[int64]string{}}

	// Verbs save objects and enqueue work; never retry a half-applied chunk.
	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	actCtx := workflow.WithActivityOptions(ctx, actOpts)

	for _, chunk := range chunkIDs(input.ObjectIDs, input.ChunkSize, DefaultBulkChunk) {
		var out activities.ApplyActionOutput
		err := workflow.ExecuteActivity(actCtx, "ApplyAction", activities.ApplyActionInput{
			ObjectIDs: chunk,
			Verb:      input.Verb,
			Args:      input.Args,
		}).Get(ctx, &out)
		if err != nil {
			logger.Warn("bulk chunk failed", "verb", input.Verb, "size", len(chunk), "error", err)
			for _, id := range chunk {
				result.Failed[id] = err.Error()
			}
			continue
		}
		result.Applied = append(result.Applied, out.Result.Applied...)
		result.Missing = append(result.Missing, out.Result.Missing...)
		for id, msg := range out.Result.Failed {
			result.Failed[id] = msg
		}
	}

	logger.Info("bulk action complete", "verb", input.Verb,
		"applied", len(result.Applied), "missing", len(result.Missing), "failed", len(result.Failed))
	return result, nil
}

// chunkIDs splits ids into chunks of size, or fallback when size < 1.
func chunkIDs(ids []int64, size, fallback int) [][]int64 {
	if size < 1 {
		size = fallback
	}
	var chunks [][]int64
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
