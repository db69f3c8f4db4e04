package record

import (
	"context"
	"errors"
	"fmt"
)

// ReindexFailure records one object that could not be indexed.
type ReindexFailure struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

func (f ReindexFailure) String() string {
	return fmt.Sprintf("%d: %s", f.ID, f.Error)
}

// ReindexResult summarises a reindex batch.
type ReindexResult struct {
	Success  int              `json:"success"`
	Skipped  int              `json:"skipped"`
	Failures []ReindexFailure `json:"failures"`
}

// Merge folds other into r.
func (r *ReindexResult) Merge(other ReindexResult) {
	r.Success += other.Success
	r.Skipped += other.Skipped
	r.Failures = append(r.Failures, other.Failures...)
}

// Reindex writes every object in ids to its index. Unlike Create, index
// failures are reported per object. Objects that are gone or not
// indexable count as skipped.
func (a *Adapter) Reindex(ctx context.Context, ids []int64) ReindexResult {
	var res ReindexResult
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			res.Failures = append(res.Failures, ReindexFailure{ID: id, Error: err.Error()})
			continue
		}
		obj, err := a.store.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			res.Skipped++
			continue
		}
		if err != nil {
			res.Failures = append(res.Failures, ReindexFailure{ID: id, Error: err.Error()})
			continue
		}
		if err := a.Indexable(obj); err != nil {
			res.Skipped++
			continue
		}
		if err := a.write(ctx, a.Project(obj)); err != nil {
			res.Failures = append(res.Failures, ReindexFailure{ID: id, Error: err.Error()})
			continue
		}
		res.Success++
	}
	a.logger.InfoContext(ctx, "reindex batch done",
		"ids", len(ids), "success", res.Success, "skipped", res.Skipped, "failures", len(res.Failures))
	return res
}
