package holdingpen

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/finops-claw-gang/holdingpen/internal/record"
)

// DefaultReindexBatch is the number of ids per reindex task.
const DefaultReindexBatch = 200

// ReindexOptions configure ReindexAll.
type ReindexOptions struct {
	DataTypes []string
	BatchSize int
	// Queue overrides the task queue; empty uses the indexer queue.
	Queue string
	// Concurrency bounds how many batches are awaited at once.
	Concurrency int
}

// ErrNoDataTypes is returned when a reindex names no data type.
var ErrNoDataTypes = errors.New("holdingpen: at least one data type is required")

// ReindexAll enqueues a reindex task per batch of objects of the given data
// types, waits for all of them and merges their results.
func (s *Service) ReindexAll(ctx context.Context, opts ReindexOptions) (record.ReindexResult, error) {
	if len(opts.DataTypes) == 0 {
		return record.ReindexResult{}, ErrNoDataTypes
	}
	for _, dt := range opts.DataTypes {
		if _, ok := s.routes.Lookup(dt); !ok {
			return record.ReindexResult{}, fmt.Errorf("unknown data type %q", dt)
		}
	}
	size := opts.BatchSize
	if size < 1 {
		size = DefaultReindexBatch
	}

	ids, err := s.store.IDsByDataType(ctx, opts.DataTypes)
	if err != nil {
		return record.ReindexResult{}, fmt.Errorf("list ids: %w", err)
	}

	var taskIDs []string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		taskID, err := s.queue.Reindex(ctx, ids[start:end], opts.Queue)
		if err != nil {
			return record.ReindexResult{}, fmt.Errorf("enqueue batch %d: %w", start/size, err)
		}
		taskIDs = append(taskIDs, taskID)
	}
	s.logger.InfoContext(ctx, "reindex enqueued", "data_types", opts.DataTypes, "ids", len(ids), "batches", len(taskIDs))

	results := make([]record.ReindexResult, len(taskIDs))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, taskID := range taskIDs {
		g.Go(func() error {
			res, err := s.queue.WaitReindex(gctx, taskID)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return record.ReindexResult{}, err
	}

	var total record.ReindexResult
	for _, r := range results {
		total.Merge(r)
	}
	return total, nil
}
