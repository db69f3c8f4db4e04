package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/finops-claw-gang/holdingpen/internal/holdingpen"
	"github.com/finops-claw-gang/holdingpen/internal/record"
)

// failuresFile receives one JSON line per object that failed to index.
const failuresFile = "/tmp/holdingpen_index.err"

func newReindexCmd(load appLoader) *cobra.Command {
	var (
		dataTypes []string
		batchSize int
		queue     string
		confirmed bool
		errFile   string
	)
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index for the given data types",
		Long: `Reindex lists every workflow object of the given data types, splits the
ids into batches and enqueues one reindex task per batch. It waits for all
batches, prints the totals and writes failed ids to ` + failuresFile + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmed {
				return errors.New("reindexing rewrites every document of the data types; pass --yes-i-know to proceed")
			}
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.Service.ReindexAll(cmd.Context(), holdingpen.ReindexOptions{
				DataTypes: dataTypes,
				BatchSize: batchSize,
				Queue:     queue,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "indexed: %d\nskipped: %d\nfailed: %d\n", res.Success, res.Skipped, len(res.Failures))
			if len(res.Failures) == 0 {
				return nil
			}
			if err := writeFailures(errFile, res.Failures); err != nil {
				return err
			}
			fmt.Fprintf(out, "failures written to %s\n", errFile)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&dataTypes, "data-type", "t", nil, "data type to reindex (repeatable)")
	cmd.Flags().IntVarP(&batchSize, "batch-size", "s", holdingpen.DefaultReindexBatch, "ids per reindex task")
	cmd.Flags().StringVarP(&queue, "queue", "q", "", "task queue for the reindex tasks")
	cmd.Flags().BoolVar(&confirmed, "yes-i-know", false, "confirm the reindex")
	cmd.Flags().StringVar(&errFile, "errors-file", failuresFile, "where to write failed ids")
	_ = cmd.MarkFlagRequired("data-type")
	return cmd
}

func writeFailures(path string, failures []record.ReindexFailure) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write failures: %w", err)
	}
	defer f.Close()
	return encodeFailures(f, failures)
}

func encodeFailures(w io.Writer, failures []record.ReindexFailure) error {
	enc := json.NewEncoder(w)
	for _, f := range failures {
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("write failures: %w", err)
		}
	}
	return nil
}
