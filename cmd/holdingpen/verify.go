package main

import (
	"errors"

	"github.com/spf13/cobra"
)

// errInconsistent makes verify exit non-zero when any index drifted.
var errInconsistent = errors.New("index differs from the store; run reindex")

func newVerifyCmd(load appLoader) *cobra.Command {
	var dataTypes []string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare the search index with the workflow store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			reports, err := app.Service.Verify(cmd.Context(), dataTypes)
			if err != nil {
				return err
			}
			if err := printJSON(cmd, reports); err != nil {
				return err
			}
			for _, rep := range reports {
				if !rep.Consistent() {
					return errInconsistent
				}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&dataTypes, "data-type", "t", nil, "data type to verify (repeatable)")
	_ = cmd.MarkFlagRequired("data-type")
	return cmd
}
