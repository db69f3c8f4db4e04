package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finops-claw-gang/holdingpen/internal/record"
)

func newGetCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Print a workflow object's record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			rec, err := app.Service.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, rec)
		},
	}
}

func newResolveCmd(load appLoader) *cobra.Command {
	var value string
	cmd := &cobra.Command{
		Use:   "resolve ID",
		Short: "Resolve the pending action of a workflow object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyVerb(cmd, load, args[0], record.VerbResolve, map[string]any{"value": value})
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "decision passed to the action (accept or reject)")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func newRestartCmd(load appLoader) *cobra.Command {
	var callbackPos string
	cmd := &cobra.Command{
		Use:   "restart ID",
		Short: "Restart a workflow object from the first task or --callback-pos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var verbArgs map[string]any
			if callbackPos != "" {
				pos, err := parsePosition(callbackPos)
				if err != nil {
					return err
				}
				verbArgs = map[string]any{"callback_pos": pos}
			}
			return applyVerb(cmd, load, args[0], record.VerbRestart, verbArgs)
		},
	}
	cmd.Flags().StringVar(&callbackPos, "callback-pos", "", "comma-separated task position, e.g. 0,2")
	return cmd
}

func newResumeCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "resume ID",
		Short: "Resume a workflow object with its next task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyVerb(cmd, load, args[0], record.VerbResume, nil)
		},
	}
}

func newDeleteCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a workflow object and its index document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Service.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
			return nil
		},
	}
}

func applyVerb(cmd *cobra.Command, load appLoader, rawID string, verb record.Verb, args map[string]any) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	app, err := load(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	out, err := app.Service.Apply(cmd.Context(), id, string(verb), args)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]any{"id": id, "verb": verb, "result": out})
}

func parsePosition(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	pos := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid --callback-pos %q", raw)
		}
		pos = append(pos, n)
	}
	return pos, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
