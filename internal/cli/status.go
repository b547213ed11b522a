package cli

import (
	"encoding/json"
	"fmt"

	"github.com/me/shopfloor/pkg/model"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status <run_id>",
		Short: "Show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			resp, err := client.Get("/api/v1/schedules/" + id)
			if err != nil {
				return fmt.Errorf("get run: %w", err)
			}

			out := cmd.OutOrStdout()
			if output == "json" {
				var v any
				if err := json.Unmarshal(resp.Data, &v); err != nil {
					return fmt.Errorf("parse response: %w", err)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(v)
			}

			var run model.Run
			if err := json.Unmarshal(resp.Data, &run); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Fprintf(out, "Run:     %s\n", run.ID)
			if run.Name != "" {
				fmt.Fprintf(out, "Name:    %s\n", run.Name)
			}
			fmt.Fprintf(out, "Created: %s\n", run.CreatedAt.Format("2006-01-02T15:04:05Z"))
			printOutcome(out, &run.Outcome)
			if len(run.Violations) > 0 {
				fmt.Fprintln(out, "\n"+yellow("Violations:"))
				for _, v := range run.Violations {
					fmt.Fprintf(out, "  %s %s\n", red("-"), v)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run_id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := client.Delete("/api/v1/schedules/" + args[0]); err != nil {
				return fmt.Errorf("delete run: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run deleted: %s\n", args[0])
			return nil
		},
	}
}
