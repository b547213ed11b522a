package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/me/shopfloor/pkg/model"
	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	var algorithm string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "submit <problem-file>",
		Short: "Schedule a problem on the server and store the run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read problem: %w", err)
			}

			q := url.Values{}
			if algorithm != "" {
				q.Set("algorithm", algorithm)
			}
			if dryRun {
				q.Set("dry_run", "true")
			}
			path := "/api/v1/schedules/"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			resp, err := client.PostDocument(path, doc)
			var apiErr *model.APIError
			if err != nil && !(errors.As(err, &apiErr) && apiErr.Code == model.ErrInfeasible) {
				if apiErr != nil {
					for _, d := range apiErr.Details {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s %s: %s\n", red("-"), d.Field, d.Message)
					}
				}
				return fmt.Errorf("submit: %w", err)
			}

			var run model.Run
			if jerr := json.Unmarshal(resp.Data, &run); jerr != nil {
				return fmt.Errorf("parse response: %w", jerr)
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, "Dry-run: schedule built, no run stored")
			} else {
				fmt.Fprintf(out, "Run created: %s\n", run.ID)
			}
			fmt.Fprintf(out, "  Algorithm: %s\n", run.Algorithm)
			fmt.Fprintf(out, "  Tasks:     %d\n", len(run.Outcome.Result.Schedule))
			fmt.Fprintf(out, "  Makespan:  %d\n", run.Outcome.Result.Makespan)
			if len(run.Violations) > 0 {
				fmt.Fprintf(out, "  Violations: %s\n", yellow(len(run.Violations)))
			}
			if err != nil {
				return fmt.Errorf("submit: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "Ordering algorithm (overrides the problem file)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the schedule without storing a run")
	return cmd
}
