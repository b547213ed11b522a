package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/me/shopfloor/pkg/model"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var limit, offset int
	var algorithm string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))
			if algorithm != "" {
				q.Set("algorithm", algorithm)
			}

			resp, err := client.Get("/api/v1/schedules/?" + q.Encode())
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			var runs []model.RunSummary
			if err := json.Unmarshal(resp.Data, &runs); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs found.")
				return nil
			}

			fmt.Fprintf(out, "%-40s  %-10s  %-6s  %-8s  %-20s  %s\n", "ID", "ALGORITHM", "TASKS", "MAKESPAN", "NAME", "CREATED")
			fmt.Fprintf(out, "%-40s  %-10s  %-6s  %-8s  %-20s  %s\n", "--", "---------", "-----", "--------", "----", "-------")
			for _, r := range runs {
				makespan := strconv.Itoa(r.Makespan)
				if r.Infeasible {
					makespan += "*"
				}
				fmt.Fprintf(out, "%-40s  %-10s  %-6d  %-8s  %-20s  %s\n",
					r.ID, r.Algorithm, r.TaskCount, makespan, r.Name, r.CreatedAt.Format("2006-01-02T15:04:05Z"))
			}

			if resp.Pagination != nil && resp.Pagination.HasMore {
				fmt.Fprintf(out, "\n(%d of %d shown)\n", len(runs), resp.Pagination.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of runs to skip")
	cmd.Flags().StringVar(&algorithm, "algorithm", "", "Only show runs using this algorithm")
	return cmd
}
