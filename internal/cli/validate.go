package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/me/shopfloor/internal/engine"
	"github.com/me/shopfloor/internal/parser"
	"github.com/me/shopfloor/internal/validate"
	"github.com/me/shopfloor/pkg/model"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "validate <problem-file>",
		Short: "Check a problem document without scheduling it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote {
				return validateRemote(cmd, args[0])
			}

			prob, err := parser.New(logger).ParseFile(args[0])
			if err != nil {
				return err
			}
			if n := reportProblemErrors(cmd, prob); n > 0 {
				return fmt.Errorf("problem has %d validation error(s)", n)
			}
			fmt.Fprintln(cmd.OutOrStdout(), boldGreen(fmt.Sprintf("Problem is valid: %d job(s), %d maintenance window(s)",
				len(prob.Jobs), len(prob.Config.MaintenanceWindows))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Validate on the server instead of locally")
	return cmd
}

// reportProblemErrors prints pre-flight findings and returns their count.
func reportProblemErrors(cmd *cobra.Command, prob *model.Problem) int {
	out := cmd.OutOrStdout()
	jobErrs := engine.ValidateJobs(prob.Jobs)
	windowErrs := validate.MaintenanceWindows(prob.Config.MaintenanceWindows)
	for _, e := range jobErrs {
		fmt.Fprintf(out, "  %s %s\n", red("-"), e)
	}
	for _, msg := range windowErrs {
		fmt.Fprintf(out, "  %s %s\n", red("-"), msg)
	}
	return len(jobErrs) + len(windowErrs)
}

func validateRemote(cmd *cobra.Command, path string) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read problem: %w", err)
	}
	resp, err := client.PostDocument("/api/v1/validate/jobs", doc)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	var report struct {
		Valid             bool             `json:"valid"`
		Errors            []model.JobError `json:"errors"`
		MaintenanceErrors []string         `json:"maintenance_errors"`
	}
	if err := json.Unmarshal(resp.Data, &report); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	out := cmd.OutOrStdout()
	if report.Valid {
		fmt.Fprintln(out, boldGreen("Problem is valid"))
		return nil
	}
	for _, e := range report.Errors {
		fmt.Fprintf(out, "  %s %s\n", red("-"), e)
	}
	for _, msg := range report.MaintenanceErrors {
		fmt.Fprintf(out, "  %s %s\n", red("-"), msg)
	}
	return fmt.Errorf("problem has %d validation error(s)", len(report.Errors)+len(report.MaintenanceErrors))
}
