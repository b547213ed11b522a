package cli

import (
	"encoding/json"
	"fmt"

	"github.com/me/shopfloor/internal/config"
	"github.com/me/shopfloor/internal/engine"
	"github.com/me/shopfloor/internal/parser"
	"github.com/me/shopfloor/pkg/model"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var algorithm, expression, output string
	var ignoreMaintenance, noRecommendations bool

	cmd := &cobra.Command{
		Use:   "run <problem-file>",
		Short: "Schedule a problem locally and print the result",
		Long: `Parses a YAML or JSON problem document, validates it, builds a
schedule with the chosen algorithm and prints the schedule and metrics.

The produced schedule is re-checked for machine conflicts and job order
violations before it is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return fmt.Errorf("unknown output format %q (want text or json)", output)
			}

			prob, err := parser.New(logger).ParseFile(args[0])
			if err != nil {
				return err
			}
			if algorithm != "" {
				prob.Config.Algorithm = model.Algorithm(algorithm)
			}
			if expression != "" {
				prob.Config.Expression = expression
			}
			if ignoreMaintenance {
				prob.Config.ConsiderMaintenance = false
			}

			if n := reportProblemErrors(cmd, prob); n > 0 {
				return fmt.Errorf("problem has %d validation error(s)", n)
			}

			cfg := config.DefaultEngineConfig()
			cfg.Recommendations = !noRecommendations
			outcome, err := engine.New(cfg, logger).ScheduleJobs(cmd.Context(), prob.Jobs, prob.Config)
			if err != nil {
				return fmt.Errorf("schedule: %w", err)
			}

			violations := engine.ValidateSchedule(outcome.Result, prob.Config.ActiveWindows())
			for _, v := range violations {
				logger.Error("schedule violation", "detail", v)
			}

			out := cmd.OutOrStdout()
			if output == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(outcome); err != nil {
					return fmt.Errorf("encode outcome: %w", err)
				}
			} else {
				printOutcome(out, outcome)
			}

			if len(violations) > 0 {
				return fmt.Errorf("schedule has %d violation(s)", len(violations))
			}
			if outcome.Infeasible {
				return fmt.Errorf("infeasible: %d task(s) could not be scheduled", len(outcome.Remaining))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "Ordering algorithm (overrides the problem file)")
	cmd.Flags().StringVar(&expression, "expression", "", "JavaScript priority expression for --algorithm=expression")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	cmd.Flags().BoolVar(&ignoreMaintenance, "ignore-maintenance", false, "Schedule without maintenance windows")
	cmd.Flags().BoolVar(&noRecommendations, "no-recommendations", false, "Omit efficiency recommendations")

	return cmd
}

func newAlgorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the available ordering algorithms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := engine.New(config.DefaultEngineConfig(), logger)
			for _, alg := range e.Algorithms() {
				fmt.Fprintln(cmd.OutOrStdout(), alg)
			}
			return nil
		},
	}
}
