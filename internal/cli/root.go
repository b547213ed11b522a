package cli

import (
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/me/shopfloor/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagNoColor   bool

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking SHOPFLOOR_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("SHOPFLOOR_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the shopfloor CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shopfloor",
		Short: "Shopfloor: greedy job-shop scheduling",
		Long: `Shopfloor builds machine schedules for sets of jobs, honouring job
order, machine exclusivity and maintenance windows.

Problems can be scheduled locally (run, validate) or on a shopfloor
server (submit, list, status, delete).`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			if flagNoColor {
				color.NoColor = true
			}
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(flagLogLevel), flagLogFormat, cmd.ErrOrStderr())
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "Shopfloor server URL (or SHOPFLOOR_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newRunCmd(),
		newValidateCmd(),
		newAlgorithmsCmd(),
		newSubmitCmd(),
		newListCmd(),
		newStatusCmd(),
		newDeleteCmd(),
	)

	return root
}
