package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rileyhilliard/rollout/internal/errors"
	"github.com/rileyhilliard/rollout/internal/logger"
	"github.com/rileyhilliard/rollout/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	verbose bool
	noColor bool
)

// Deploy flags
var (
	scriptFlag   int
	tagFlag      string
	devFlag      bool
	yesFlag      bool
	intervalFlag time.Duration
)

// rootCmd runs a script against a server group and watches it finish
var rootCmd = &cobra.Command{
	Use:   "rollout --script <id> --tag <group>",
	Short: "Run a management script on a server group and watch it finish",
	Long: `Dispatch a script to every server in a group through the management API,
then poll until the run succeeds, fails, or is canceled.

Each change in per-server status is printed as it happens. When a chat
webhook is configured, the channel gets a start notice, an end notice, and
a per-server breakdown.

Credentials come from the environment (or .env). --dev switches to the
ROLLOUT_DEV_* credential set.

Examples:
  rollout --script 42 --tag ply-servers
  rollout --script 42 --tag ply-servers --dev --yes
  rollout --script 42 --tag ply-servers --json`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
		if noColor {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := deployOptionsFromFlags(cmd)
		if err != nil {
			_ = cmd.Usage()
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return deployCommand(ctx, cmd.OutOrStdout(), opts)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .rollout.yaml, then ~/.config/rollout/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "print reports and the result as JSON")

	rootCmd.Flags().IntVarP(&scriptFlag, "script", "s", 0, "script id to execute (required)")
	rootCmd.Flags().StringVarP(&tagFlag, "tag", "t", "", "server group to run on (required)")
	rootCmd.Flags().BoolVar(&devFlag, "dev", false, "use the dev management API credentials")
	rootCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "dispatch without asking for confirmation")
	rootCmd.Flags().DurationVar(&intervalFlag, "interval", 0, "time between status checks (default from config, 15s)")
}

// Execute runs the root command and exits with the mapped exit code.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if err == nil {
		return
	}

	if !isReported(err) {
		if MachineMode() {
			_ = WriteJSONFromError(os.Stdout, err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	if isUnknownCommandError(err) {
		fmt.Fprintf(os.Stderr, "\nRun '%s --help' for usage.\n", rootCmd.Name())
	}
	os.Exit(errors.ExitCode(err))
}

// reportedError marks an error whose details were already written out.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func isReported(err error) bool {
	_, ok := err.(*reportedError)
	return ok
}

// isUnknownCommandError checks if the error is from cobra's unknown command or flag handling.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}
