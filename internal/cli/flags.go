package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/rollout/internal/config"
	"github.com/rileyhilliard/rollout/internal/errors"
	"github.com/spf13/cobra"
)

// DeployOptions is everything a deployment needs from the command line.
type DeployOptions struct {
	ScriptID   int
	Group      string
	Dev        bool
	Yes        bool
	Interval   time.Duration
	ConfigPath string
}

// deployOptionsFromFlags reads and checks the deploy flags. It touches
// neither the config nor the network, so a bad invocation fails fast.
func deployOptionsFromFlags(cmd *cobra.Command) (DeployOptions, error) {
	opts := DeployOptions{
		ScriptID:   scriptFlag,
		Group:      strings.TrimSpace(tagFlag),
		Dev:        devFlag,
		Yes:        yesFlag,
		Interval:   intervalFlag,
		ConfigPath: cfgFile,
	}

	var missing []string
	if !cmd.Flags().Changed("script") {
		missing = append(missing, "--script")
	}
	if opts.Group == "" {
		missing = append(missing, "--tag")
	}
	if len(missing) > 0 {
		return opts, errors.New(errors.ErrConfig,
			fmt.Sprintf("Missing required flag(s): %s", strings.Join(missing, ", ")),
			"Both the script id and the server group are required, e.g. rollout --script 42 --tag ply-servers")
	}

	if err := ValidateDeployOptions(opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// ValidateDeployOptions checks flag values that don't need the config.
func ValidateDeployOptions(opts DeployOptions) error {
	if opts.ScriptID <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%d' isn't a valid script id", opts.ScriptID),
			"Script ids are positive integers; find them in the management console.")
	}
	if opts.Group == "" {
		return errors.New(errors.ErrConfig,
			"No server group given",
			"Pass the group name with --tag")
	}
	if opts.Interval != 0 && opts.Interval < config.MinPollInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("--interval %s is too short", opts.Interval),
			fmt.Sprintf("Use at least %s, e.g. --interval 15s", config.MinPollInterval))
	}
	return nil
}
