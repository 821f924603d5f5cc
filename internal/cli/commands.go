package cli

import (
	"os"

	"github.com/rileyhilliard/rollout/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	initForce   bool
	initProdURI string
	initDevURI  string
)

// initCmd creates a new .rollout.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .rollout.yaml configuration",
	Long: `Create a .rollout.yaml file in the current directory.

The file holds API URIs, certificate paths, webhook and polling settings.
API keys and secrets never go in it; set them in the environment or .env.

Examples:
  rollout init
  rollout init --prod-uri https://mgmt.example.com --dev-uri https://mgmt-dev.example.com
  rollout init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(cmd.OutOrStdout(), initProdURI, initDevURI, initForce)
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for rollout.

Examples:
  # Bash
  rollout completion bash > /etc/bash_completion.d/rollout

  # Zsh
  rollout completion zsh > "${fpath[1]}/_rollout"

  # Fish
  rollout completion fish > ~/.config/fish/completions/rollout.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().StringVar(&initProdURI, "prod-uri", "", "production management API URI")
	initCmd.Flags().StringVar(&initDevURI, "dev-uri", "", "dev management API URI")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}
