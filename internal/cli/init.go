package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/rollout/internal/config"
	"github.com/rileyhilliard/rollout/internal/errors"
	"github.com/rileyhilliard/rollout/internal/ui"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Dir            string // Directory to write into; "" means the current one
	ProdURI        string // Pre-specified production API URI
	DevURI         string // Pre-specified dev API URI
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use what was given
}

// Init writes a starter .rollout.yaml.
func Init(w io.Writer, opts InitOptions) error {
	configPath := filepath.Join(opts.Dir, config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		overwrite, err := ui.Confirm(
			fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName),
			"", "Overwrite")
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(w, "Cancelled.")
			return nil
		}
	}

	prodURI, devURI := opts.ProdURI, opts.DevURI
	if !opts.NonInteractive && (prodURI == "" || devURI == "") {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Production API URI").
					Description("Base URI of the management API").
					Placeholder("https://mgmt.example.com").
					Value(&prodURI).
					Validate(validateURIInput),
				huh.NewInput().
					Title("Dev API URI (optional)").
					Description("Used with --dev").
					Placeholder("https://mgmt-dev.example.com").
					Value(&devURI).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return nil
						}
						return validateURIInput(s)
					}),
			),
		)

		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Pass --prod-uri and --dev-uri to skip the prompts")
		}
	}

	if err := config.WriteTemplate(configPath, strings.TrimSpace(prodURI), strings.TrimSpace(devURI)); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Fprintf(w, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintf(w, "  export %s=... %s=...\n", config.EnvVar("prod.key"), config.EnvVar("prod.secret"))
	fmt.Fprintln(w, "  rollout --script <id> --tag <group>")

	return nil
}

func validateURIInput(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter a full http:// or https:// URI")
	}
	return nil
}

// initCommand is the implementation called by the cobra command.
func initCommand(w io.Writer, prodURI, devURI string, force bool) error {
	return Init(w, InitOptions{
		ProdURI:        prodURI,
		DevURI:         devURI,
		Overwrite:      force,
		NonInteractive: !ui.IsTerminal(os.Stdin) || os.Getenv("CI") != "",
	})
}
