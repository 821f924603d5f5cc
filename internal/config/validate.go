package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rileyhilliard/rollout/internal/errors"
)

// MinPollInterval keeps the loop from hammering the management API.
const MinPollInterval = time.Second

// Validate checks the config for the selected environment and returns
// structured error messages.
func Validate(cfg *Config, dev bool) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig, "No configuration loaded", "")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but rollout only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade rollout to the latest release.")
	}

	if err := validateEnvironment(EnvName(dev), cfg.Select(dev)); err != nil {
		return err
	}

	if err := validatePoll(cfg.Poll); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'poll' section or ROLLOUT_POLL_* variables.")
	}

	if cfg.API.Timeout < 0 {
		return errors.New(errors.ErrConfig,
			"api.timeout can't be negative",
			"Use 0 for no timeout, or a duration like 30s.")
	}

	if cfg.Notify.URL != "" {
		if err := validateURL(cfg.Notify.URL); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Webhook URL is not valid: "+cfg.Notify.URL,
				"Set "+EnvVar("notify.url")+" to the full https:// incoming webhook URL, or unset it.")
		}
	}

	switch cfg.Output.Color {
	case "", "auto", "always", "never":
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown color mode '%s'", cfg.Output.Color),
			"Use auto, always, or never.")
	}

	return nil
}

func validateEnvironment(name string, env Environment) error {
	prefix := name + "."
	if env.URI == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("No management API URI for the %s environment", name),
			fmt.Sprintf("Set %s or add %suri to %s.", EnvVar(prefix+"uri"), prefix, ConfigFileName))
	}
	if err := validateURL(env.URI); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Management API URI for %s is not valid: %s", name, env.URI),
			"Use a full URL like https://mgmt.example.com")
	}
	if env.Key == "" || env.Secret == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Missing API credentials for the %s environment", name),
			fmt.Sprintf("Set %s and %s.", EnvVar(prefix+"key"), EnvVar(prefix+"secret")))
	}
	if (env.CertFile == "") != (env.KeyFile == "") {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Client certificate for %s needs both a cert and a key file", name),
			fmt.Sprintf("Set both %s and %s, or neither.", EnvVar(prefix+"cert_file"), EnvVar(prefix+"key_file")))
	}
	return nil
}

func validatePoll(p PollConfig) error {
	if p.Interval < MinPollInterval {
		return fmt.Errorf("poll interval %s is too short (minimum %s)", p.Interval, MinPollInterval)
	}
	if p.Timeout < 0 {
		return fmt.Errorf("poll timeout can't be negative")
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
