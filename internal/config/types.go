package config

import (
	"path/filepath"
	"time"
)

// CurrentConfigVersion is the schema version for the config file.
const CurrentConfigVersion = 1

// DefaultPollInterval is how often the deployment status is fetched.
const DefaultPollInterval = 15 * time.Second

// Config represents the complete rollout configuration, merged from
// defaults, the YAML file, .env and the process environment.
type Config struct {
	Version int          `yaml:"version" mapstructure:"version"`
	Prod    Environment  `yaml:"prod" mapstructure:"prod"`
	Dev     Environment  `yaml:"dev" mapstructure:"dev"`
	API     APIConfig    `yaml:"api" mapstructure:"api"`
	Notify  NotifyConfig `yaml:"notify" mapstructure:"notify"`
	Poll    PollConfig   `yaml:"poll" mapstructure:"poll"`
	Output  OutputConfig `yaml:"output" mapstructure:"output"`
}

// Environment is one credential set for the management API.
type Environment struct {
	// URI is the API base, e.g. https://mgmt.example.com.
	URI string `yaml:"uri" mapstructure:"uri"`

	Key    string `yaml:"key,omitempty" mapstructure:"key"`
	Secret string `yaml:"secret,omitempty" mapstructure:"secret"`

	// CertDir is prepended to relative CertFile, KeyFile and CAFile names.
	CertDir  string `yaml:"cert_dir,omitempty" mapstructure:"cert_dir"`
	CertFile string `yaml:"cert_file,omitempty" mapstructure:"cert_file"`
	KeyFile  string `yaml:"key_file,omitempty" mapstructure:"key_file"`
	CAFile   string `yaml:"ca_file,omitempty" mapstructure:"ca_file"`
}

// CertPath returns the client certificate path, or "" if none is configured.
func (e Environment) CertPath() string { return e.resolve(e.CertFile) }

// KeyPath returns the client key path, or "" if none is configured.
func (e Environment) KeyPath() string { return e.resolve(e.KeyFile) }

// CAPath returns the CA bundle path, or "" if none is configured.
func (e Environment) CAPath() string { return e.resolve(e.CAFile) }

func (e Environment) resolve(name string) string {
	if name == "" {
		return ""
	}
	name = ExpandTilde(name)
	if filepath.IsAbs(name) || e.CertDir == "" {
		return name
	}
	return filepath.Join(ExpandTilde(e.CertDir), name)
}

// APIConfig controls requests to the management API.
type APIConfig struct {
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// NotifyConfig describes the chat webhook. An empty URL disables notifications.
type NotifyConfig struct {
	URL      string `yaml:"url,omitempty" mapstructure:"url"`
	Username string `yaml:"username" mapstructure:"username"`
	Channel  string `yaml:"channel" mapstructure:"channel"`
	Icon     string `yaml:"icon" mapstructure:"icon"`
}

// PollConfig controls the status polling loop.
type PollConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Timeout is an overall deadline for the loop. Zero polls forever.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	Color string `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Notify: NotifyConfig{
			Username: "rollout",
			Channel:  "#deployments",
			Icon:     ":rocket:",
		},
		Poll: PollConfig{
			Interval: DefaultPollInterval,
		},
		Output: OutputConfig{
			Color: "auto",
		},
	}
}

// Select returns the credential set chosen by --dev.
func (c *Config) Select(dev bool) Environment {
	if dev {
		return c.Dev
	}
	return c.Prod
}

// EnvName is the display name of the selected credential set.
func EnvName(dev bool) string {
	if dev {
		return "dev"
	}
	return "prod"
}
