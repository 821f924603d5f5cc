package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rileyhilliard/rollout/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".rollout.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/rollout"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// DotEnvFileName is loaded into the environment before binding.
	DotEnvFileName = ".env"
)

// envBindings maps config keys to the environment variables that feed them.
// Credentials for the two environments live side by side; --dev picks one.
var envBindings = map[string]string{
	"prod.uri":       "ROLLOUT_API_URI",
	"prod.key":       "ROLLOUT_API_KEY",
	"prod.secret":    "ROLLOUT_API_SECRET",
	"prod.cert_dir":  "ROLLOUT_CERT_DIR",
	"prod.cert_file": "ROLLOUT_CERT_FILE",
	"prod.key_file":  "ROLLOUT_KEY_FILE",
	"prod.ca_file":   "ROLLOUT_CA_FILE",

	"dev.uri":       "ROLLOUT_DEV_API_URI",
	"dev.key":       "ROLLOUT_DEV_API_KEY",
	"dev.secret":    "ROLLOUT_DEV_API_SECRET",
	"dev.cert_dir":  "ROLLOUT_DEV_CERT_DIR",
	"dev.cert_file": "ROLLOUT_DEV_CERT_FILE",
	"dev.key_file":  "ROLLOUT_DEV_KEY_FILE",
	"dev.ca_file":   "ROLLOUT_DEV_CA_FILE",

	"api.timeout":     "ROLLOUT_API_TIMEOUT",
	"notify.url":      "ROLLOUT_WEBHOOK_URL",
	"notify.username": "ROLLOUT_WEBHOOK_USERNAME",
	"notify.channel":  "ROLLOUT_WEBHOOK_CHANNEL",
	"notify.icon":     "ROLLOUT_WEBHOOK_ICON",
	"poll.interval":   "ROLLOUT_POLL_INTERVAL",
	"poll.timeout":    "ROLLOUT_POLL_TIMEOUT",
	"output.color":    "ROLLOUT_COLOR",
}

// EnvVar returns the environment variable bound to a config key.
func EnvVar(key string) string {
	return envBindings[key]
}

// Load builds the config from defaults, the YAML file at path (optional,
// "" skips it), any .env file, and the environment, in increasing priority.
func Load(path string) (*Config, error) {
	loadDotEnv(path)

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to bind "+env,
				"This is a bug, please report it")
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Run 'rollout init' to create a config file, or specify one with --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		where := "the environment"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+where)
	}

	return cfg, nil
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .rollout.yaml in current directory
// 3. ~/.config/rollout/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
// A missing file is fine: everything can come from the environment.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if home, _ := os.UserHomeDir(); home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// loadDotEnv loads .env from the working directory and from next to the
// config file. godotenv never overrides variables that are already set.
func loadDotEnv(configPath string) {
	candidates := []string{DotEnvFileName}
	if configPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configPath), DotEnvFileName))
	}

	seen := make(map[string]bool)
	for _, p := range candidates {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		_ = godotenv.Load(abs)
	}
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("api.timeout", "0s")
	v.SetDefault("notify.username", def.Notify.Username)
	v.SetDefault("notify.channel", def.Notify.Channel)
	v.SetDefault("notify.icon", def.Notify.Icon)
	v.SetDefault("poll.interval", def.Poll.Interval.String())
	v.SetDefault("poll.timeout", "0s")
	v.SetDefault("output.color", def.Output.Color)
}
