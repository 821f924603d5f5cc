package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/rollout/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// clearEnv unsets every bound variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, 15*time.Second, cfg.Poll.Interval)
	assert.Zero(t, cfg.Poll.Timeout)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Empty(t, cfg.Notify.URL)
	assert.Equal(t, "rollout", cfg.Notify.Username)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)

	content := `
version: 1
prod:
  uri: https://mgmt.example.com
  key: pk
  secret: ps
  cert_dir: /etc/rollout
  cert_file: client.pem
  key_file: client.key
dev:
  uri: https://mgmt-dev.example.com
notify:
  url: https://hooks.example.com/T000
  channel: "#ops"
poll:
  interval: 30s
  timeout: 1h
api:
  timeout: 10s
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "https://mgmt.example.com", cfg.Prod.URI)
	assert.Equal(t, "pk", cfg.Prod.Key)
	assert.Equal(t, "/etc/rollout/client.pem", cfg.Prod.CertPath())
	assert.Equal(t, "/etc/rollout/client.key", cfg.Prod.KeyPath())
	assert.Empty(t, cfg.Prod.CAPath())
	assert.Equal(t, "https://mgmt-dev.example.com", cfg.Dev.URI)
	assert.Equal(t, "#ops", cfg.Notify.Channel)
	assert.Equal(t, "rollout", cfg.Notify.Username, "unset keys keep defaults")
	assert.Equal(t, 30*time.Second, cfg.Poll.Interval)
	assert.Equal(t, time.Hour, cfg.Poll.Timeout)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("prod:\n  uri: https://file.example.com\n"), 0644))

	t.Setenv("ROLLOUT_API_URI", "https://env.example.com")
	t.Setenv("ROLLOUT_DEV_API_KEY", "dk")
	t.Setenv("ROLLOUT_POLL_INTERVAL", "5s")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.Prod.URI)
	assert.Equal(t, "dk", cfg.Dev.Key)
	assert.Equal(t, 5*time.Second, cfg.Poll.Interval)
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("ROLLOUT_API_URI", "https://env.example.com")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.Prod.URI)
	assert.Equal(t, DefaultPollInterval, cfg.Poll.Interval)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	dotenv := "ROLLOUT_API_SECRET=from-dotenv\nROLLOUT_API_KEY=from-dotenv\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnvFileName), []byte(dotenv), 0644))
	t.Setenv("ROLLOUT_API_KEY", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.Prod.Secret)
	assert.Equal(t, "from-env", cfg.Prod.Key, ".env must not override the real environment")
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("prod: [unclosed"), 0644))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFind(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

		found, err := Find(path)
		require.NoError(t, err)
		assert.Equal(t, path, found)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Find(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("current directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("version: 1\n"), 0644))

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, ConfigFileName, filepath.Base(found))
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("HOME", t.TempDir())

		found, err := Find("")
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestEnvironmentPaths(t *testing.T) {
	tests := []struct {
		name string
		env  Environment
		cert string
		ca   string
	}{
		{
			name: "no files",
			env:  Environment{CertDir: "/certs"},
		},
		{
			name: "relative files join cert dir",
			env:  Environment{CertDir: "/certs", CertFile: "c.pem", CAFile: "ca.pem"},
			cert: "/certs/c.pem",
			ca:   "/certs/ca.pem",
		},
		{
			name: "absolute file ignores cert dir",
			env:  Environment{CertDir: "/certs", CertFile: "/other/c.pem"},
			cert: "/other/c.pem",
		},
		{
			name: "relative file without cert dir",
			env:  Environment{CertFile: "c.pem"},
			cert: "c.pem",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.cert, tt.env.CertPath())
			assert.Equal(t, tt.ca, tt.env.CAPath())
		})
	}
}

func TestSelect(t *testing.T) {
	cfg := &Config{
		Prod: Environment{URI: "https://prod"},
		Dev:  Environment{URI: "https://dev"},
	}

	assert.Equal(t, "https://prod", cfg.Select(false).URI)
	assert.Equal(t, "https://dev", cfg.Select(true).URI)
	assert.Equal(t, "prod", EnvName(false))
	assert.Equal(t, "dev", EnvName(true))
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", ExpandTilde(""))
	assert.Equal(t, home, ExpandTilde("~"))
	assert.Equal(t, filepath.Join(home, "certs"), ExpandTilde("~/certs"))
	assert.Equal(t, "/abs/path", ExpandTilde("/abs/path"))
	assert.Equal(t, "~other/x", ExpandTilde("~other/x"))
}

func TestTemplate(t *testing.T) {
	data, err := Template("https://mgmt.example.com", "https://mgmt-dev.example.com")
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "# rollout configuration."))
	assert.NotContains(t, text, "secret:")

	var parsed map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	prod := parsed["prod"].(map[string]interface{})
	assert.Equal(t, "https://mgmt.example.com", prod["uri"])
	poll := parsed["poll"].(map[string]interface{})
	assert.Equal(t, "15s", poll["interval"])
}

func TestWriteTemplate_RoundTripsThroughLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, WriteTemplate(path, "https://mgmt.example.com", "https://mgmt-dev.example.com"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://mgmt.example.com", cfg.Prod.URI)
	assert.Equal(t, "https://mgmt-dev.example.com", cfg.Dev.URI)
	assert.Equal(t, DefaultPollInterval, cfg.Poll.Interval)
}
