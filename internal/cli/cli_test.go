package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rileyhilliard/rollout/internal/config"
	"github.com/rileyhilliard/rollout/internal/logger"
	"github.com/rileyhilliard/rollout/internal/mgmt"
	mgmttest "github.com/rileyhilliard/rollout/internal/mgmt/testing"
	"github.com/rileyhilliard/rollout/internal/notify"
	"github.com/rileyhilliard/rollout/internal/ui"
	"github.com/spf13/pflag"
)

var plyServers = []mgmt.Server{
	{ID: 1, Hostname: "web-1", Group: "ply-servers"},
	{ID: 2, Hostname: "web-2", Group: "ply-servers"},
}

// resetFlags puts every root flag back to its default, before and after
// the test, so Changed state doesn't leak between Execute calls.
func resetFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		for _, fs := range []*pflag.FlagSet{rootCmd.Flags(), rootCmd.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
	}
	reset()
	t.Cleanup(reset)
}

func withMachineMode(t *testing.T, on bool) {
	t.Helper()
	orig := machineMode
	t.Cleanup(func() { machineMode = orig })
	machineMode = on
}

// isolate runs the test in an empty directory with an empty HOME and a
// valid prod environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, key := range []string{"prod.uri", "prod.key", "prod.secret", "dev.uri", "dev.key", "dev.secret", "notify.url", "poll.interval", "poll.timeout", "output.color"} {
		t.Setenv(config.EnvVar(key), "")
	}
	t.Setenv(config.EnvVar("prod.uri"), "https://mgmt.example.com")
	t.Setenv(config.EnvVar("prod.key"), "key")
	t.Setenv(config.EnvVar("prod.secret"), "secret")
	ui.DisableColors()
	logger.SetVerbose(false)
	return dir
}

// stubDeps swaps the client, notifier and TTY check for fakes.
func stubDeps(t *testing.T, fake mgmt.Client, rec notify.Notifier) *config.Environment {
	t.Helper()
	origClient, origNotifier, origInteractive, origConfirm := newClient, newNotifier, interactive, confirmDispatch
	t.Cleanup(func() {
		newClient, newNotifier, interactive, confirmDispatch = origClient, origNotifier, origInteractive, origConfirm
	})

	var used config.Environment
	newClient = func(env config.Environment, _ time.Duration, _ logger.Logger) (mgmt.Client, error) {
		used = env
		if fake == nil {
			t.Error("unexpected management API client")
			return nil, errors.New("no client in this test")
		}
		return fake, nil
	}
	newNotifier = func(config.NotifyConfig) notify.Notifier { return rec }
	interactive = func() bool { return false }
	confirmDispatch = func(string, string, string) (bool, error) {
		t.Fatal("unexpected confirmation prompt")
		return false, nil
	}
	return &used
}

// executeRoot runs the root command with args and returns its output.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newFake(childStatus, parentStatus string) *mgmttest.FakeClient {
	fake := mgmttest.NewFakeClient("ply-servers", plyServers, 100)
	fake.AddPoll(100, plyServers, childStatus, parentStatus)
	return fake
}
