package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/rollout/internal/config"
	"github.com/rileyhilliard/rollout/internal/deploy"
	"github.com/rileyhilliard/rollout/internal/errors"
	"github.com/rileyhilliard/rollout/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notifyConfig(url string) config.NotifyConfig {
	c := config.DefaultConfig().Notify
	c.URL = url
	return c
}

func deployOpts() DeployOptions {
	return DeployOptions{ScriptID: 42, Group: "ply-servers", Yes: true, Interval: time.Millisecond}
}

// envelopes decodes one JSONEnvelope per output line.
func envelopes(t *testing.T, out string) []map[string]interface{} {
	t.Helper()
	var envs []map[string]interface{}
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var env map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &env), "line: %s", sc.Text())
		envs = append(envs, env)
	}
	return envs
}

func TestDeployCommand_HumanOutput(t *testing.T) {
	isolate(t)
	fake := newFake("queued", "in-progress")
	fake.AddPoll(100, plyServers, "succeeded", "succeeded")
	rec := &notify.Recorder{}
	stubDeps(t, fake, rec)

	var out bytes.Buffer
	require.NoError(t, deployCommand(context.Background(), &out, deployOpts()))

	s := out.String()
	assert.Contains(t, s, "Resolved ply-servers to 2 servers")
	assert.Contains(t, s, "Watching action 100 (every 1ms)")
	assert.Equal(t, 2, strings.Count(s, deploy.SummaryName), "one table per report change")
	assert.Contains(t, s, "○ queued")
	assert.Contains(t, s, "✓ succeeded")
	assert.Contains(t, s, "Succeeded on 2 of 2 servers")

	require.Len(t, rec.Messages, 3)
	assert.Equal(t, "Deploying script 42 to ply-servers (2 servers, prod). Action 100.", rec.Messages[0])
}

func TestDeployCommand_UsesConfigInterval(t *testing.T) {
	isolate(t)
	t.Setenv("ROLLOUT_POLL_INTERVAL", "2s")
	stubDeps(t, newFake("succeeded", "succeeded"), notify.Noop())

	opts := deployOpts()
	opts.Interval = 0

	var out bytes.Buffer
	require.NoError(t, deployCommand(context.Background(), &out, opts))
	assert.Contains(t, out.String(), "(every 2s)")
}

func TestDeployCommand_ConfirmDeclined(t *testing.T) {
	isolate(t)
	fake := newFake("succeeded", "succeeded")
	rec := &notify.Recorder{}
	stubDeps(t, fake, rec)
	interactive = func() bool { return true }

	var asked string
	confirmDispatch = func(title, _, _ string) (bool, error) {
		asked = title
		return false, nil
	}

	opts := deployOpts()
	opts.Yes = false

	var out bytes.Buffer
	require.NoError(t, deployCommand(context.Background(), &out, opts))

	assert.Equal(t, "Run script 42 on 2 servers?", asked)
	assert.Contains(t, out.String(), "web-1", "server table shown before asking")
	assert.Contains(t, out.String(), "Dispatch (declined)")
	assert.Empty(t, fake.ExecuteCalls)
	assert.Empty(t, rec.Messages)
}

func TestDeployCommand_YesSkipsConfirm(t *testing.T) {
	isolate(t)
	fake := newFake("succeeded", "succeeded")
	stubDeps(t, fake, notify.Noop())
	interactive = func() bool { return true }

	var out bytes.Buffer
	require.NoError(t, deployCommand(context.Background(), &out, deployOpts()))
	assert.Len(t, fake.ExecuteCalls, 1)
}

func TestDeployCommand_MachineOutput(t *testing.T) {
	isolate(t)
	withMachineMode(t, true)
	fake := newFake("in-progress", "in-progress")
	fake.AddPoll(100, plyServers, "succeeded", "succeeded")
	stubDeps(t, fake, notify.Noop())

	var out bytes.Buffer
	require.NoError(t, deployCommand(context.Background(), &out, deployOpts()))

	envs := envelopes(t, out.String())
	require.Len(t, envs, 3, "two report events and the result")

	first := envs[0]["data"].(map[string]interface{})
	assert.Equal(t, "report", first["event"])
	assert.Equal(t, "in-progress", first["status"])
	assert.Equal(t, float64(100), first["parent_id"])
	records := first["records"].([]interface{})
	require.Len(t, records, 3)
	assert.Equal(t, "web-1", records[0].(map[string]interface{})["computer_name"])

	last := envs[2]
	assert.Equal(t, true, last["success"])
	result := last["data"].(map[string]interface{})
	assert.Equal(t, "result", result["event"])
	assert.Equal(t, "succeeded", result["status"])
	assert.Equal(t, float64(2), result["servers"])
	assert.NotContains(t, out.String(), "Resolved", "no human decorations in JSON mode")
}

func TestDeployCommand_MachineOutputFailed(t *testing.T) {
	isolate(t)
	withMachineMode(t, true)
	stubDeps(t, newFake("failed", "failed"), notify.Noop())

	var out bytes.Buffer
	err := deployCommand(context.Background(), &out, deployOpts())
	require.Error(t, err)
	assert.True(t, isReported(err), "result already printed")
	assert.Equal(t, errors.ExitDeployFail, errors.ExitCode(err))

	envs := envelopes(t, out.String())
	last := envs[len(envs)-1]
	assert.Equal(t, false, last["success"])
	assert.Equal(t, ErrCodeDeployFailed, last["error"].(map[string]interface{})["code"])
	assert.Equal(t, "failed", last["data"].(map[string]interface{})["status"])
}

func TestDeployCommand_MachineOutputEarlyError(t *testing.T) {
	isolate(t)
	withMachineMode(t, true)
	fake := newFake("succeeded", "succeeded")
	fake.ListServersErr = assert.AnError
	stubDeps(t, fake, notify.Noop())

	var out bytes.Buffer
	err := deployCommand(context.Background(), &out, deployOpts())
	require.Error(t, err)
	assert.False(t, isReported(err), "Execute prints errors that happen before dispatch")
	assert.Empty(t, out.String())
}

func TestDeployCommand_Interrupted(t *testing.T) {
	isolate(t)
	fake := newFake("in-progress", "in-progress")
	rec := &notify.Recorder{}
	stubDeps(t, fake, rec)

	ctx, cancel := context.WithCancel(context.Background())
	opts := deployOpts()
	opts.Interval = time.Hour

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- deployCommand(ctx, &out, opts) }()

	require.Eventually(t, func() bool { return fake.PollsServed() >= 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	var err error
	select {
	case err = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("deployment did not stop after cancel")
	}
	require.Error(t, err)
	assert.Equal(t, errors.ExitInterrupted, errors.ExitCode(err))
	require.Len(t, rec.Messages, 2, "start and abandoned notices")
	assert.Contains(t, rec.Messages[1], "may still be running")
}

func TestDeployCommand_ConfigErrors(t *testing.T) {
	t.Run("explicit config missing", func(t *testing.T) {
		isolate(t)
		stubDeps(t, nil, notify.Noop())

		opts := deployOpts()
		opts.ConfigPath = "nope.yaml"
		err := deployCommand(context.Background(), &bytes.Buffer{}, opts)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("missing credentials", func(t *testing.T) {
		isolate(t)
		t.Setenv("ROLLOUT_API_SECRET", "")
		stubDeps(t, nil, notify.Noop())

		err := deployCommand(context.Background(), &bytes.Buffer{}, deployOpts())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ROLLOUT_API_SECRET")
	})
}

func TestNewNotifier(t *testing.T) {
	assert.Equal(t, notify.Noop(), newNotifier(notifyConfig("")))

	n := newNotifier(notifyConfig("https://hooks.example.com/x"))
	wh, ok := n.(*notify.Webhook)
	require.True(t, ok)
	assert.Equal(t, "https://hooks.example.com/x", wh.URL)
	assert.Equal(t, "#deployments", wh.Channel)
}
