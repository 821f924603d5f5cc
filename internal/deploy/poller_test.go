package deploy

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/rileyhilliard/rollout/internal/errors"
	"github.com/rileyhilliard/rollout/internal/logger"
	"github.com/rileyhilliard/rollout/internal/mgmt"
	mgmttest "github.com/rileyhilliard/rollout/internal/mgmt/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var twoServers = []mgmt.Server{
	{ID: 1, Hostname: "web-1", Group: "ply-servers"},
	{ID: 2, Hostname: "web-2", Group: "ply-servers"},
}

func newPoller(fake *mgmttest.FakeClient) *Poller {
	return &Poller{
		Client:   fake,
		Servers:  serverSet(twoServers...),
		Interval: time.Millisecond,
		Logger:   logger.Noop(),
	}
}

func TestWatch_StopsOnFirstTerminalStatus(t *testing.T) {
	for _, terminal := range []string{"succeeded", "failed", "canceled"} {
		t.Run(terminal, func(t *testing.T) {
			fake := mgmttest.NewFakeClient("ply-servers", twoServers, 100)
			fake.AddPoll(100, twoServers, "queued", "queued")
			fake.AddPoll(100, twoServers, "in-progress", "in-progress")
			fake.AddPoll(100, twoServers, "in-progress", "paused")
			fake.AddPoll(100, twoServers, terminal, terminal)
			fake.AddPoll(100, twoServers, "queued", "queued")

			report, err := newPoller(fake).Watch(context.Background(), 100, nil)
			require.NoError(t, err)

			assert.Equal(t, Status(terminal), report.Status())
			assert.Equal(t, 4, fake.PollsServed(), "must stop on the first terminal tick")
		})
	}
}

func TestWatch_TerminalOnFirstTick(t *testing.T) {
	fake := mgmttest.NewFakeClient("ply-servers", twoServers, 100)
	fake.AddPoll(100, twoServers, "succeeded", "succeeded")

	_, err := newPoller(fake).Watch(context.Background(), 100, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.PollsServed())
}

func TestWatch_ReportsOnlyChanges(t *testing.T) {
	fake := mgmttest.NewFakeClient("ply-servers", twoServers, 100)
	fake.AddPoll(100, twoServers, "queued", "queued")
	fake.AddPoll(100, twoServers, "queued", "queued")
	fake.AddPoll(100, twoServers, "in-progress", "in-progress")
	fake.AddPoll(100, twoServers, "in-progress", "in-progress")
	fake.AddPoll(100, twoServers, "succeeded", "succeeded")

	var seen []Report
	report, err := newPoller(fake).Watch(context.Background(), 100, func(r Report) {
		seen = append(seen, r)
	})
	require.NoError(t, err)

	require.Len(t, seen, 3)
	assert.Equal(t, StatusQueued, seen[0].Status())
	assert.Equal(t, StatusInProgress, seen[1].Status())
	assert.Equal(t, StatusSucceeded, seen[2].Status())
	assert.True(t, seen[2].Equal(report))
	assert.Equal(t, 5, fake.PollsServed())
}

func TestWatch_WaitsIntervalBetweenFetches(t *testing.T) {
	fake := mgmttest.NewFakeClient("ply-servers", twoServers, 100)
	fake.AddPoll(100, twoServers, "queued", "queued")
	fake.AddPoll(100, twoServers, "queued", "queued")
	fake.AddPoll(100, twoServers, "succeeded", "succeeded")

	p := newPoller(fake)
	p.Interval = 20 * time.Millisecond

	start := time.Now()
	_, err := p.Watch(context.Background(), 100, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestWatch_ContextCancel(t *testing.T) {
	fake := mgmttest.NewFakeClient("ply-servers", twoServers, 100)
	fake.AddPoll(100, twoServers, "in-progress", "in-progress")

	ctx, cancel := context.WithCancel(context.Background())
	p := newPoller(fake)
	p.Interval = time.Hour

	var emitted int
	done := make(chan error, 1)
	go func() {
		_, err := p.Watch(ctx, 100, func(Report) {
			emitted++
			cancel()
		})
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, context.Canceled))
		assert.Equal(t, errors.ExitInterrupted, errors.ExitCode(err))
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
	assert.Equal(t, 1, emitted)
}

func TestWatch_Timeout(t *testing.T) {
	fake := mgmttest.NewFakeClient("ply-servers", twoServers, 100)
	fake.AddPoll(100, twoServers, "in-progress", "in-progress")

	p := newPoller(fake)
	p.Interval = 5 * time.Millisecond
	p.Timeout = 30 * time.Millisecond

	last, err := p.Watch(context.Background(), 100, nil)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "Gave up waiting")
	assert.Equal(t, StatusInProgress, last.Status())
}

func TestWatch_FetchErrorIsFatal(t *testing.T) {
	fake := mgmttest.NewFakeClient("ply-servers", twoServers, 100)
	fake.ListActionsErr = stderrors.New("502 bad gateway")

	_, err := newPoller(fake).Watch(context.Background(), 100, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAPI))
	assert.Len(t, fake.ListActionsCalls, 1, "no retry")
}

func TestWatch_DefaultInterval(t *testing.T) {
	assert.Equal(t, 15*time.Second, DefaultInterval)
}
