package deploy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/rollout/internal/errors"
	"github.com/rileyhilliard/rollout/internal/logger"
	"github.com/rileyhilliard/rollout/internal/mgmt"
	"github.com/rileyhilliard/rollout/internal/notify"
	"github.com/rileyhilliard/rollout/internal/util"
)

// notifyTimeout bounds the final notification sent after an interrupt.
const notifyTimeout = 10 * time.Second

// Options describes one deployment.
type Options struct {
	Client   mgmt.Client
	Notifier notify.Notifier
	Logger   logger.Logger

	ScriptID int
	Group    string
	Env      string

	Interval time.Duration
	Timeout  time.Duration

	// OnResolve runs once the group has been resolved.
	OnResolve func(ServerSet)

	// Confirm runs after server resolution and before dispatch. Returning
	// false aborts without dispatching. Nil means proceed.
	Confirm func(ServerSet) (bool, error)

	// OnDispatch runs once the parent action exists.
	OnDispatch func(mgmt.Action, ServerSet)

	// OnReport runs for every report that differs from the previous one.
	OnReport func(Report)
}

// Result is what a finished (or abandoned) deployment looked like.
type Result struct {
	ParentID  int
	Servers   ServerSet
	Report    Report
	Started   time.Time
	Finished  time.Time
	Cancelled bool
}

// Duration is how long the deployment was watched.
func (r *Result) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Run resolves the group, dispatches the script, and watches it to the end.
// Notification failures are logged and never fail the run. A deployment that
// ends in failed returns an ErrDeploy error alongside the result.
func Run(ctx context.Context, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Noop()
	}

	servers, err := ResolveServers(ctx, opts.Client, opts.Group)
	if err != nil {
		return nil, err
	}
	log.Info("group %s resolved to %d server(s)", opts.Group, len(servers))
	if opts.OnResolve != nil {
		opts.OnResolve(servers)
	}
	if len(servers) == 0 {
		log.Warn("group %s has no servers; the report will only hold the summary", opts.Group)
	}

	if opts.Confirm != nil {
		ok, err := opts.Confirm(servers)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &Result{Servers: servers, Cancelled: true}, nil
		}
	}

	parent, err := Dispatch(ctx, opts.Client, opts.ScriptID, opts.Group)
	if err != nil {
		return nil, err
	}
	result := &Result{ParentID: parent.ID, Servers: servers, Started: time.Now()}
	log.Info("script %d dispatched to %s as action %d", opts.ScriptID, opts.Group, parent.ID)
	if opts.OnDispatch != nil {
		opts.OnDispatch(parent, servers)
	}

	send(ctx, notifier, log, StartMessage(opts, parent.ID, len(servers)))

	poller := &Poller{
		Client:   opts.Client,
		Servers:  servers,
		Interval: opts.Interval,
		Timeout:  opts.Timeout,
		Logger:   log,
	}
	report, err := poller.Watch(ctx, parent.ID, opts.OnReport)
	result.Report = report
	result.Finished = time.Now()
	if err != nil {
		// The remote run may still be going; say so while ctx may be dead.
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		send(bg, notifier, log, AbandonedMessage(opts, parent.ID, report))
		cancel()
		return result, err
	}

	send(ctx, notifier, log, EndMessage(opts, parent.ID, report, result.Duration()))
	send(ctx, notifier, log, report.Text())

	return result, Conclude(report, log)
}

// Conclude logs the final status. Succeeded and canceled are informational;
// anything else is logged as an error and returned as ErrDeploy.
func Conclude(report Report, log logger.Logger) error {
	status := report.Status()
	counts := report.Counts()
	detail := formatCounts(counts)

	if !status.IsFailure() {
		log.Info("deployment finished: %s%s", status, detail)
		return nil
	}

	log.Error("deployment finished: %s%s", status, detail)
	var failed []string
	for _, rec := range report.Servers() {
		if rec.Status.IsFailure() {
			failed = append(failed, rec.Hostname)
		}
	}
	suggestion := "Check the action log in the management console."
	if len(failed) > 0 {
		suggestion = "Failed on: " + util.JoinOrNone(failed)
	}
	return errors.New(errors.ErrDeploy,
		fmt.Sprintf("Deployment finished with status %s", status),
		suggestion)
}

// StartMessage announces a dispatched deployment.
func StartMessage(opts Options, parentID, servers int) string {
	return fmt.Sprintf("Deploying script %d to %s (%s, %s). Action %d.",
		opts.ScriptID, opts.Group, util.Count(servers, "server", "servers"), envLabel(opts.Env), parentID)
}

// EndMessage summarizes a finished deployment.
func EndMessage(opts Options, parentID int, report Report, took time.Duration) string {
	return fmt.Sprintf("Script %d on %s finished: %s%s after %s. Action %d.",
		opts.ScriptID, opts.Group, report.Status(), formatCounts(report.Counts()), took.Round(time.Second), parentID)
}

// AbandonedMessage tells the channel rollout stopped watching early.
func AbandonedMessage(opts Options, parentID int, last Report) string {
	status := last.Status()
	if status == "" {
		status = "unknown"
	}
	return fmt.Sprintf("Stopped watching script %d on %s; last status %s. Action %d may still be running.",
		opts.ScriptID, opts.Group, status, parentID)
}

func send(ctx context.Context, n notify.Notifier, log logger.Logger, text string) {
	if err := n.Notify(ctx, text); err != nil {
		log.Warn("notification not delivered: %v", err)
	}
}

// formatCounts renders " (2 succeeded, 1 failed)" in a fixed status order.
func formatCounts(counts map[Status]int) string {
	if len(counts) == 0 {
		return ""
	}
	order := []Status{StatusSucceeded, StatusFailed, StatusCanceled, StatusInProgress, StatusQueued}
	var parts []string
	seen := make(map[Status]bool)
	for _, s := range order {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
		seen[s] = true
	}
	var other int
	for s, n := range counts {
		if !seen[s] {
			other += n
		}
	}
	if other > 0 {
		parts = append(parts, fmt.Sprintf("%d other", other))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func envLabel(env string) string {
	if env == "" {
		return "prod"
	}
	return env
}
