package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rileyhilliard/rollout/internal/config"
	"github.com/rileyhilliard/rollout/internal/deploy"
	"github.com/rileyhilliard/rollout/internal/errors"
	"github.com/rileyhilliard/rollout/internal/logger"
	"github.com/rileyhilliard/rollout/internal/mgmt"
	"github.com/rileyhilliard/rollout/internal/notify"
	"github.com/rileyhilliard/rollout/internal/ui"
	"github.com/rileyhilliard/rollout/internal/util"
)

// Swappable for tests.
var (
	newClient = func(env config.Environment, timeout time.Duration, log logger.Logger) (mgmt.Client, error) {
		return mgmt.New(mgmt.Options{
			BaseURI:  env.URI,
			Key:      env.Key,
			Secret:   env.Secret,
			CertFile: env.CertPath(),
			KeyFile:  env.KeyPath(),
			CAFile:   env.CAPath(),
			Timeout:  timeout,
			Logger:   log,
		})
	}

	newNotifier = func(cfg config.NotifyConfig) notify.Notifier {
		if cfg.URL == "" {
			return notify.Noop()
		}
		return notify.NewWebhook(cfg.URL, cfg.Username, cfg.Channel, cfg.Icon)
	}

	confirmDispatch = ui.Confirm

	interactive = func() bool {
		return ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout)
	}
)

// ReportEvent is the --json line printed for every report change.
type ReportEvent struct {
	Event    string          `json:"event"`
	ParentID int             `json:"parent_id"`
	Status   deploy.Status   `json:"status"`
	Records  []deploy.Record `json:"records"`
}

// DeployResult is the final --json document.
type DeployResult struct {
	Event     string          `json:"event"`
	ScriptID  int             `json:"script_id"`
	Group     string          `json:"group"`
	Env       string          `json:"env"`
	ParentID  int             `json:"parent_id,omitempty"`
	Status    deploy.Status   `json:"status,omitempty"`
	Servers   int             `json:"servers"`
	Duration  string          `json:"duration,omitempty"`
	Cancelled bool            `json:"cancelled,omitempty"`
	Records   []deploy.Record `json:"records,omitempty"`
}

// deployCommand loads the config for the selected environment, runs the
// deployment, and renders its progress to w.
func deployCommand(ctx context.Context, w io.Writer, opts DeployOptions) error {
	path, err := config.Find(opts.ConfigPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg, opts.Dev); err != nil {
		return err
	}
	if !noColor {
		ui.ConfigureColor(cfg.Output.Color)
	}

	interval := opts.Interval
	if interval == 0 {
		interval = cfg.Poll.Interval
	}
	envName := config.EnvName(opts.Dev)

	log := logger.NewEnvLogger("deploy")
	if path != "" {
		log.Debug("using config %s", path)
	}

	client, err := newClient(cfg.Select(opts.Dev), cfg.API.Timeout, logger.NewEnvLogger("mgmt"))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't set up the %s management API client", envName),
			"Check the URI and certificate settings for this environment.")
	}

	runOpts := deploy.Options{
		Client:   client,
		Notifier: newNotifier(cfg.Notify),
		Logger:   log,
		ScriptID: opts.ScriptID,
		Group:    opts.Group,
		Env:      envName,
		Interval: interval,
		Timeout:  cfg.Poll.Timeout,
	}

	if MachineMode() {
		return runMachine(ctx, w, opts, runOpts)
	}
	return runHuman(ctx, w, opts, runOpts)
}

func runHuman(ctx context.Context, w io.Writer, opts DeployOptions, runOpts deploy.Options) error {
	ui.PrintHeader(w, ui.HeaderInfo{
		Version:  formatVersion(version),
		Env:      runOpts.Env,
		ScriptID: opts.ScriptID,
		Group:    opts.Group,
	})
	pd := ui.NewPhaseDisplay(w)
	started := time.Now()

	runOpts.OnResolve = func(servers deploy.ServerSet) {
		pd.RenderSuccess(fmt.Sprintf("Resolved %s to %s", opts.Group, util.Count(len(servers), "server", "servers")), time.Since(started))
	}
	if !opts.Yes && interactive() {
		runOpts.Confirm = func(servers deploy.ServerSet) (bool, error) {
			fmt.Fprintln(w)
			fmt.Fprintln(w, ui.RenderServerTable(servers))
			ok, err := confirmDispatch(
				fmt.Sprintf("Run script %d on %s?", opts.ScriptID, util.Count(len(servers), "server", "servers")),
				"Dispatching can't be undone from here.",
				"Dispatch")
			if err == nil && !ok {
				pd.RenderSkipped("Dispatch", "declined")
			}
			return ok, err
		}
	}
	runOpts.OnDispatch = func(parent mgmt.Action, servers deploy.ServerSet) {
		pd.RenderSuccess(fmt.Sprintf("Dispatched script %d as action %d", opts.ScriptID, parent.ID), time.Since(started))
		pd.RenderWaiting(fmt.Sprintf("Watching action %d", parent.ID), fmt.Sprintf("(every %s)", runOpts.Interval))
	}
	runOpts.OnReport = func(report deploy.Report) {
		pd.Stamp(time.Now())
		fmt.Fprint(w, ui.RenderReport(report))
	}

	result, err := deploy.Run(ctx, runOpts)
	if result == nil || result.Cancelled || result.Finished.IsZero() {
		return err
	}

	if result.Report.Status().IsTerminal() {
		pd.Divider()
		fmt.Fprint(w, ui.RenderSummary(result.Report, result.Duration()))
	}
	return err
}

func runMachine(ctx context.Context, w io.Writer, opts DeployOptions, runOpts deploy.Options) error {
	runOpts.OnReport = func(report deploy.Report) {
		summary, _ := report.Summary()
		_ = WriteJSONSuccess(w, ReportEvent{
			Event:    "report",
			ParentID: summary.ActionID,
			Status:   report.Status(),
			Records:  report,
		})
	}

	result, err := deploy.Run(ctx, runOpts)

	doc := DeployResult{
		Event:    "result",
		ScriptID: opts.ScriptID,
		Group:    opts.Group,
		Env:      runOpts.Env,
	}
	if result != nil {
		doc.ParentID = result.ParentID
		doc.Status = result.Report.Status()
		doc.Servers = len(result.Servers)
		doc.Cancelled = result.Cancelled
		doc.Records = result.Report
		if d := result.Duration(); d > 0 {
			doc.Duration = d.Round(time.Second).String()
		}
	}

	if err != nil {
		if result == nil {
			return err
		}
		_ = writeJSONEnvelope(w, JSONEnvelope{Success: false, Data: doc, Error: ErrorToJSON(err)})
		return &reportedError{err: err}
	}
	return WriteJSONSuccess(w, doc)
}
