package deploy

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/rileyhilliard/rollout/internal/errors"
	"github.com/rileyhilliard/rollout/internal/logger"
	"github.com/rileyhilliard/rollout/internal/mgmt"
)

// DefaultInterval is the wait between two status fetches.
const DefaultInterval = 15 * time.Second

// Poller watches a dispatched action until it reaches a terminal status.
type Poller struct {
	Client  mgmt.Client
	Servers ServerSet

	// Interval between fetches. Zero means DefaultInterval.
	Interval time.Duration

	// Timeout is an overall deadline. Zero waits forever.
	Timeout time.Duration

	Logger logger.Logger
}

// Watch fetches a report immediately and then once per Interval. onChange
// runs for the first report and for every report that differs from the one
// before it. Watch returns the terminal report, or the last report seen and
// an error if a fetch fails or ctx ends first.
func (p *Poller) Watch(ctx context.Context, parentID int, onChange func(Report)) (Report, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log := p.Logger
	if log == nil {
		log = logger.Noop()
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	var last Report
	for tick := 1; ; tick++ {
		report, err := BuildReport(ctx, p.Client, parentID, p.Servers)
		if err != nil {
			if ctx.Err() != nil {
				return last, p.stopped(ctx)
			}
			return last, err
		}

		status := report.Status()
		log.Debug("poll %d: action %d is %s", tick, parentID, status)

		if !report.Equal(last) && onChange != nil {
			onChange(report)
		}
		last = report

		if status.IsTerminal() {
			return report, nil
		}

		wait := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			wait.Stop()
			return last, p.stopped(ctx)
		case <-wait.C:
		}
	}
}

func (p *Poller) stopped(ctx context.Context) error {
	err := ctx.Err()
	if stderrors.Is(err, context.DeadlineExceeded) && p.Timeout > 0 {
		return errors.WrapWithCode(err, errors.ErrAPI,
			fmt.Sprintf("Gave up waiting after %s", p.Timeout),
			"The deployment may still be running; check the management console.")
	}
	return errors.WrapWithCode(err, errors.ErrAPI,
		"Stopped watching the deployment",
		"The deployment keeps running remotely; check the management console.")
}
