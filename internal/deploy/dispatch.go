package deploy

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/rollout/internal/errors"
	"github.com/rileyhilliard/rollout/internal/mgmt"
)

// Dispatch starts scriptID against group and returns the parent action.
// This triggers real remote execution; calling it twice starts two runs.
func Dispatch(ctx context.Context, client mgmt.Client, scriptID int, group string) (mgmt.Action, error) {
	if scriptID <= 0 {
		return mgmt.Action{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid script id %d", scriptID),
			"Pass a positive script id with --script")
	}
	if group == "" {
		return mgmt.Action{}, errors.New(errors.ErrConfig,
			"No server group given",
			"Pass the group name with --tag")
	}

	action, err := client.ExecuteScript(ctx, scriptID, group)
	if err != nil {
		return mgmt.Action{}, apiError(err, fmt.Sprintf("Failed to run script %d on '%s'", scriptID, group))
	}
	return action, nil
}
