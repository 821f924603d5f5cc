package ui

import (
	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/rollout/internal/errors"
)

// Confirm asks a yes/no question with a Huh form.
// Callers must check for a terminal first.
func Confirm(title, description, affirmative string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative(affirmative).
				Negative("Cancel").
				Value(&ok),
		),
	)

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return false, nil
		}
		return false, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Run with --yes to skip the confirmation")
	}
	return ok, nil
}
