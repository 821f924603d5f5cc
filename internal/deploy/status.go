package deploy

// Status is an action's lifecycle state as reported by the management API.
// Values outside the known set are passed through untouched and treated as
// still running.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in-progress"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// IsTerminal reports whether the action has finished.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// IsFailure reports whether a terminal status should be treated as an error.
// Anything terminal that isn't succeeded or canceled counts.
func (s Status) IsFailure() bool {
	return s.IsTerminal() && s != StatusSucceeded && s != StatusCanceled
}

func (s Status) String() string {
	return string(s)
}
