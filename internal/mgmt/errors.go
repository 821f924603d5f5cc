package mgmt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rileyhilliard/rollout/internal/util"
)

// maxErrorBody caps how much of an error response ends up in messages.
const maxErrorBody = 200

// ErrMalformed marks responses that decoded but don't make sense, or
// didn't decode at all.
var ErrMalformed = errors.New("malformed response")

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := util.Truncate(strings.TrimSpace(e.Body), maxErrorBody)
	if body == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// IsUnauthorized reports whether err is a 401 or 403 from the API.
func IsUnauthorized(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == 401 || se.StatusCode == 403
	}
	return false
}
