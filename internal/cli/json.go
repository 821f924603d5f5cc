package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/rollout/internal/errors"
	"github.com/rileyhilliard/rollout/internal/mgmt"
)

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound  = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid   = "CONFIG_INVALID"
	ErrCodeAPIUnauthorized = "API_UNAUTHORIZED"
	ErrCodeAPIFailed       = "API_FAILED"
	ErrCodeDataInvalid     = "DATA_INVALID"
	ErrCodeDeployFailed    = "DEPLOY_FAILED"
	ErrCodeInterrupted     = "INTERRUPTED"
	ErrCodeUnknown         = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	env := JSONEnvelope{
		Success: true,
		Data:    data,
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	env := JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	env := JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	}
	return writeJSONEnvelope(w, env)
}

// writeJSONEnvelope writes the envelope as a single line so a stream of
// envelopes can be read line by line.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	return json.NewEncoder(w).Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	if stderrors.Is(err, context.Canceled) {
		return &JSONError{
			Code:    ErrCodeInterrupted,
			Message: "Interrupted",
		}
	}

	var rErr *errors.Error
	if stderrors.As(err, &rErr) {
		jsonErr := &JSONError{
			Code:       mapErrorCode(rErr),
			Message:    rErr.Message,
			Suggestion: rErr.Suggestion,
		}
		var se *mgmt.StatusError
		if stderrors.As(err, &se) {
			jsonErr.Details = map[string]interface{}{
				"method": se.Method,
				"path":   se.Path,
				"status": se.StatusCode,
			}
		}
		return jsonErr
	}

	// Generic error
	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(e *errors.Error) string {
	switch e.Code {
	case errors.ErrConfig:
		// Distinguish between not found and invalid
		msgLower := strings.ToLower(e.Message)
		if strings.Contains(msgLower, "not found") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrAPI:
		if mgmt.IsUnauthorized(e) {
			return ErrCodeAPIUnauthorized
		}
		return ErrCodeAPIFailed
	case errors.ErrData:
		return ErrCodeDataInvalid
	case errors.ErrDeploy:
		return ErrCodeDeployFailed
	}

	return ErrCodeUnknown
}
