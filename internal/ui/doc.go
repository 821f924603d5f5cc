// Package ui provides terminal output components for rollout.
//
// Everything renders to strings or an io.Writer with Lip Gloss styles, so
// commands stay testable and --no-color only has to flip the color profile.
//
// # Components
//
//	RenderHeader       - Banner with version and deployment target
//	PhaseDisplay       - Stage lines (resolve, dispatch, watch)
//	RenderServerTable  - Servers in the target group (Bubbles table)
//	RenderReport       - Activity report, one row per server plus summary
//	Confirm            - Yes/no prompt before a non-idempotent dispatch
//
// # Color Scheme
//
//	ColorSuccess   (green)  - succeeded
//	ColorError     (red)    - failed
//	ColorWarning   (yellow) - canceled, skipped
//	ColorInfo      (cyan)   - in-progress
//	ColorMuted     (gray)   - queued, timing, dividers
//
// Use ConfigureColor with the output.color setting, or DisableColors for
// --no-color.
package ui
