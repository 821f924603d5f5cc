package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Action succeeded
	SymbolFail     = "✗" // Action failed
	SymbolPending  = "○" // Action queued or unknown
	SymbolProgress = "◐" // Action in progress
	SymbolComplete = "●" // Stage done
	SymbolSkipped  = "⊘" // Action canceled
)
