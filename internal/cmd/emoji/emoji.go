// Package emoji provides symbol constants for CLI output.
// These symbols create a consistent visual language across all command-line commands.
package emoji

// Symbol constants for CLI output provide a consistent visual language across commands.
// These symbols are used for status indicators, alerts, and user feedback in terminal output.
const (
	// Success symbols indicate positive outcomes.

	// Success represents successful completion of an operation.
	// Used for: fixed files, completed runs, verified outputs.
	Success = "✓"

	// Error and warning symbols indicate problems or missing requirements.

	// Error represents failures or missing required configuration.
	// Used for: failed writes, unreadable volumes, missing exiftool.
	Error = "✗"

	// Warning represents warnings or non-critical issues.
	// Used for: unmatched media, ambiguous sidecars, degraded outputs.
	Warning = "!"

	// Status symbols for per-file states.

	// Skipped represents skipped or already-settled work.
	// Used for: up-to-date outputs on reruns, duplicate volume entries.
	Skipped = "-"

	// Unknown represents unknown or indeterminate states.
	// Used for: entries the catalog could not classify.
	Unknown = "?"

	// Information and progress symbols.

	// Info represents informational messages.
	// Used for: general information, tips, context.
	Info = "i"
)
