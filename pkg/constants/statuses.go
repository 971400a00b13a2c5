// Package constants provides centralized string constants used throughout the application.
// This eliminates magic strings and provides a single source of truth for status values.
package constants

// Check status constants represent the state of a project during verification.
const (
	// StatusOK indicates the check passed.
	StatusOK = "OK"

	// StatusStale indicates the lock file no longer matches the manifest.
	StatusStale = "Stale"

	// StatusMissing indicates a required file is absent.
	StatusMissing = "Missing"

	// StatusInvalid indicates a file exists but could not be validated.
	StatusInvalid = "Invalid"
)

// Placeholder values for display when data is not available.
const (
	// PlaceholderNA is used when a value is not available.
	PlaceholderNA = "#N/A"

	// PlaceholderWildcard is used when a version is unconstrained.
	PlaceholderWildcard = "*"
)

// Icon constants for status display.
// These provide visual indicators for project states in CLI output.
const (
	// IconCheckmark indicates a passed check (checkmark).
	IconCheckmark = "✓"

	// IconCross indicates a failed check (cross).
	IconCross = "✗"

	// IconWarn is the warning prefix for messages.
	IconWarn = "⚠️"

	// IconLightbulb indicates a hint or suggestion.
	IconLightbulb = "💡"
)
