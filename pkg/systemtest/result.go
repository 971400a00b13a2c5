// Package systemtest runs scripted verification scenarios against a
// project fixture, validating that the dependency manager under test
// behaves end to end.
package systemtest

import (
	"fmt"
	"strings"
	"time"
)

// StepResult represents the result of a single scenario step.
type StepResult struct {
	// Name is the step identifier.
	Name string

	// Passed indicates whether the step passed.
	Passed bool

	// Duration is how long the step took to execute.
	Duration time.Duration

	// Error contains the error message if the step failed.
	Error error

	// Output contains the command output (stdout/stderr).
	Output string

	// ContinueOnFail indicates if the scenario should continue despite failure.
	ContinueOnFail bool
}

// Result represents the aggregate result of running a scenario.
type Result struct {
	// Scenario is the name of the scenario that produced this result.
	Scenario string

	// Steps contains results for each executed step.
	Steps []StepResult

	// TotalDuration is the total time for all steps.
	TotalDuration time.Duration
}

// Passed returns true if all executed steps passed.
//
// Returns:
//   - bool: true if every step passed; false if any step failed
func (r *Result) Passed() bool {
	for _, s := range r.Steps {
		if !s.Passed {
			return false
		}
	}
	return true
}

// PassedCount returns the number of steps that passed.
//
// Returns:
//   - int: Count of steps with Passed=true
func (r *Result) PassedCount() int {
	count := 0
	for _, s := range r.Steps {
		if s.Passed {
			count++
		}
	}
	return count
}

// FailedCount returns the number of steps that failed.
//
// Returns:
//   - int: Count of steps with Passed=false
func (r *Result) FailedCount() int {
	return len(r.Steps) - r.PassedCount()
}

// CriticalFailures returns steps that failed and are marked as critical
// (ContinueOnFail=false). A critical failure stops the scenario.
//
// Returns:
//   - []StepResult: Failed steps where ContinueOnFail is false
func (r *Result) CriticalFailures() []StepResult {
	var failures []StepResult
	for _, s := range r.Steps {
		if !s.Passed && !s.ContinueOnFail {
			failures = append(failures, s)
		}
	}
	return failures
}

// HasCriticalFailure returns true if any critical step failed.
//
// Returns:
//   - bool: true if at least one critical step failed
func (r *Result) HasCriticalFailure() bool {
	return len(r.CriticalFailures()) > 0
}

// FailedSteps returns all steps that failed regardless of ContinueOnFail.
//
// Returns:
//   - []StepResult: All failed steps; empty if none failed
func (r *Result) FailedSteps() []StepResult {
	var failures []StepResult
	for _, s := range r.Steps {
		if !s.Passed {
			failures = append(failures, s)
		}
	}
	return failures
}

// Summary returns a brief summary string of the scenario results.
//
// Returns:
//   - string: One-line summary (e.g., "All 5 steps passed" or "3/5 steps passed (2 failed)")
func (r *Result) Summary() string {
	total := len(r.Steps)
	passed := r.PassedCount()
	failed := r.FailedCount()

	if failed == 0 {
		return fmt.Sprintf("All %d steps passed", total)
	}
	return fmt.Sprintf("%d/%d steps passed (%d failed)", passed, total, failed)
}

// FormatResults returns a formatted string showing all step results
// including passing steps.
//
// Use FormatResultsQuiet for minimal output (only shows on failure).
//
// Returns:
//   - string: Multi-line output with scenario name, per-step status, and durations
func (r *Result) FormatResults() string {
	return r.formatResults(true)
}

// FormatResultsQuiet returns formatted results only if there are failures.
//
// Returns:
//   - string: Output showing only failed steps; empty string if all passed
func (r *Result) FormatResultsQuiet() string {
	if r.Passed() {
		return ""
	}
	return r.formatResults(false)
}

// formatResults is the internal implementation for formatting results.
//
// Parameters:
//   - showPassing: When true, all steps are shown; when false, only failures
//
// Returns:
//   - string: Formatted multi-line output
func (r *Result) formatResults(showPassing bool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Scenario: %s\n", r.Scenario))
	sb.WriteString(strings.Repeat("─", 60) + "\n")

	for _, s := range r.Steps {
		if !showPassing && s.Passed {
			continue
		}

		icon := "✓"
		if !s.Passed {
			icon = "✗"
		}
		sb.WriteString(fmt.Sprintf("  %s %-40s [%s]\n", icon, s.Name, formatDuration(s.Duration)))

		if !s.Passed && s.Error != nil {
			errLines := strings.Split(s.Error.Error(), "\n")
			if len(errLines) > 0 {
				sb.WriteString(fmt.Sprintf("    └─ %s\n", errLines[0]))
			}
		}
	}

	sb.WriteString(strings.Repeat("─", 60) + "\n")
	return sb.String()
}

// formatDuration formats a duration for display in human-readable format.
//
// Parameters:
//   - d: Duration to format
//
// Returns:
//   - string: Milliseconds under one second (e.g., "500ms"), otherwise seconds (e.g., "2.5s")
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d.Milliseconds()))
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
