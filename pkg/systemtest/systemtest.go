package systemtest

import (
	"fmt"
	"time"

	"github.com/pipdrive/pipdrive/pkg/verbose"
)

// Step is a single command invocation inside a scenario.
//
// Fields:
//   - Name: Step identifier shown in results
//   - Argline: Arguments passed to the tool under test
//   - WantExit: Expected exit code, usually 0
//   - ContinueOnFail: When true, a failure does not stop the scenario
type Step struct {
	Name           string
	Argline        string
	WantExit       int
	ContinueOnFail bool
}

// Scenario is an ordered list of steps exercising the tool under test.
type Scenario struct {
	Name  string
	Steps []Step
}

// Runner executes scenarios against a command runner, usually a fixture.
type Runner struct {
	runner CommandRunner
}

// NewRunner creates a scenario runner.
//
// Parameters:
//   - runner: Target to execute steps against; usually a *fixture.Fixture
//
// Returns:
//   - *Runner: A runner ready to execute scenarios
func NewRunner(runner CommandRunner) *Runner {
	return &Runner{runner: runner}
}

// Run executes a scenario step by step.
//
// It performs the following operations:
//   - Runs each step's argument line through the command runner
//   - Marks a step failed on launch error or unexpected exit code
//   - Stops at the first failed step unless it is marked ContinueOnFail
//
// Parameters:
//   - scenario: The scenario to execute
//
// Returns:
//   - *Result: Per-step results; never nil
func (r *Runner) Run(scenario Scenario) *Result {
	result := &Result{Scenario: scenario.Name}
	start := time.Now()

	verbose.Infof("Running scenario %q (%d steps)", scenario.Name, len(scenario.Steps))

	for _, step := range scenario.Steps {
		stepResult := r.runStep(step)
		result.Steps = append(result.Steps, stepResult)

		if !stepResult.Passed && !step.ContinueOnFail {
			verbose.Infof("Scenario %q stopped at step %q", scenario.Name, step.Name)
			break
		}
	}

	result.TotalDuration = time.Since(start)
	return result
}

// runStep executes a single step and classifies the outcome.
func (r *Runner) runStep(step Step) StepResult {
	start := time.Now()

	res, err := r.runner.Pipenv(step.Argline)
	elapsed := time.Since(start)

	if err != nil {
		return StepResult{
			Name:           step.Name,
			Passed:         false,
			Duration:       elapsed,
			Error:          err,
			ContinueOnFail: step.ContinueOnFail,
		}
	}

	passed := res.ExitCode == step.WantExit
	var stepErr error
	if !passed {
		stepErr = fmt.Errorf("exit code %d, want %d", res.ExitCode, step.WantExit)
	}

	return StepResult{
		Name:           step.Name,
		Passed:         passed,
		Duration:       elapsed,
		Error:          stepErr,
		Output:         res.Stdout + res.Stderr,
		ContinueOnFail: step.ContinueOnFail,
	}
}
