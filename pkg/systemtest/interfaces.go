package systemtest

import "github.com/pipdrive/pipdrive/pkg/cmdexec"

// CommandRunner abstracts the surface a scenario needs from a project
// fixture: running the tool under test with a shell-style argument line.
//
// Standard implementation: *fixture.Fixture
//
// Example:
//
//	var runner systemtest.CommandRunner = fx
//	result := systemtest.NewRunner(runner).Run(scenario)
type CommandRunner interface {
	// Pipenv runs the tool under test with the given arguments.
	//
	// Parameters:
	//   - argline: Arguments as a single shell-style string
	//
	// Returns:
	//   - *cmdexec.Result: Exit code and captured output
	//   - error: Launch failure or timeout
	Pipenv(argline string) (*cmdexec.Result, error)
}
