// Package cmdexec executes the dependency-manager CLI under test as a child
// process and reports the outcome as a structured result.
//
// The runner never mutates process-global state: the environment for the
// child is an explicit map merged over the current environment, so
// concurrent runners with different environments can coexist in one test
// process.
package cmdexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pipdrive/pipdrive/pkg/verbose"
)

// Result represents the observable outcome of a single command invocation.
//
// A Result is produced once per invocation and is not mutated afterwards.
// A non-zero ExitCode is a reported outcome, not an error: launch failures
// are the only condition surfaced as Go errors by the runner.
//
// Fields:
//   - ExitCode: The real process exit code (0 = success)
//   - Stdout: Complete captured standard output
//   - Stderr: Complete captured standard error
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// OK reports whether the invocation exited successfully.
//
// Returns:
//   - bool: true if ExitCode is zero
func (r *Result) OK() bool {
	return r.ExitCode == 0
}

// Runner invokes a tool as a child process with a bound working directory
// and environment.
//
// Fields:
//   - Tool: Executable name or path to invoke
//   - Dir: Working directory for invocations; empty means the current directory
//   - Env: Variables merged over the current process environment for the child
//   - Timeout: Maximum duration per invocation; zero disables the timeout
type Runner struct {
	Tool    string
	Dir     string
	Env     map[string]string
	Timeout time.Duration
}

// New creates a Runner for the given tool bound to a working directory.
//
// Parameters:
//   - tool: Executable name or path to invoke
//   - dir: Working directory for invocations
//
// Returns:
//   - *Runner: A runner with no extra environment and no timeout
func New(tool, dir string) *Runner {
	return &Runner{Tool: tool, Dir: dir}
}

// Run invokes the tool with the given arguments using a background context.
//
// Parameters:
//   - args: Arguments passed to the tool
//
// Returns:
//   - *Result: Exit code and captured output streams
//   - error: Launch failure (executable missing, permission denied) or timeout;
//     nil when the process ran to completion, regardless of its exit code
func (r *Runner) Run(args ...string) (*Result, error) {
	return r.RunContext(context.Background(), args...)
}

// RunString invokes the tool with an argument line that is split on
// whitespace while respecting single and double quotes.
//
// Parameters:
//   - argline: Argument string, e.g. `install -e ./pkg` or `run python -c "print(1)"`
//
// Returns:
//   - *Result: Exit code and captured output streams
//   - error: Launch failure or timeout; nil otherwise
func (r *Runner) RunString(argline string) (*Result, error) {
	return r.RunContext(context.Background(), SplitArgs(argline)...)
}

// RunContext invokes the tool with the given arguments under a context.
//
// It performs the following operations:
//   - Applies the runner's timeout (if any) on top of the caller's context
//   - Builds the child environment by merging Env over the process environment
//   - Kills the child's entire process group when the context expires
//   - Captures stdout and stderr separately and completely
//   - Reports the real process exit code in the Result
//
// A non-zero exit is NOT an error: it is reported via the Result so test
// bodies can assert on it. Errors are reserved for conditions where no exit
// code exists, such as the executable not being found, a permission failure,
// or the context expiring before the process terminated.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - args: Arguments passed to the tool
//
// Returns:
//   - *Result: Exit code and captured output streams
//   - error: Launch failure or context expiry; nil otherwise
func (r *Runner) RunContext(ctx context.Context, args ...string) (*Result, error) {
	if strings.TrimSpace(r.Tool) == "" {
		return nil, fmt.Errorf("no tool configured")
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Tool, args...)
	cmd.Env = mergeEnviron(r.Env)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}

	// Run in its own process group so children die with it on timeout.
	// Cancel kills the whole group as soon as the context fires, and
	// WaitDelay bounds the wait for any straggler still holding the
	// output pipes, so a grandchild cannot stall Run past the deadline.
	setProcGroup(cmd)
	cmd.Cancel = func() error {
		return killProcGroup(cmd)
	}
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	verbose.CommandExec(r.Tool, args, cmd.Dir)

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("command %s did not finish: %w", r.Tool, ctx.Err())
		}

		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// Launch failure: no process ran, so there is no exit code.
			return nil, fmt.Errorf("failed to launch %s: %w", r.Tool, err)
		}

		res := &Result{
			ExitCode: exitErr.ExitCode(),
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		}
		verbose.CommandResult(r.Tool, res.ExitCode, res.Stdout, res.Stderr)
		return res, nil
	}

	res := &Result{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	verbose.CommandResult(r.Tool, res.ExitCode, res.Stdout, res.Stderr)
	return res, nil
}

// mergeEnviron builds the child environment from the current process
// environment with the explicit overrides applied on top.
//
// Keys present in overrides replace any value inherited from the process
// environment; other inherited variables pass through untouched.
//
// Parameters:
//   - overrides: Explicit variables for the child; may be nil
//
// Returns:
//   - []string: Environment in KEY=VALUE form suitable for exec.Cmd
func mergeEnviron(overrides map[string]string) []string {
	if len(overrides) == 0 {
		return os.Environ()
	}

	environ := make([]string, 0, len(os.Environ())+len(overrides))
	for _, kv := range os.Environ() {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, overridden := overrides[key]; overridden {
			continue
		}
		environ = append(environ, kv)
	}
	for key, value := range overrides {
		environ = append(environ, key+"="+value)
	}
	return environ
}

// SplitArgs parses a command string into arguments, respecting quotes.
//
// This function splits a command string into individual arguments while
// properly handling quoted strings (both single and double quotes) and
// escape sequences. Quoted strings are treated as single arguments even if
// they contain spaces.
//
// Parameters:
//   - cmdStr: Command string to parse into arguments
//
// Returns:
//   - []string: Array of parsed command arguments
func SplitArgs(cmdStr string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)
	skip := -1

	for i, r := range cmdStr {
		if i == skip {
			continue
		}

		// Handle escape sequences
		if r == '\\' && i+1 < len(cmdStr) {
			next := rune(cmdStr[i+1])
			if next == '"' || next == '\'' || next == '\\' || next == ' ' {
				current.WriteRune(next)
				skip = i + 1
				continue
			}
		}

		// Handle quotes
		if (r == '"' || r == '\'') && (i == 0 || cmdStr[i-1] != '\\') {
			if !inQuote {
				inQuote = true
				quoteChar = r
			} else if r == quoteChar {
				inQuote = false
			} else {
				current.WriteRune(r)
			}
			continue
		}

		// Handle spaces outside quotes
		if !inQuote && (r == ' ' || r == '\t') {
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
			continue
		}

		current.WriteRune(r)
	}

	// Add final argument
	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args
}
