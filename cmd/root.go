// Package cmd implements the command-line interface for pipdrive.
// It provides commands for inspecting Pipfile sources, verifying a project
// against its lock file, inspecting virtual environments, and running the
// dependency manager under a controlled environment.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pipdrive/pipdrive/pkg/errors"
	"github.com/pipdrive/pipdrive/pkg/verbose"
)

var exitFunc = os.Exit
var verboseFlag bool
var versionFlag bool
var configFlag string

var rootCmd = &cobra.Command{
	Use:          "pipdrive",
	Short:        "Harness and inspector for Pipfile-based projects",
	Long:         `Inspect Pipfile sources, verify lock file freshness, and drive a pipenv-compatible dependency manager under a controlled environment.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseFlag {
			verbose.Enable()
		}
		if HasArchMismatch() {
			fmt.Fprint(os.Stderr, GetBuildWarnings())
			fmt.Fprintln(os.Stderr)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if versionFlag {
			printVersionOutput()
			return
		}
		_ = cmd.Help()
	},
}

// Execute runs the root command and exits with appropriate code:
//   - 0: Success
//   - 2: Check or command failure
//   - 3: Configuration or parse error
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		code := errors.GetExitCode(err)
		verbose.Infof("Exit code %d: %v", code, err)
		exitFunc(code)
	}
}

// ExecuteTest runs the root command for testing (returns error instead of exiting).
//
// Unlike Execute(), this function returns the error directly without calling
// os.Exit, making it suitable for use in test suites.
//
// Returns:
//   - error: Command execution error, or nil on success
func ExecuteTest() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable verbose debug output")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to a pipdrive config file")

	// -v/--version is a LOCAL flag so it only works on the root command
	rootCmd.Flags().BoolVarP(&versionFlag, "version", "v", false, "Show version information")

	// Commands ordered logically: info → inspection → execution
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(venvCmd)
	rootCmd.AddCommand(runCmd)
}

// projectDir resolves the project directory from positional args.
//
// Parameters:
//   - args: Command positional arguments
//
// Returns:
//   - string: First argument, or "." when none given
func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
