package cmd

import (
	"testing"

	"github.com/pipdrive/pipdrive/pkg/testutil"
)

// resetFlags restores all command flags to their defaults. Cobra only
// overwrites flag variables that appear on the command line, so values
// from a previous test would otherwise leak.
func resetFlags() {
	verboseFlag = false
	versionFlag = false
	configFlag = ""
	sourcesRawFlag = false
	venvPackagesFlag = false
	runEnvFlags = nil
	runTimeoutFlag = -1
	// pflag only updates ArgsLenAtDash when a "--" is parsed, so a dash
	// position from a previous test would otherwise leak into the next run.
	_ = runCmd.Flags().Parse([]string{"--"})
}

// executeCommand runs the CLI with the given arguments and captures stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags()
	rootCmd.SetArgs(args)

	var err error
	out := testutil.CaptureStdout(t, func() {
		err = ExecuteTest()
	})
	return out, err
}

// executeCommandFull runs the CLI capturing both stdout and stderr.
func executeCommandFull(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	resetFlags()
	rootCmd.SetArgs(args)

	stdout, stderr = testutil.CaptureOutput(t, func() {
		err = ExecuteTest()
	})
	return stdout, stderr, err
}
