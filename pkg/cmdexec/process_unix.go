//go:build unix

package cmdexec

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// setProcGroup configures the command to run in its own process group.
//
// On Unix systems, this sets the Setpgid flag which creates a new process
// group. The tool under test often spawns interpreters and resolvers of its
// own; running it in a dedicated group lets the runner terminate the whole
// tree when an invocation times out.
//
// Parameters:
//   - cmd: The command to configure for process group execution
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// killProcGroup kills the entire process group for the given process.
//
// On Unix systems, this sends SIGKILL to the entire process group (using a
// negative PID) so no orphaned children survive a timed-out invocation.
//
// Parameters:
//   - cmd: The command whose process group should be killed
//
// Returns:
//   - error: os.ErrProcessDone if the group already exited, another error if
//     the kill operation fails, nil if successful or process is nil
func killProcGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}
