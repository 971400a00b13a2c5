package preflight

import (
	"fmt"
	"os"
)

// getShellCommandCheck returns the shell and args for checking if a command exists.
//
// The 'command -v' built-in is used because it detects executables, aliases,
// shell functions, and built-ins. The user's preferred shell (SHELL) is
// consulted first, falling back to "sh", and run as a login shell so
// profile-defined aliases are visible.
//
// Parameters:
//   - cmd: The command name to check for existence
//
// Returns:
//   - shell: The shell executable to use
//   - args: Arguments for checking command existence using 'command -v'
func getShellCommandCheck(cmd string) (shell string, args []string) {
	shell = os.Getenv("SHELL")
	if shell == "" {
		shell = "sh"
	}
	return shell, []string{"-l", "-c", fmt.Sprintf("command -v %s", cmd)}
}
