package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pipdrive/pipdrive/pkg/cmdexec"
	"github.com/pipdrive/pipdrive/pkg/config"
	"github.com/pipdrive/pipdrive/pkg/errors"
	"github.com/pipdrive/pipdrive/pkg/preflight"
)

var runEnvFlags []string
var runTimeoutFlag int

var runCmd = &cobra.Command{
	Use:   "run [project-dir] -- [tool arguments...]",
	Short: "Run the dependency manager inside a project",
	Long: `Run the configured dependency manager inside a project directory with
the harness environment applied. Arguments after -- are passed to the tool
verbatim. The tool's exit code becomes pipdrive's exit code.

Example:
  pipdrive run . -- install pytz --dev`,
	Args: cobra.ArbitraryArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringArrayVar(&runEnvFlags, "env", nil, "Extra KEY=VALUE environment entries (repeatable)")
	runCmd.Flags().IntVar(&runTimeoutFlag, "timeout", -1, "Timeout in seconds, 0 for none (default from config)")
}

// runRun executes the run command.
//
// Parameters:
//   - cmd: Cobra command instance
//   - args: Project directory followed by tool arguments
//
// Returns:
//   - error: Launch failure, timeout, or the tool's non-zero exit code
func runRun(cmd *cobra.Command, args []string) error {
	// Without a -- separator every argument belongs to the tool. With one,
	// a single argument before it names the project directory.
	dir := "."
	toolArgs := args
	if at := cmd.ArgsLenAtDash(); at > 0 {
		if at > 1 {
			return errors.NewExitErrorf(errors.ExitConfigError,
				"expected at most one project directory before --, got %d arguments", at)
		}
		dir = args[0]
		toolArgs = args[at:]
	}

	cfg, err := config.LoadConfig(configFlag, dir)
	if err != nil {
		return err
	}

	if result := preflight.ValidateTools(cfg.Tool); result.HasErrors() {
		return errors.NewExitErrorf(errors.ExitFailure, "%s", result.ErrorMessage())
	}

	env, err := parseEnvFlags(runEnvFlags)
	if err != nil {
		return err
	}
	env[cfg.Env.IgnoreVenv] = "1"

	runner := cmdexec.New(cfg.Tool, cfg.WorkingDir)
	runner.Env = env
	runner.Timeout = cfg.Timeout()
	if runTimeoutFlag >= 0 {
		runner.Timeout = time.Duration(runTimeoutFlag) * time.Second
	}

	res, err := runner.Run(toolArgs...)
	if err != nil {
		return errors.NewExitError(errors.ExitFailure, err)
	}

	fmt.Print(res.Stdout)
	fmt.Fprint(os.Stderr, res.Stderr)

	if !res.OK() {
		return errors.NewExitErrorf(res.ExitCode, "%s exited with code %d", cfg.Tool, res.ExitCode)
	}
	return nil
}

// parseEnvFlags converts repeated KEY=VALUE flags to a map.
//
// Parameters:
//   - entries: Raw flag values
//
// Returns:
//   - map[string]string: Parsed environment entries
//   - error: Config error for entries without "="
func parseEnvFlags(entries []string) (map[string]string, error) {
	env := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, errors.NewExitErrorf(errors.ExitConfigError,
				"invalid --env entry %q: expected KEY=VALUE", entry)
		}
		env[key] = value
	}
	return env, nil
}
