package cmd

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pipdrive/pipdrive/pkg/config"
	"github.com/pipdrive/pipdrive/pkg/errors"
	"github.com/pipdrive/pipdrive/pkg/venv"
	"github.com/pipdrive/pipdrive/pkg/verbose"
)

var venvPackagesFlag bool

var venvCmd = &cobra.Command{
	Use:   "venv [project-dir]",
	Short: "Show the project's virtual environment",
	Long: `Locate the virtual environment backing a project and show its root
and interpreter. With --packages, list the packages actually installed in
site-packages, including editable installs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVenv,
}

func init() {
	venvCmd.Flags().BoolVar(&venvPackagesFlag, "packages", false, "List installed packages")
}

// runVenv executes the venv command.
//
// Parameters:
//   - cmd: Cobra command instance
//   - args: Optional project directory
//
// Returns:
//   - error: Failure when no environment exists for the project
func runVenv(cmd *cobra.Command, args []string) error {
	dir := projectDir(args)

	cfg, err := config.LoadConfig(configFlag, dir)
	if err != nil {
		return err
	}

	env, err := venv.Locate(cfg.WorkingDir, nil)
	if err != nil {
		if stderrors.Is(err, venv.ErrNoVirtualenv) {
			return errors.NewExitErrorf(errors.ExitFailure,
				"no virtual environment found for %s", cfg.WorkingDir)
		}
		return errors.NewExitError(errors.ExitFailure, err)
	}

	fmt.Printf("Root:        %s\n", env.Root)
	fmt.Printf("Interpreter: %s\n", env.Interpreter())

	if !venvPackagesFlag {
		return nil
	}

	packages, err := env.InstalledPackages()
	if err != nil {
		return errors.NewExitError(errors.ExitFailure,
			fmt.Errorf("failed to inspect site-packages: %w", err))
	}

	verbose.Infof("Found %d installed package(s)", len(packages))
	fmt.Println()
	if len(packages) == 0 {
		fmt.Println("No packages installed")
		return nil
	}
	for _, name := range packages {
		fmt.Println(name)
	}
	return nil
}
