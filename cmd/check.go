package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/pipdrive/pipdrive/pkg/config"
	"github.com/pipdrive/pipdrive/pkg/constants"
	"github.com/pipdrive/pipdrive/pkg/errors"
	"github.com/pipdrive/pipdrive/pkg/lockfile"
	"github.com/pipdrive/pipdrive/pkg/pipfile"
	"github.com/pipdrive/pipdrive/pkg/textfile"
	"github.com/pipdrive/pipdrive/pkg/verbose"
	"github.com/pipdrive/pipdrive/pkg/warnings"
)

var checkCmd = &cobra.Command{
	Use:   "check [project-dir]",
	Short: "Verify a project's manifest against its lock file",
	Long: `Verify a Pipfile-based project:

  - the manifest parses and every package index reference resolves
  - the lock file exists and parses
  - the lock file hash still matches the manifest
  - default and develop sections agree on shared package versions

Exits 0 when all checks pass, 2 on check failure, 3 on parse errors.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

// checkResult accumulates per-check outcomes for the summary line.
type checkResult struct {
	passed int
	failed int
}

func (r *checkResult) pass(format string, args ...any) {
	r.passed++
	fmt.Printf("%s %s\n", constants.IconCheckmark, fmt.Sprintf(format, args...))
}

func (r *checkResult) fail(format string, args ...any) {
	r.failed++
	fmt.Printf("%s %s\n", constants.IconCross, fmt.Sprintf(format, args...))
}

// runCheck executes the check command.
//
// Parameters:
//   - cmd: Cobra command instance
//   - args: Optional project directory
//
// Returns:
//   - error: Exit-coded error when any check fails
func runCheck(cmd *cobra.Command, args []string) error {
	dir := projectDir(args)

	cfg, err := config.LoadConfig(configFlag, dir)
	if err != nil {
		return err
	}

	pipfilePath := filepath.Join(cfg.WorkingDir, cfg.Pipfile)
	lockPath := filepath.Join(cfg.WorkingDir, cfg.Lockfile)

	var res checkResult

	pf, err := pipfile.Load(pipfilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewExitErrorf(errors.ExitFailure, "no %s found in %s", cfg.Pipfile, dir)
		}
		return errors.NewExitError(errors.ExitConfigError,
			fmt.Errorf("failed to parse %s: %w", cfg.Pipfile, err))
	}
	res.pass("%s parses", cfg.Pipfile)

	if err := pf.Validate(); err != nil {
		res.fail("index references: %v", err)
	} else {
		res.pass("index references resolve")
	}

	lf, err := lockfile.Load(lockPath)
	switch {
	case err != nil && os.IsNotExist(err):
		res.fail("%s not yet generated", cfg.Lockfile)
		hint("run the dependency manager's lock operation to create it")
	case err != nil:
		return errors.NewExitError(errors.ExitConfigError,
			fmt.Errorf("failed to parse %s: %w", cfg.Lockfile, err))
	default:
		res.pass("%s parses", cfg.Lockfile)
		checkLockfile(cfg, pf, lf, &res)
	}

	checkLineEndings(pipfilePath, lockPath, cfg)

	fmt.Printf("\n%d passed, %d failed\n", res.passed, res.failed)
	if res.failed > 0 {
		return errors.NewExitErrorf(errors.ExitFailure, "%d check(s) failed", res.failed)
	}
	return nil
}

// checkLockfile runs the checks that need a parsed lock file.
func checkLockfile(cfg *config.Config, pf *pipfile.Pipfile, lf *lockfile.Lockfile, res *checkResult) {
	verboseLockSummary(lf)

	hash, err := pf.Hash()
	if err != nil {
		res.fail("failed to hash %s: %v", cfg.Pipfile, err)
	} else if lf.IsStaleFor(hash) {
		res.fail("%s is out of date with %s", cfg.Lockfile, cfg.Pipfile)
		hint("re-run the lock operation after editing the manifest")
	} else {
		res.pass("%s matches %s", cfg.Lockfile, cfg.Pipfile)
	}

	if conflicts := sectionConflicts(lf); len(conflicts) > 0 {
		res.fail("default/develop version conflicts: %s", strings.Join(conflicts, ", "))
	} else {
		res.pass("default and develop sections agree")
	}
}

// sectionConflicts finds packages pinned to different versions in the
// default and develop sections.
//
// Returns:
//   - []string: Conflict descriptions, ordered by package name
func sectionConflicts(lf *lockfile.Lockfile) []string {
	def := lf.Default()
	dev := lf.Develop()

	var conflicts []string
	for _, name := range lf.SectionNames("develop") {
		devPkg := dev[name]
		defPkg, ok := def[name]
		if !ok {
			continue
		}
		if !versionsAgree(defPkg.Version, devPkg.Version) {
			conflicts = append(conflicts,
				fmt.Sprintf("%s (%s vs %s)", name, defPkg.Version, devPkg.Version))
		}
	}
	return conflicts
}

// versionsAgree compares two locked version pins. Semver-comparable
// versions go through semver.Compare so formatting differences like
// trailing zeros do not count as conflicts; anything else falls back to
// string equality.
func versionsAgree(a, b string) bool {
	va := "v" + strings.TrimPrefix(a, "==")
	vb := "v" + strings.TrimPrefix(b, "==")
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb) == 0
	}
	return a == b
}

// checkLineEndings warns when the manifest and lock file disagree on
// line-ending convention. Not counted as a check failure: the files are
// still valid, but in-place rewrites will preserve the inconsistency.
func checkLineEndings(pipfilePath, lockPath string, cfg *config.Config) {
	pipNL := fileNewline(pipfilePath)
	lockNL := fileNewline(lockPath)
	if pipNL == "" || lockNL == "" {
		return
	}
	if pipNL != lockNL {
		warnings.Warnf("%s uses %s line endings but %s uses %s",
			cfg.Pipfile, newlineName(pipNL), cfg.Lockfile, newlineName(lockNL))
	}
}

// fileNewline returns the line-ending convention of a file, or "" when
// the file is missing or has no line endings.
func fileNewline(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return textfile.DetectNewline(data)
}

func newlineName(nl string) string {
	if nl == textfile.CRLF {
		return "CRLF"
	}
	return "LF"
}

// hint prints an indented suggestion below a failed check.
func hint(msg string) {
	fmt.Printf("  %s %s\n", constants.IconLightbulb, msg)
}

// verboseLockSummary logs the locked package counts.
func verboseLockSummary(lf *lockfile.Lockfile) {
	verbose.Infof("Locked packages: %d default, %d develop",
		len(lf.Default()), len(lf.Develop()))
}
