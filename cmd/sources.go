package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pipdrive/pipdrive/pkg/config"
	"github.com/pipdrive/pipdrive/pkg/errors"
	"github.com/pipdrive/pipdrive/pkg/pipfile"
	"github.com/pipdrive/pipdrive/pkg/utils"
	"github.com/pipdrive/pipdrive/pkg/verbose"
)

var sourcesRawFlag bool

var sourcesCmd = &cobra.Command{
	Use:   "sources [project-dir]",
	Short: "List the package sources declared in a Pipfile",
	Long: `List the package sources declared in a project's Pipfile.

URL placeholders like ${PIP_INDEX} are resolved against the current
environment for display. Use --raw to show the URLs exactly as written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesRawFlag, "raw", false, "Show URLs without environment expansion")
}

// runSources executes the sources command.
//
// It loads the project's Pipfile and prints a table of declared sources
// in declaration order.
//
// Parameters:
//   - cmd: Cobra command instance
//   - args: Optional project directory
//
// Returns:
//   - error: Config error (exit 3) or load failure (exit 2)
func runSources(cmd *cobra.Command, args []string) error {
	dir := projectDir(args)

	cfg, err := config.LoadConfig(configFlag, dir)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.WorkingDir, cfg.Pipfile)
	verbose.Infof("Reading manifest: %s", path)

	pf, err := pipfile.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewExitErrorf(errors.ExitFailure, "no %s found in %s", cfg.Pipfile, dir)
		}
		return errors.NewExitError(errors.ExitConfigError, err)
	}

	var sources []pipfile.Source
	if sourcesRawFlag {
		sources = pf.RawSources()
	} else {
		sources = pf.Sources(nil)
	}

	if len(sources) == 0 {
		fmt.Println("No sources declared")
		return nil
	}

	printSourcesTable(sources)
	return nil
}

// printSourcesTable renders sources as an aligned table.
func printSourcesTable(sources []pipfile.Source) {
	header := []string{"NAME", "URL", "VERIFY_SSL"}
	rows := make([][]string, 0, len(sources))
	for _, s := range sources {
		rows = append(rows, []string{s.Name, s.URL, fmt.Sprintf("%t", s.VerifySSL)})
	}

	widths := utils.ColumnWidths(header, rows)

	printRow := func(cells []string) {
		for i, cell := range cells {
			if i == len(cells)-1 {
				fmt.Println(cell)
				return
			}
			fmt.Print(utils.ToWidth(cell, widths[i]), "  ")
		}
	}

	printRow(header)
	for _, row := range rows {
		printRow(row)
	}
}
