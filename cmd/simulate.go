package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conneroisu/canon/internal/scenario"
)

var simulateCmd = &cobra.Command{
	Use:     "simulate [scenario.yaml...]",
	Aliases: []string{"sim"},
	Short:   "Replay scripted interactions against attached markup",
	Long: `Run YAML scenarios: each holds markup, a list of steps (click, keydown,
input, dragstart, drop, intersect, scroll, advance, append, remove, ...) and
expectations checked between steps. Emitted canon:* events are recorded.

Without arguments, every file matching --pattern below the current
directory is run. The command fails when any expectation fails.

Examples:
  canon simulate carousel.scenario.yaml
  canon simulate -v                        # Also print emitted events
  canon simulate -f json > results.json`,
	RunE: runSimulate,
}

var (
	simulateFlags   *StandardFlags
	simulatePattern string
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateFlags = AddStandardFlags(simulateCmd, "output")
	simulateCmd.Flags().StringVar(&simulatePattern, "pattern", scenario.DefaultPattern, "Glob used to discover scenarios")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if err := simulateFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths, err = scenario.Discover(os.DirFS("."), simulatePattern)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
			return nil
		}
	}

	runner := scenario.NewRunner(buildBehaviors(cfg, nil, logger), logger, nil)
	results, err := runScenarios(commandContext(cmd), runner, paths)
	if err != nil {
		return err
	}

	if ok, err := simulateFlags.Encode(cmd.OutOrStdout(), results); ok || err != nil {
		if err != nil {
			return err
		}
	} else if !simulateFlags.Quiet {
		printResults(cmd.OutOrStdout(), results, simulateFlags.Verbose)
	}

	if failed := countFailed(results); failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
	}
	return nil
}

// runScenarios loads and runs every path in order.
func runScenarios(ctx context.Context, runner *scenario.Runner, paths []string) ([]*scenario.Result, error) {
	results := make([]*scenario.Result, 0, len(paths))
	for _, path := range paths {
		sc, err := scenario.Load(filepath.Clean(path))
		if err != nil {
			return results, err
		}
		res, err := runner.Run(ctx, sc)
		if err != nil {
			return results, fmt.Errorf("%s: %w", path, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func countFailed(results []*scenario.Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed() {
			n++
		}
	}
	return n
}

func printResults(w io.Writer, results []*scenario.Result, verbose bool) {
	for _, r := range results {
		status := "PASS"
		if !r.Passed() {
			status = "FAIL"
		}
		fmt.Fprintf(w, "%s %s (roots %d, events %d)\n", status, r.Name, r.Attached, len(r.Events))
		if verbose {
			for _, ev := range r.Events {
				fmt.Fprintf(w, "    %s #%s %v\n", ev.Type, ev.Target, ev.Detail)
			}
		}
		for _, f := range r.Failures {
			fmt.Fprintf(w, "    %s\n", f)
		}
	}
	fmt.Fprintf(w, "%d scenarios, %d failed\n", len(results), countFailed(results))
}
