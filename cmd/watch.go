package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/canon/internal/scenario"
	"github.com/conneroisu/canon/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Re-run scenarios when markup or scenario files change",
	Long: `Watch the configured paths and re-run every scenario whenever a file
matching watch.patterns changes. Paths matching watch.ignore are skipped.

Examples:
  canon watch                    # Watch the current directory
  canon watch -v                 # Print emitted events as well
  canon watch --pattern 'e2e/**/*.scenario.yaml'`,
	RunE: runWatch,
}

var (
	watchVerbose bool
	watchPattern string
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Verbose output")
	watchCmd.Flags().StringVar(&watchPattern, "pattern", scenario.DefaultPattern, "Glob used to discover scenarios")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	base, err := os.Getwd()
	if err != nil {
		return err
	}
	fileWatcher.AddFilter(watcher.GlobFilter(base, cfg.Watch.Patterns...))
	fileWatcher.AddFilter(watcher.IgnoreFilter(base, cfg.Watch.Ignore...))
	fileWatcher.SkipDirs(cfg.Watch.Ignore...)

	runner := scenario.NewRunner(buildBehaviors(cfg, nil, logger), logger, nil)
	out := cmd.OutOrStdout()
	rerun := func(ctx context.Context) {
		paths, err := scenario.Discover(os.DirFS(base), watchPattern)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to discover scenarios: %v\n", err)
			return
		}
		for i := range paths {
			paths[i] = filepath.Join(base, paths[i])
		}
		results, err := runScenarios(ctx, runner, paths)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Scenario error: %v\n", err)
		}
		printResults(out, results, watchVerbose)
	}

	ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		if watchVerbose {
			fmt.Fprintln(out, "File changes detected:")
			for _, event := range events {
				fmt.Fprintf(out, "   %s: %s\n", event.Type, event.Path)
			}
		} else {
			fmt.Fprintf(out, "%d file(s) changed\n", len(events))
		}
		rerun(ctx)
		return nil
	})

	for _, path := range cfg.Watch.Paths {
		if err := fileWatcher.AddRecursive(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	rerun(ctx)

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	logger.Info(ctx, "watching for changes", "paths", cfg.Watch.Paths, "patterns", cfg.Watch.Patterns)
	fmt.Fprintln(out, "Watching for changes. Press Ctrl+C to stop.")

	<-ctx.Done()
	fmt.Fprintln(out, "Stopping watcher...")
	return nil
}
