// Package cmd provides the command-line interface for canon.
//
// Configuration System:
//
//	Configuration is read from several sources with this precedence:
//	1. Command-line flags (--config, --port, --log-level, ...) - highest priority
//	2. CANON_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (CANON_SERVER_PORT, CANON_DATATABLE_PAGE_SIZE, ...)
//	4. Configuration file (.canon.yml) - lowest priority
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/config"
	"github.com/conneroisu/canon/internal/logging"
	"github.com/conneroisu/canon/internal/registry"
	"github.com/conneroisu/canon/internal/storage"
	"github.com/conneroisu/canon/internal/widgets"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "canon",
	Short: "Attach interactive behaviors to server-rendered markup",
	Long: `canon turns server-rendered markup tagged with data-attributes into
stateful, keyboard-accessible widgets: calendars, carousels, data tables,
sortable lists, trees, tables of contents, command pickers and sidebars.

Quick Start:
  canon list                        List behavior markers
  canon attach page.html            Attach behaviors and print the result
  canon simulate demo.scenario.yaml Replay a scripted interaction
  canon watch                       Re-run scenarios on file changes
  canon serve                       Run the live preview server
  canon toc README.md               Render markdown with its table of contents`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .canon.yml, can also use CANON_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig points viper at the config file.
//
// Priority (highest to lowest):
//  1. --config flag
//  2. CANON_CONFIG_FILE environment variable
//  3. .canon.yml in the current directory
//
// A missing file is not an error; defaults apply.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("CANON_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".canon")
	}

	config.SetupEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads the configuration and builds the logger it describes.
func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, newLogger(cfg), nil
}

func newLogger(cfg *config.Config) logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	}).WithComponent("cli")
}

// buildBehaviors returns the built-in behaviors the configuration enables.
// A nil store keeps sidebar state in memory.
func buildBehaviors(cfg *config.Config, store storage.Store, logger logging.Logger) []behavior.Behavior {
	if store == nil {
		store = storage.NewMemoryStore()
	}
	all := widgets.Builtin(widgets.Options{
		PageSize:         cfg.DataTable.PageSize,
		CarouselInterval: cfg.Carousel.Interval,
		TOCRootMargin:    cfg.TOC.RootMargin,
		CalendarColumns:  cfg.Calendar.Columns,
		CalendarPageRows: cfg.Calendar.PageRows,
		Store:            store,
		Logger:           logger,
	})
	return registry.Filter(all, cfg.Behaviors.Enabled, cfg.Behaviors.Disabled)
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
