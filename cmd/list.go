package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/config"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List behavior markers",
	Long: `List every built-in behavior marker and whether the current
configuration enables it.

Examples:
  canon list              # Table of markers
  canon list -f json      # Output as JSON
  canon list --enabled    # Only markers that will attach`,
	RunE: runList,
}

var (
	listFlags       *StandardFlags
	listEnabledOnly bool
)

// MarkerInfo describes one marker in list output.
type MarkerInfo struct {
	Marker   string `json:"marker" yaml:"marker"`
	Selector string `json:"selector" yaml:"selector"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
}

func init() {
	rootCmd.AddCommand(listCmd)

	listFlags = AddStandardFlags(listCmd, "output")
	listCmd.Flags().BoolVarP(&listEnabledOnly, "enabled", "e", false, "Only list enabled markers")

	AddFlagValidation(listCmd, "format", func(format string) error {
		return ValidateFormat(format, []string{"text", "json", "yaml"})
	})
}

func runList(cmd *cobra.Command, args []string) error {
	if err := listFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	infos := markerInfos(cfg)
	if listEnabledOnly {
		kept := infos[:0]
		for _, info := range infos {
			if info.Enabled {
				kept = append(kept, info)
			}
		}
		infos = kept
	}
	logger.Debug(commandContext(cmd), "listing markers", "count", len(infos))

	if ok, err := listFlags.Encode(cmd.OutOrStdout(), infos); ok || err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MARKER\tSELECTOR\tENABLED")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%t\n", info.Marker, info.Selector, info.Enabled)
	}
	return w.Flush()
}

func markerInfos(cfg *config.Config) []MarkerInfo {
	enabled := make(map[behavior.Marker]bool)
	for _, b := range buildBehaviors(cfg, nil, nil) {
		enabled[b.Marker()] = true
	}

	infos := make([]MarkerInfo, 0, len(behavior.BuiltinMarkers))
	for _, m := range behavior.BuiltinMarkers {
		infos = append(infos, MarkerInfo{
			Marker:   string(m),
			Selector: m.Selector(),
			Enabled:  enabled[m],
		})
	}
	return infos
}
