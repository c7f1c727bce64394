package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/canon/internal/version"
)

var (
	versionFlags    *StandardFlags
	versionShort    bool
	versionDetailed bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for canon: version, git commit, build
time, Go version and target platform.

Examples:
  canon version              # canon v0.3.0 (0123456)
  canon version --detailed   # One field per line
  canon version -f json      # Output as JSON`,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionFlags = AddStandardFlags(versionCmd, "output")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
	versionCmd.Flags().BoolVar(&versionDetailed, "detailed", false, "Show detailed version information")
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	if err := versionFlags.ValidateFlags(); err != nil {
		return err
	}

	info := version.GetBuildInfo()
	if ok, err := versionFlags.Encode(cmd.OutOrStdout(), info); ok || err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case versionShort:
		fmt.Fprintln(out, info.Short())
	case versionDetailed:
		fmt.Fprintln(out, info.Detailed())
	default:
		line := "canon " + info.Short()
		if info.Dirty {
			line += " (dirty)"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
