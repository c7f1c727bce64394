package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/canon/internal/scaffolding"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create a starter project with pages and scenarios",
	Long: `Create a .canon.yml, one page per widget under pages/, and a scenario
under scenarios/ exercising each page. The scenarios pass as generated and
are picked up by 'canon simulate' and 'canon watch'.

Examples:
  canon init                           # Every widget in the current directory
  canon init site --widgets tree,command
  canon init --force                   # Overwrite existing files`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initWidgets []string
	initForce   bool
	initName    string
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringSliceVarP(&initWidgets, "widgets", "w", nil,
		"Widgets to generate: "+strings.Join(scaffolding.NewGenerator(nil).Names(), ", "))
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
	initCmd.Flags().StringVar(&initName, "name", "", "Project name written to .canon.yml (default: directory name)")
}

func runInit(cmd *cobra.Command, args []string) error {
	_, logger, err := loadConfig()
	if err != nil {
		return err
	}

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	written, err := scaffolding.NewGenerator(logger).Generate(commandContext(cmd), scaffolding.Options{
		Dir:         dir,
		ProjectName: initName,
		Widgets:     initWidgets,
		Force:       initForce,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, path := range written {
		fmt.Fprintf(out, "created %s\n", path)
	}
	fmt.Fprintf(out, "\nRun 'canon simulate' in %s to play the scenarios.\n", dir)
	return nil
}
