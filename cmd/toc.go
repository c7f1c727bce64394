package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/canon/internal/markup"
	"github.com/conneroisu/canon/internal/widgets/toc"
)

var tocCmd = &cobra.Command{
	Use:   "toc <file.md|->",
	Short: "Render markdown with a table of contents",
	Long: `Render a markdown file with goldmark and print an article holding the
rendered content next to a table of contents whose entries target the
heading ids. The markup is ready for the data-toc behavior.

Examples:
  canon toc README.md                 # Article with a flat TOC
  canon toc README.md --mode nested   # Collapsible nested TOC
  canon toc README.md --headings -f json`,
	Args: cobra.ExactArgs(1),
	RunE: runTOC,
}

var (
	tocFlags    *StandardFlags
	tocMode     string
	tocHeadings bool
)

func init() {
	rootCmd.AddCommand(tocCmd)

	tocFlags = AddStandardFlags(tocCmd, "output")
	tocCmd.Flags().StringVarP(&tocMode, "mode", "m", toc.ModeSimple, "TOC mode (simple, expand, nested)")
	tocCmd.Flags().BoolVar(&tocHeadings, "headings", false, "Print the extracted headings instead of markup")

	AddFlagValidation(tocCmd, "mode", func(mode string) error {
		switch mode {
		case toc.ModeSimple, toc.ModeExpand, toc.ModeNested:
			return nil
		}
		return fmt.Errorf("invalid mode %s, must be one of: simple, expand, nested", mode)
	})
}

func runTOC(cmd *cobra.Command, args []string) error {
	if err := tocFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	src, err := readInput(cmd, args[0], ".md", ".markdown")
	if err != nil {
		return err
	}

	doc, err := markup.RenderMarkdown(src)
	if err != nil {
		return err
	}

	if tocHeadings {
		if ok, err := tocFlags.Encode(cmd.OutOrStdout(), doc.Headings); ok || err != nil {
			return err
		}
		for _, h := range doc.Headings {
			fmt.Fprintf(cmd.OutOrStdout(), "%*s%s #%s\n", (h.Level-1)*2, "", h.Text, h.ID)
		}
		return nil
	}

	html, err := markup.Render(commandContext(cmd), markup.Article(doc, tocMode))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
	return err
}
