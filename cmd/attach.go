package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/canon/internal/accessibility"
	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/registry"
)

var attachCmd = &cobra.Command{
	Use:   "attach <file.html|->",
	Short: "Attach behaviors to markup and print the result",
	Long: `Parse markup, attach every enabled behavior, and print the resulting
markup: attachment flags, generated indicator dots, tabindex and pagination
state as the widgets left them.

Examples:
  canon attach page.html                  # Print attached markup
  canon attach page.html --advance 10s    # Let timers run for 10s first
  canon attach page.html --audit -o /dev/null  # Check ARIA and keyboard wiring
  cat page.html | canon attach - -o out.html`,
	Args: cobra.ExactArgs(1),
	RunE: runAttach,
}

var (
	attachOutput  string
	attachAdvance time.Duration
	attachAudit   bool
)

func init() {
	rootCmd.AddCommand(attachCmd)

	attachCmd.Flags().StringVarP(&attachOutput, "output", "o", "", "Write markup to a file instead of stdout")
	attachCmd.Flags().DurationVar(&attachAdvance, "advance", 0, "Advance the virtual clock before printing")
	attachCmd.Flags().BoolVar(&attachAudit, "audit", false, "Audit the attached markup and fail on accessibility errors")
}

func runAttach(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	src, err := readInput(cmd, args[0], ".html", ".htm")
	if err != nil {
		return err
	}

	doc, err := dom.ParseString(string(src))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}

	reg := registry.New(logger, nil)
	for _, b := range buildBehaviors(cfg, nil, logger) {
		if err := reg.Register(b); err != nil {
			return err
		}
	}
	ctx := commandContext(cmd)
	if err := reg.Start(ctx, doc); err != nil {
		logger.Warn(ctx, err, "some behaviors failed to attach", "file", args[0])
	}
	doc.Loop().Flush()
	if attachAdvance > 0 {
		doc.Loop().Advance(attachAdvance)
	}

	logger.Info(ctx, "behaviors attached", "file", args[0], "roots", reg.ActiveRoots())

	out := doc.String()
	if attachOutput == "" {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else if err := os.WriteFile(attachOutput, []byte(out+"\n"), 0o644); err != nil {
		return err
	}

	if !attachAudit {
		return nil
	}
	report := accessibility.NewEngine(logger).Audit(ctx, doc)
	printReport(cmd.ErrOrStderr(), report)
	if !report.Passed() {
		return fmt.Errorf("accessibility audit found %d errors", report.Summary.Errors)
	}
	return nil
}

func printReport(w io.Writer, report *accessibility.Report) {
	for _, v := range report.Violations {
		fmt.Fprintf(w, "%-7s %-24s %s: %s (WCAG %s)\n",
			strings.ToUpper(string(v.Severity)), v.Rule, v.Selector, v.Message, v.Criteria)
	}
	s := report.Summary
	fmt.Fprintf(w, "%d/%d rules passed, %d errors, %d warnings\n",
		s.PassedRules, s.TotalRules, s.Errors, s.Warnings)
}
