package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"proofmark/internal/correction"
	"proofmark/internal/logging"
	"proofmark/internal/render"
)

var (
	renderSide   string
	renderLegend bool
	summaryRaw   bool
)

// renderCmd highlights a document in the terminal
var renderCmd = &cobra.Command{
	Use:   "render [payload|file]",
	Short: "Print a document with corrections highlighted",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRender,
}

// summaryCmd prints per-type counts and the correction list
var summaryCmd = &cobra.Command{
	Use:   "summary [payload|file]",
	Short: "Summarize the corrections in a document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSummary,
}

// verifyCmd checks a document for internal consistency
var verifyCmd = &cobra.Command{
	Use:   "verify [payload|file]",
	Short: "Check that a document's corrections are consistent with its texts",
	Long: `Checks ordering, overlap and bounds of the corrections, that each
original text matches the document at its position, and that applying the
corrections reproduces the corrected text. Exits non-zero when issues are found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	renderCmd.Flags().StringVar(&renderSide, "side", "both", "Side to print: original, corrected or both")
	renderCmd.Flags().BoolVar(&renderLegend, "legend", true, "Print the correction legend")
	summaryCmd.Flags().BoolVar(&summaryRaw, "raw", false, "Print the markdown without terminal rendering")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(verifyCmd)
}

func newHighlighter() *render.Highlighter {
	c := currentConfig()
	return render.NewHighlighter(render.ThemeFor(c.Render.Theme), c.Render.Width)
}

func runRender(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd, args)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), doc)
	}

	var sides []render.Side
	switch strings.ToLower(renderSide) {
	case "original":
		sides = []render.Side{render.SideOriginal}
	case "corrected":
		sides = []render.Side{render.SideCorrected}
	case "both", "":
		sides = []render.Side{render.SideOriginal, render.SideCorrected}
	default:
		return fmt.Errorf("invalid --side %q (valid: original, corrected, both)", renderSide)
	}

	logging.CLIDebug("render: %d sides, %d corrections", len(sides), len(doc.Corrections))
	h := newHighlighter()
	out := cmd.OutOrStdout()
	for i, side := range sides {
		if len(sides) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, h.Styles().Badge.Render(strings.ToUpper(side.String())))
		}
		fmt.Fprintln(out, h.Render(doc, side))
	}

	if renderLegend && currentConfig().Render.ShowLegend && len(doc.Corrections) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, h.Legend(doc))
	}
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd, args)
	if err != nil {
		return err
	}
	s := render.Summarize(doc)
	logging.CLIDebug("summary: %d corrections in %d types", s.Total, len(s.ByType))
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), s)
	}

	md := s.Markdown(doc)
	if summaryRaw {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}

	c := currentConfig()
	out, err := render.RenderMarkdown(md, c.Render.Theme, c.Render.Width)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd, args)
	if err != nil {
		return err
	}
	report := correction.Verify(doc)
	logging.CLIDebug("verify: %d corrections, %d issues", len(doc.Corrections), len(report.Issues))

	out := cmd.OutOrStdout()
	if jsonOutput {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else if report.OK() {
		fmt.Fprintf(out, "ok: %d corrections verified\n", len(doc.Corrections))
	} else {
		for _, issue := range report.Issues {
			fmt.Fprintf(out, "%s: %s\n", issue.Kind, issue.Message)
		}
		if report.Diff != nil && !report.Diff.Identical() {
			fmt.Fprintf(out, "\n%s vs %s:\n%s\n", report.Diff.ExpectedLabel, report.Diff.ActualLabel, report.Diff.Inline())
		}
	}

	if !report.OK() {
		return fmt.Errorf("%d issues found", len(report.Issues))
	}
	return nil
}
