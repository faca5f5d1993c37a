package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"proofmark/internal/correction"
	"proofmark/internal/logging"
)

var parseSegments bool

// parseCmd turns inline text into the position-indexed document
var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse inline marker text into a correction document",
	Long: `Reads inline text (from a file or stdin) and writes the position-indexed
document as JSON. Malformed markers are kept as literal text.

Example:
  echo '{{helo⋮Hello|spelling}} world' | proofmark parse`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

// formatCmd is the inverse of parse
var formatCmd = &cobra.Command{
	Use:   "format [file]",
	Short: "Write a correction document back as inline marker text",
	Long: `Reads a document as JSON, either {"original", "corrected", "corrections"}
or {"segments": [...]}, and writes the equivalent inline text. Missing
correctedPosition values are derived from the preceding corrections.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFormat,
}

func init() {
	parseCmd.Flags().BoolVar(&parseSegments, "segments", false, "Write the flat segment list instead of the document")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(formatCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}

	p := correction.NewParser(currentConfig().Parser.Separator)
	timer := logging.StartTimer(logging.CategoryParse, "parse")
	defer timer.Stop()

	if parseSegments {
		return writeJSON(cmd.OutOrStdout(), p.Segments(text))
	}

	doc := p.Parse(text)
	cliLogger().Debug("parsed payload", zap.Int("corrections", len(doc.Corrections)))
	return writeJSON(cmd.OutOrStdout(), doc)
}

func runFormat(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	var src correction.Source
	if err := json.Unmarshal(data, &src); err != nil {
		return fmt.Errorf("input is not a correction document: %w", err)
	}
	doc := correction.Normalize(src)
	logging.CLIDebug("format: %d corrections", len(doc.Corrections))

	p := correction.NewParser(currentConfig().Parser.Separator)
	text, err := p.Format(doc)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
