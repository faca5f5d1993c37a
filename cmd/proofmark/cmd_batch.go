package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"proofmark/internal/batch"
)

var (
	batchWorkers int
	batchVerify  bool
)

// batchCmd decodes one payload per line
var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Decode many payloads, one per line",
	Long: `Reads payloads one per line (share links, data values or inline JSON)
and decodes them concurrently. Blank lines and lines starting with # are
skipped. Exits non-zero when any line fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Concurrent decoders (default from config)")
	batchCmd.Flags().BoolVar(&batchVerify, "verify", false, "Check each decoded document for consistency")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	inputs, err := batch.ReadInputs(in)
	if err != nil {
		return err
	}

	c := currentConfig()
	workers := batchWorkers
	if workers <= 0 {
		workers = c.Batch.Workers
	}

	ctx, cancel := context.WithTimeout(cmdContext(cmd), c.GetBatchTimeout())
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := batch.NewRunner(newCodec(), workers).WithVerify(batchVerify)
	report, err := runner.Run(ctx, inputs)
	if err != nil {
		return fmt.Errorf("batch interrupted after %d of %d lines: %w", countDone(report), len(inputs), err)
	}
	cliLogger().Debug("batch finished",
		zap.String("run", report.RunID),
		zap.Int("lines", len(report.Results)),
		zap.Int("failed", report.Failed),
		zap.Duration("elapsed", report.Elapsed))

	out := cmd.OutOrStdout()
	if jsonOutput {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		for _, r := range report.Results {
			switch {
			case !r.OK():
				fmt.Fprintf(out, "%d: error: %s\n", r.Line, r.Error)
			case len(r.Issues) > 0:
				fmt.Fprintf(out, "%d: %d corrections, %d issues\n", r.Line, len(r.Document.Corrections), len(r.Issues))
			default:
				fmt.Fprintf(out, "%d: %d corrections\n", r.Line, len(r.Document.Corrections))
			}
		}
		fmt.Fprintf(out, "\nrun %s: %d lines, %d failed in %s\n",
			report.RunID, len(report.Results), report.Failed, report.Elapsed.Round(time.Millisecond))
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d lines failed", report.Failed, len(report.Results))
	}
	return nil
}

func countDone(report batch.Report) int {
	n := 0
	for _, r := range report.Results {
		if r.Line > 0 {
			n++
		}
	}
	return n
}
