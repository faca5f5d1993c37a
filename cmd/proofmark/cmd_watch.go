package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"proofmark/internal/render"
	"proofmark/internal/watch"
)

// watchCmd re-renders a payload file whenever it changes
var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-render a payload file on every save",
	Long: `Watches a file holding inline text, inline JSON or a share link and
prints the corrected text with its legend each time the file settles.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	c := currentConfig()
	h := newHighlighter()
	out := cmd.OutOrStdout()

	var mu sync.Mutex
	handler := func(u watch.Update) {
		mu.Lock()
		defer mu.Unlock()

		if u.Err != nil {
			fmt.Fprintf(out, "%s: %v\n", u.At.Format("15:04:05"), u.Err)
			return
		}
		if jsonOutput {
			if err := writeJSON(out, u.Document); err != nil {
				cliLogger().Warn("failed to write update", zap.Error(err))
			}
			return
		}
		fmt.Fprintf(out, "── %s  %d corrections ──\n", u.At.Format("15:04:05"), len(u.Document.Corrections))
		fmt.Fprintln(out, h.Render(u.Document, render.SideCorrected))
		if c.Render.ShowLegend && len(u.Document.Corrections) > 0 {
			fmt.Fprintln(out, h.Legend(u.Document))
		}
		fmt.Fprintln(out)
	}

	w, err := watch.New(args[0], newCodec(), handler)
	if err != nil {
		return err
	}
	w.SetDebounce(c.GetWatchDebounce())

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return err
	}
	cliLogger().Debug("watching", zap.String("path", w.Path()))

	select {
	case <-ctx.Done():
	case <-w.Done():
	}
	w.Stop()
	return nil
}
