package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"proofmark/cmd/proofmark/ui"
	"proofmark/internal/logging"
	"proofmark/internal/render"
)

// viewCmd opens the interactive viewer
var viewCmd = &cobra.Command{
	Use:   "view [payload|file]",
	Short: "Browse a document's corrections interactively",
	Long: `Opens a full-screen viewer. tab/shift+tab move between corrections,
o toggles between the original and corrected text, q quits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd, args)
	if err != nil {
		return err
	}

	logging.CLIDebug("view: %d corrections", len(doc.Corrections))
	theme := render.ThemeFor(currentConfig().Render.Theme)
	p := tea.NewProgram(ui.NewViewer(doc, theme),
		tea.WithAltScreen(),
		tea.WithContext(cmdContext(cmd)),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	return nil
}
