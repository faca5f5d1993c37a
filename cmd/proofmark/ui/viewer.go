// Package ui provides the interactive correction viewer for proofmark.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"proofmark/internal/correction"
	"proofmark/internal/render"
)

// KeyMap defines the viewer key bindings.
type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Toggle key.Binding
	Clear  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "n"), key.WithHelp("tab", "next correction")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "p"), key.WithHelp("shift+tab", "previous")),
		Toggle: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "original/corrected")),
		Clear:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear focus")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Toggle, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev, k.Clear}, {k.Toggle, k.Help, k.Quit}}
}

// Viewer shows one side of a document with the corrections highlighted.
// Tab cycles through corrections and shows the focused one in a detail pane.
type Viewer struct {
	doc      correction.Document
	hl       *render.Highlighter
	side     render.Side
	focus    int // index into doc.Corrections, -1 for none
	viewport viewport.Model
	help     help.Model
	keys     KeyMap
	width    int
	height   int
	header   lipgloss.Style
}

// NewViewer creates a viewer for doc, showing the corrected side first.
func NewViewer(doc correction.Document, theme render.Theme) Viewer {
	v := Viewer{
		doc:      doc,
		hl:       render.NewHighlighter(theme, 0),
		side:     render.SideCorrected,
		focus:    -1,
		viewport: viewport.New(80, 20),
		help:     help.New(),
		keys:     DefaultKeyMap(),
		width:    80,
		height:   24,
		header:   lipgloss.NewStyle().Bold(true).Foreground(theme.Foreground),
	}
	v.refresh()
	return v
}

// Init initializes the model.
func (v Viewer) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = max(msg.Width, 20)
		v.height = max(msg.Height, 8)
		v.help.Width = v.width
		v.refresh()
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Next):
			v.cycle(1)
			return v, nil
		case key.Matches(msg, v.keys.Prev):
			v.cycle(-1)
			return v, nil
		case key.Matches(msg, v.keys.Toggle):
			v.side = v.side.Toggle()
			v.refresh()
			return v, nil
		case key.Matches(msg, v.keys.Clear):
			v.focus = -1
			v.refresh()
			return v, nil
		case key.Matches(msg, v.keys.Help):
			v.help.ShowAll = !v.help.ShowAll
			v.refresh()
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

func (v *Viewer) cycle(step int) {
	n := len(v.doc.Corrections)
	if n == 0 {
		return
	}
	switch {
	case v.focus < 0 && step > 0:
		v.focus = 0
	case v.focus <= 0 && step < 0:
		v.focus = n - 1
	default:
		v.focus = (v.focus + step + n) % n
	}
	v.refresh()
}

// refresh re-renders the body and resizes the viewport to what the header,
// detail pane and help leave free.
func (v *Viewer) refresh() {
	chrome := lipgloss.Height(v.headerView()) + lipgloss.Height(v.help.View(v.keys))
	if d := v.detailView(); d != "" {
		chrome += lipgloss.Height(d)
	}

	v.viewport.Width = v.width
	v.viewport.Height = max(v.height-chrome, 1)

	body := v.hl.RenderFocused(v.doc, v.side, v.focus)
	v.viewport.SetContent(lipgloss.NewStyle().Width(v.width).Render(body))
}

func (v Viewer) headerView() string {
	pos := "-"
	if v.focus >= 0 {
		pos = fmt.Sprintf("%d", v.focus+1)
	}
	return v.header.Render(fmt.Sprintf("proofmark · %s · %s/%d corrections",
		v.side, pos, len(v.doc.Corrections)))
}

func (v Viewer) detailView() string {
	if v.focus < 0 || v.focus >= len(v.doc.Corrections) {
		return ""
	}
	return v.hl.Detail(v.doc.Corrections[v.focus])
}

// View renders the model.
func (v Viewer) View() string {
	parts := []string{v.headerView(), v.viewport.View()}
	if d := v.detailView(); d != "" {
		parts = append(parts, d)
	}
	parts = append(parts, v.help.View(v.keys))
	return strings.Join(parts, "\n")
}

// Side returns the side being shown.
func (v Viewer) Side() render.Side { return v.side }

// Focus returns the focused correction index, or -1.
func (v Viewer) Focus() int { return v.focus }
