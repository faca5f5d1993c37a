package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"proofmark/internal/correction"
	"proofmark/internal/logging"
)

// insertionMark stands in for a zero-width correction at the end of a text.
const insertionMark = "‸"

// Highlighter renders one side of a document with each corrected token
// styled by its correction type.
type Highlighter struct {
	styles Styles
	width  int
}

// NewHighlighter returns a highlighter. A positive width wraps the output.
func NewHighlighter(theme Theme, width int) *Highlighter {
	return &Highlighter{styles: NewStyles(theme), width: width}
}

// Styles returns the styles the highlighter draws with.
func (h *Highlighter) Styles() Styles { return h.styles }

// Render draws side of doc with no correction focused.
func (h *Highlighter) Render(doc correction.Document, side Side) string {
	return h.RenderFocused(doc, side, -1)
}

// RenderFocused draws side of doc, additionally marking the correction at
// index focus in doc.Corrections.
func (h *Highlighter) RenderFocused(doc correction.Document, side Side, focus int) string {
	timer := logging.StartTimer(logging.CategoryRender, "highlight")
	defer timer.Stop()

	text := side.Text(doc)
	var b strings.Builder
	styled := 0
	for _, tok := range Tokens(text) {
		c, idx, ok := Lookup(doc, side, tok.Start, tok.End)
		// Multi-line blocks get padded by lipgloss, so line breaks stay raw.
		if !ok || strings.Contains(tok.Text, "\n") {
			b.WriteString(tok.Text)
			continue
		}
		b.WriteString(h.tokenStyle(c, idx == focus).Render(tok.Text))
		styled++
	}

	// Zero-width spans at the very end have no token to attach to.
	n := utf8.RuneCountInString(text)
	for i, c := range doc.Corrections {
		if start, end := Span(c, side); start == n && end == n {
			b.WriteString(h.tokenStyle(c, i == focus).Render(insertionMark))
			styled++
		}
	}

	logging.RenderDebug("rendered %s side: %d tokens highlighted", side, styled)

	out := b.String()
	if h.width > 0 {
		out = lipgloss.NewStyle().Width(h.width).Render(out)
	}
	return out
}

func (h *Highlighter) tokenStyle(c correction.Correction, focused bool) lipgloss.Style {
	st := h.styles.Highlight(c.Type)
	if focused {
		st = st.Inherit(h.styles.Focused)
	}
	return st
}

// Legend lists every correction as "n. Type  original → corrected", with
// the reason appended when present.
func (h *Highlighter) Legend(doc correction.Document) string {
	lines := make([]string, 0, len(doc.Corrections))
	for i, c := range doc.Corrections {
		line := fmt.Sprintf("%2d. %s  %s → %s",
			i+1,
			h.styles.TypeBadge(c.Type).Render(c.Type.Label()),
			h.side(c.Original, h.styles.Original),
			h.side(c.Corrected, h.styles.Fixed),
		)
		if c.Reason != "" {
			line += h.styles.Muted.Render("  · " + c.Reason)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Detail renders the full metadata of one correction in a bordered pane.
func (h *Highlighter) Detail(c correction.Correction) string {
	rows := []string{
		h.styles.TypeBadge(c.Type).Render(c.Type.Label()),
		h.styles.Muted.Render("Original   ") + h.side(c.Original, h.styles.Original),
		h.styles.Muted.Render("Corrected  ") + h.side(c.Corrected, h.styles.Fixed),
	}
	if c.Reason != "" {
		rows = append(rows, h.styles.Muted.Render("Reason     ")+c.Reason)
	}
	return h.styles.Pane.Render(strings.Join(rows, "\n"))
}

func (h *Highlighter) side(text string, st lipgloss.Style) string {
	if text == "" {
		return h.styles.Muted.Render("∅")
	}
	return st.Render(text)
}
