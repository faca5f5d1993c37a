package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"proofmark/internal/correction"
)

// TypeCount is the number of corrections of one type.
type TypeCount struct {
	Type  correction.Type `json:"type"`
	Count int             `json:"count"`
}

// Summary counts the corrections of a document by type.
type Summary struct {
	Total  int         `json:"total"`
	ByType []TypeCount `json:"byType"`
}

// Summarize counts doc's corrections per type, in order of first appearance.
func Summarize(doc correction.Document) Summary {
	s := Summary{Total: len(doc.Corrections), ByType: []TypeCount{}}
	index := make(map[correction.Type]int)
	for _, c := range doc.Corrections {
		i, ok := index[c.Type]
		if !ok {
			i = len(s.ByType)
			index[c.Type] = i
			s.ByType = append(s.ByType, TypeCount{Type: c.Type})
		}
		s.ByType[i].Count++
	}
	return s
}

// Count returns the number of corrections of type t.
func (s Summary) Count(t correction.Type) int {
	for _, tc := range s.ByType {
		if tc.Type == t {
			return tc.Count
		}
	}
	return 0
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"`", "\\`",
	"|", `\|`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	"#", `\#`,
)

func escapeMarkdown(s string) string { return mdEscaper.Replace(s) }

// Markdown formats the summary and the full correction list of doc.
func (s Summary) Markdown(doc correction.Document) string {
	var b strings.Builder

	b.WriteString("# Correction Summary\n\n")
	fmt.Fprintf(&b, "**%d Total**\n\n", s.Total)

	if len(s.ByType) > 0 {
		b.WriteString("| Type | Count |\n|---|---:|\n")
		for _, tc := range s.ByType {
			fmt.Fprintf(&b, "| %s | %d |\n", escapeMarkdown(string(tc.Type)), tc.Count)
		}
		b.WriteString("\n")
	}

	if len(doc.Corrections) == 0 {
		b.WriteString("_No corrections._\n")
		return b.String()
	}

	b.WriteString("## All Corrections\n\n")
	for i, c := range doc.Corrections {
		original := "∅"
		if c.Original != "" {
			original = "~~" + escapeMarkdown(c.Original) + "~~"
		}
		corrected := "∅"
		if c.Corrected != "" {
			corrected = "**" + escapeMarkdown(c.Corrected) + "**"
		}
		fmt.Fprintf(&b, "%d. %s → %s\n", i+1, original, corrected)
		if c.Reason != "" {
			fmt.Fprintf(&b, "   _%s_\n", escapeMarkdown(c.Reason))
		}
	}
	return b.String()
}

// RenderMarkdown renders markdown for the terminal. style is a glamour
// standard style name ("light", "dark", "notty", ...); "auto" or empty
// detects it from the terminal.
func RenderMarkdown(md, style string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStylePath(style)
	}

	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
