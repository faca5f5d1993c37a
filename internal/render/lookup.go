// Package render draws correction documents for the terminal: per-type
// highlighting of either text, a legend, and a markdown summary.
package render

import (
	"unicode"
	"unicode/utf8"

	"proofmark/internal/correction"
)

// Side selects which text of a document is displayed.
type Side int

const (
	SideOriginal Side = iota
	SideCorrected
)

func (s Side) String() string {
	if s == SideCorrected {
		return "corrected"
	}
	return "original"
}

// Toggle returns the other side.
func (s Side) Toggle() Side {
	if s == SideCorrected {
		return SideOriginal
	}
	return SideCorrected
}

// Text returns the document text shown on side s.
func (s Side) Text(doc correction.Document) string {
	if s == SideCorrected {
		return doc.Corrected
	}
	return doc.Original
}

// Span returns the rune range c occupies on side.
func Span(c correction.Correction, side Side) (start, end int) {
	if side == SideCorrected {
		return c.CorrectedPosition, c.CorrectedEnd()
	}
	return c.Position, c.End()
}

// Lookup returns the correction whose span on side intersects [s, e), with
// its index in doc.Corrections. A zero-width span at p matches when
// s <= p < e. Spans of a well-formed document do not overlap, so at most one
// correction matches; the first wins otherwise.
func Lookup(doc correction.Document, side Side, s, e int) (correction.Correction, int, bool) {
	for i, c := range doc.Corrections {
		start, end := Span(c, side)
		if intersects(start, end, s, e) {
			return c, i, true
		}
	}
	return correction.Correction{}, -1, false
}

func intersects(start, end, s, e int) bool {
	if start == end {
		return s <= start && start < e
	}
	return start < e && s < end
}

// Token is a run of either whitespace or non-whitespace runes.
type Token struct {
	Text  string
	Start int
	End   int
	Space bool
}

// Tokens splits text into alternating word and whitespace runs with rune
// offsets. Concatenating the token texts yields text.
func Tokens(text string) []Token {
	var tokens []Token
	pos := 0
	for len(text) > 0 {
		r, _ := utf8.DecodeRuneInString(text)
		space := unicode.IsSpace(r)

		n, runes := 0, 0
		for n < len(text) {
			r, size := utf8.DecodeRuneInString(text[n:])
			if unicode.IsSpace(r) != space {
				break
			}
			n += size
			runes++
		}

		tokens = append(tokens, Token{Text: text[:n], Start: pos, End: pos + runes, Space: space})
		text = text[n:]
		pos += runes
	}
	return tokens
}
