package correction

import (
	"fmt"
	"strings"

	"proofmark/internal/diff"
)

// IssueKind classifies a problem found by Verify.
type IssueKind string

const (
	IssueUnsorted          IssueKind = "unsorted"
	IssueOverlap           IssueKind = "overlap"
	IssueOutOfBounds       IssueKind = "out_of_bounds"
	IssueTextMismatch      IssueKind = "text_mismatch"
	IssueCorrectedPosition IssueKind = "corrected_position"
	IssueCorrectedText     IssueKind = "corrected_text"
	IssueEmptyType         IssueKind = "empty_type"
)

// Issue is one problem with a document. Index is the correction's index in
// the document, or -1 for document-level issues.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Index   int       `json:"index"`
	Message string    `json:"message"`
}

// Report is the outcome of Verify.
type Report struct {
	Issues []Issue `json:"issues"`
	// Diff compares the document's corrected text (expected) with the text
	// its corrections produce (actual). Nil when they agree.
	Diff *diff.TextDiff `json:"-"`
}

// OK reports whether the document passed every check.
func (r Report) OK() bool { return len(r.Issues) == 0 }

// Verify checks that doc satisfies the document invariants: corrections are
// sorted and non-overlapping, each span lies inside the original text and
// matches it, corrected positions agree with the running offsets, and
// applying the corrections to the original reproduces the corrected text.
func Verify(doc Document) Report {
	report := Report{Issues: make([]Issue, 0)}
	add := func(kind IssueKind, index int, format string, args ...any) {
		report.Issues = append(report.Issues, Issue{Kind: kind, Index: index, Message: fmt.Sprintf(format, args...)})
	}

	text := doc.Original
	total := runeLen(text)
	var rebuilt strings.Builder
	cursor, cursorByte := 0, 0
	correctedCursor := 0
	prevPos := -1

	for i, c := range doc.Corrections {
		if c.Type == "" {
			add(IssueEmptyType, i, "correction %d has no type", i)
		}
		if c.Position < prevPos {
			add(IssueUnsorted, i, "correction %d at %d precedes correction at %d", i, c.Position, prevPos)
		}
		prevPos = c.Position

		end := c.End()
		if c.Position < 0 || end > total {
			add(IssueOutOfBounds, i, "span [%d,%d) outside original text of length %d", c.Position, end, total)
			continue
		}
		if c.Position < cursor {
			add(IssueOverlap, i, "span [%d,%d) overlaps the previous correction ending at %d", c.Position, end, cursor)
			continue
		}
		pb := cursorByte + byteOffset(text[cursorByte:], c.Position-cursor)
		eb := pb + byteOffset(text[pb:], end-c.Position)
		if got := text[pb:eb]; got != c.Original {
			add(IssueTextMismatch, i, "original text at %d is %q, correction says %q", c.Position, got, c.Original)
		}

		rebuilt.WriteString(text[cursorByte:pb])
		correctedCursor += c.Position - cursor
		if c.CorrectedPosition != correctedCursor {
			add(IssueCorrectedPosition, i, "correctedPosition is %d, expected %d", c.CorrectedPosition, correctedCursor)
		}

		rebuilt.WriteString(c.Corrected)
		correctedCursor += runeLen(c.Corrected)
		cursor, cursorByte = end, eb
	}
	rebuilt.WriteString(text[cursorByte:])

	if actual := rebuilt.String(); actual != doc.Corrected {
		report.Diff = diff.Compare("corrected", "applied", doc.Corrected, actual)
		add(IssueCorrectedText, -1, "applying corrections does not reproduce the corrected text: %s", report.Diff.Inline())
	}
	return report
}
