package correction

import (
	"slices"
	"strings"
)

// ToLegacy expands a segment list into a position-indexed Document. Plain
// segments contribute identically to both texts; each annotated segment
// becomes one Correction positioned at the running offsets.
func ToLegacy(segments []Segment) Document {
	var original, corrected strings.Builder
	corrections := make([]Correction, 0)
	pos, correctedPos := 0, 0

	for _, seg := range segments {
		original.WriteString(seg.Text)
		n := runeLen(seg.Text)

		if seg.Correction == nil {
			corrected.WriteString(seg.Text)
			pos += n
			correctedPos += n
			continue
		}

		corrections = append(corrections, Correction{
			Type:              seg.Correction.Type,
			Original:          seg.Text,
			Corrected:         seg.Correction.Corrected,
			Position:          pos,
			CorrectedPosition: correctedPos,
			Reason:            seg.Correction.Reason,
		})
		corrected.WriteString(seg.Correction.Corrected)
		pos += n
		correctedPos += runeLen(seg.Correction.Corrected)
	}

	return Document{
		Original:    original.String(),
		Corrected:   corrected.String(),
		Corrections: corrections,
	}
}

// ToInlineSegments splits doc.Original at each correction's span. Corrections
// are sorted by position first; one that starts inside an earlier span is
// dropped, and positions past the end of the text are clamped to it.
func ToInlineSegments(doc Document) []Segment {
	text := doc.Original
	total := runeLen(text)
	sorted := SortCorrections(doc.Corrections)

	segments := make([]Segment, 0, 2*len(sorted)+1)
	cursor, cursorByte := 0, 0

	for _, c := range sorted {
		p := min(max(c.Position, 0), total)
		if p < cursor {
			continue
		}
		pb := cursorByte + byteOffset(text[cursorByte:], p-cursor)
		if pb > cursorByte {
			segments = append(segments, Segment{Text: text[cursorByte:pb]})
		}
		segments = append(segments, Segment{
			Text: c.Original,
			Correction: &Annotation{
				Type:      c.Type,
				Corrected: c.Corrected,
				Reason:    c.Reason,
			},
		})
		n := runeLen(c.Original)
		cursor = p + n
		cursorByte = pb + byteOffset(text[pb:], n)
	}

	if cursorByte < len(text) {
		segments = append(segments, Segment{Text: text[cursorByte:]})
	}
	if len(segments) == 0 {
		segments = append(segments, Segment{Text: text})
	}
	return segments
}

// Normalize returns the position-indexed form of src. A Document passes
// through with its corrections sorted by position; a segment list is
// expanded with ToLegacy.
func Normalize(src Source) Document {
	if src.Document != nil {
		doc := *src.Document
		doc.Corrections = SortCorrections(doc.Corrections)
		return doc
	}
	return ToLegacy(src.Segments)
}

// SortCorrections returns a copy of cs stably sorted by Position.
func SortCorrections(cs []Correction) []Correction {
	sorted := make([]Correction, len(cs))
	copy(sorted, cs)
	slices.SortStableFunc(sorted, func(a, b Correction) int {
		return a.Position - b.Position
	})
	return sorted
}
