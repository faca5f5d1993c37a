// Package correction implements the inline correction micro-format and the
// position-indexed correction model used for rendering.
//
// An inline payload is prose with embedded markers of the form
//
//	{{original⋮corrected|type|reason}}
//
// where the reason (and its pipe) is optional. Parse turns a payload into a
// Document; ToInlineSegments and ToLegacy convert between the Document and
// the flat segment view. All offsets are counted in runes.
package correction

import (
	"encoding/json"
	"slices"
	"strings"
	"unicode/utf8"
)

// Separator is the default delimiter between the original and corrected
// halves of a marker. U+22EE does not occur in ordinary prose, unlike the
// hyphen used by the earliest payloads.
const Separator = "⋮"

const (
	markerOpen  = "{{"
	markerClose = "}}"
	fieldSep    = "|"
)

// Type is the category of a correction. The set is open: values without a
// constant below are carried through unchanged.
type Type string

const (
	TypeGrammar        Type = "grammar"
	TypeSpelling       Type = "spelling"
	TypePunctuation    Type = "punctuation"
	TypeWordChoice     Type = "word-choice"
	TypeCapitalization Type = "capitalization"

	// Historical categories from position-indexed payloads.
	TypeAddition    Type = "addition"
	TypeDeletion    Type = "deletion"
	TypeReplacement Type = "replacement"
)

// KnownTypes lists the categories that have dedicated display styling.
var KnownTypes = []Type{
	TypeGrammar,
	TypeSpelling,
	TypePunctuation,
	TypeWordChoice,
	TypeCapitalization,
	TypeAddition,
	TypeDeletion,
	TypeReplacement,
}

// Known reports whether t is one of KnownTypes.
func (t Type) Known() bool {
	return slices.Contains(KnownTypes, t)
}

// Label returns the display form of the type: first letter upper-cased,
// hyphens shown as spaces.
func (t Type) Label() string {
	s := strings.ReplaceAll(string(t), "-", " ")
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + s[size:]
}

// Correction is one atomic edit from original to corrected text.
type Correction struct {
	Type              Type   `json:"type"`
	Original          string `json:"original"`
	Corrected         string `json:"corrected"`
	Position          int    `json:"position"`
	CorrectedPosition int    `json:"correctedPosition"`
	Reason            string `json:"reason,omitempty"`
}

// IsInsertion reports whether the correction adds text without replacing any.
func (c Correction) IsInsertion() bool { return c.Original == "" && c.Corrected != "" }

// IsDeletion reports whether the correction removes text without replacement.
func (c Correction) IsDeletion() bool { return c.Original != "" && c.Corrected == "" }

// End returns the rune offset just past Original in the original text.
func (c Correction) End() int { return c.Position + runeLen(c.Original) }

// CorrectedEnd returns the rune offset just past Corrected in the corrected text.
func (c Correction) CorrectedEnd() int { return c.CorrectedPosition + runeLen(c.Corrected) }

// Document is the rendering unit: both full texts plus the corrections that
// lead from one to the other, ordered left to right.
type Document struct {
	Original    string       `json:"original"`
	Corrected   string       `json:"corrected"`
	Corrections []Correction `json:"corrections"`
}

// wireCorrection accepts correction records from producers that predate
// correctedPosition.
type wireCorrection struct {
	Type              Type   `json:"type"`
	Original          string `json:"original"`
	Corrected         string `json:"corrected"`
	Position          int    `json:"position"`
	CorrectedPosition *int   `json:"correctedPosition"`
	Reason            string `json:"reason"`
}

// UnmarshalJSON decodes a position-indexed document. Corrections without a
// correctedPosition get one derived from the cumulative length change of
// the corrections before them.
func (d *Document) UnmarshalJSON(data []byte) error {
	var wire struct {
		Original    string           `json:"original"`
		Corrected   string           `json:"corrected"`
		Corrections []wireCorrection `json:"corrections"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	d.Original = wire.Original
	d.Corrected = wire.Corrected
	d.Corrections = make([]Correction, len(wire.Corrections))

	// Walk in position order to accumulate the shift, but keep input order
	// in the result.
	order := make([]int, len(wire.Corrections))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return wire.Corrections[a].Position - wire.Corrections[b].Position
	})

	shift := 0
	for _, i := range order {
		w := wire.Corrections[i]
		c := Correction{
			Type:      w.Type,
			Original:  w.Original,
			Corrected: w.Corrected,
			Position:  w.Position,
			Reason:    w.Reason,
		}
		if w.CorrectedPosition != nil {
			c.CorrectedPosition = *w.CorrectedPosition
		} else {
			c.CorrectedPosition = w.Position + shift
		}
		shift += runeLen(w.Corrected) - runeLen(w.Original)
		d.Corrections[i] = c
	}
	return nil
}

// Annotation is the correction payload carried by an annotated segment.
type Annotation struct {
	Type      Type   `json:"type"`
	Corrected string `json:"corrected"`
	Reason    string `json:"reason,omitempty"`
}

// Segment is a chunk of original text. Plain segments have a nil Correction.
type Segment struct {
	Text       string      `json:"text"`
	Correction *Annotation `json:"correction,omitempty"`
}

// Annotated reports whether the segment carries a correction.
func (s Segment) Annotated() bool { return s.Correction != nil }

// Source is either a position-indexed Document or a segment list.
type Source struct {
	Document *Document
	Segments []Segment
}

// UnmarshalJSON picks the segment form when a "segments" key is present and
// the position-indexed form otherwise.
func (s *Source) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if raw, ok := probe["segments"]; ok {
		s.Document = nil
		return json.Unmarshal(raw, &s.Segments)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	s.Document = &doc
	s.Segments = nil
	return nil
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// byteOffset returns the byte index of the n-th rune of s, or len(s) when s
// is shorter. Invalid bytes count as one rune each, as in runeLen, so text
// that is not valid UTF-8 is sliced without being rewritten.
func byteOffset(s string, n int) int {
	i := 0
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}
