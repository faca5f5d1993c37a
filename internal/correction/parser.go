package correction

import (
	"strings"

	"proofmark/internal/logging"
)

// Parser scans inline payloads. The zero value is not usable; build one
// with NewParser.
type Parser struct {
	sep string
}

// NewParser returns a parser that splits markers on sep. An empty sep
// selects Separator.
func NewParser(sep string) *Parser {
	if sep == "" {
		sep = Separator
	}
	return &Parser{sep: sep}
}

// Sep returns the separator the parser splits markers on.
func (p *Parser) Sep() string { return p.sep }

var defaultParser = NewParser(Separator)

// Parse converts an inline payload into a Document using the default
// separator. It never fails: malformed markers are kept as literal text.
func Parse(payload string) Document {
	return defaultParser.Parse(payload)
}

// ParseSegments returns the segment view of payload using the default
// separator.
func ParseSegments(payload string) []Segment {
	return defaultParser.Segments(payload)
}

// Parse converts an inline payload into a Document.
func (p *Parser) Parse(payload string) Document {
	doc := ToLegacy(p.Segments(payload))
	logging.ParseDebug("parsed %d bytes: %d corrections", len(payload), len(doc.Corrections))
	return doc
}

// Segments scans payload left to right and splits it into plain and
// annotated segments.
//
// A "{{" that does not start a well-formed marker is literal text; scanning
// resumes one byte later so a valid marker further on is still found. Every
// delimiter is ASCII or a whole separator string, so byte indexing never
// splits a multi-byte rune.
func (p *Parser) Segments(payload string) []Segment {
	segments := make([]Segment, 0)
	sc := newScan(payload, p.sep)
	literalStart := 0
	i := 0

	for i < len(payload) {
		idx := strings.Index(payload[i:], markerOpen)
		if idx < 0 {
			break
		}
		start := i + idx

		seg, end, ok := sc.marker(start)
		if !ok {
			i = start + 1
			continue
		}

		if start > literalStart {
			segments = append(segments, Segment{Text: payload[literalStart:start]})
		}
		segments = append(segments, seg)
		literalStart = end
		i = end
	}

	if literalStart < len(payload) {
		segments = append(segments, Segment{Text: payload[literalStart:]})
	}
	return segments
}

// seeker finds the next occurrence of needle at or after an offset. Offsets
// passed to one seeker never decrease, so a cached hit stays the first
// occurrence until the offset moves past it.
type seeker struct {
	s, needle string
	at        int
	valid     bool
}

func (k *seeker) next(from int) int {
	if k.valid && (k.at < 0 || k.at >= from) {
		return k.at
	}
	k.valid = true
	k.at = -1
	if from <= len(k.s) {
		if i := strings.Index(k.s[from:], k.needle); i >= 0 {
			k.at = from + i
		}
	}
	return k.at
}

// scan holds one seeker per delimiter and marker field. Each field starts
// at an offset that only grows as candidate markers move right, which keeps
// a whole scan linear in the payload length.
type scan struct {
	s, sep string

	sepA, pipeA, openA, closeA seeker // original
	sepB, pipeB, closeB        seeker // corrected
	pipeT, closeT              seeker // type and reason
}

func newScan(s, sep string) *scan {
	k := func(needle string) seeker { return seeker{s: s, needle: needle} }
	return &scan{
		s: s, sep: sep,
		sepA: k(sep), pipeA: k(fieldSep), openA: k(markerOpen), closeA: k(markerClose),
		sepB: k(sep), pipeB: k(fieldSep), closeB: k(markerClose),
		pipeT: k(fieldSep), closeT: k(markerClose),
	}
}

// inside reports whether an occurrence of length n found at idx lies
// entirely before limit.
func inside(idx, n, limit int) bool {
	return idx >= 0 && idx+n <= limit
}

// marker tries to read a marker starting at s[start:], which begins with
// "{{". It returns the annotated segment and the byte offset just past the
// closing "}}".
func (sc *scan) marker(start int) (Segment, int, bool) {
	bodyStart := start + len(markerOpen)

	// original: up to the first separator
	sepIdx := sc.sepA.next(bodyStart)
	if sepIdx < 0 ||
		inside(sc.pipeA.next(bodyStart), len(fieldSep), sepIdx) ||
		inside(sc.openA.next(bodyStart), len(markerOpen), sepIdx) ||
		inside(sc.closeA.next(bodyStart), len(markerClose), sepIdx) {
		return Segment{}, 0, false
	}

	// corrected: up to the first pipe
	restStart := sepIdx + len(sc.sep)
	pipe := sc.pipeB.next(restStart)
	if pipe < 0 ||
		inside(sc.sepB.next(restStart), len(sc.sep), pipe) ||
		inside(sc.closeB.next(restStart), len(markerClose), pipe) {
		return Segment{}, 0, false
	}

	// type and optional reason: up to the first closing braces
	tailStart := pipe + len(fieldSep)
	closeIdx := sc.closeT.next(tailStart)
	if closeIdx < 0 {
		return Segment{}, 0, false
	}
	typ, reason := sc.s[tailStart:closeIdx], ""
	if p := sc.pipeT.next(tailStart); inside(p, len(fieldSep), closeIdx) {
		typ, reason = sc.s[tailStart:p], sc.s[p+len(fieldSep):closeIdx]
	}
	if typ == "" {
		return Segment{}, 0, false
	}

	return Segment{
		Text: sc.s[bodyStart:sepIdx],
		Correction: &Annotation{
			Type:      Type(typ),
			Corrected: sc.s[restStart:pipe],
			Reason:    reason,
		},
	}, closeIdx + len(markerClose), true
}
