package correction

import (
	"errors"
	"fmt"
	"strings"

	"proofmark/internal/logging"
)

// ErrUnencodable is returned by Format when a document cannot be written as
// an inline payload that parses back to the same document.
var ErrUnencodable = errors.New("document cannot be encoded in inline format")

// Format writes doc as an inline payload using the default separator.
func Format(doc Document) (string, error) {
	return defaultParser.Format(doc)
}

// Format writes doc as an inline payload. The reason and its pipe are left
// out when the reason is empty.
func (p *Parser) Format(doc Document) (string, error) {
	segments := ToInlineSegments(doc)

	var b strings.Builder
	for _, seg := range segments {
		if seg.Correction == nil {
			b.WriteString(seg.Text)
			continue
		}
		if err := p.checkEncodable(seg); err != nil {
			return "", err
		}
		b.WriteString(markerOpen)
		b.WriteString(seg.Text)
		b.WriteString(p.sep)
		b.WriteString(seg.Correction.Corrected)
		b.WriteString(fieldSep)
		b.WriteString(string(seg.Correction.Type))
		if seg.Correction.Reason != "" {
			b.WriteString(fieldSep)
			b.WriteString(seg.Correction.Reason)
		}
		b.WriteString(markerClose)
	}

	out := b.String()
	// Literal text can still combine with a neighbouring marker into
	// something that scans differently.
	if !sameDocument(p.Parse(out), ToLegacy(segments)) {
		logging.ParseDebug("formatted payload does not parse back: %q", out)
		return "", fmt.Errorf("%w: literal text collides with marker syntax", ErrUnencodable)
	}
	return out, nil
}

func (p *Parser) checkEncodable(seg Segment) error {
	a := seg.Correction
	switch {
	case a.Type == "":
		return fmt.Errorf("%w: correction %q has no type", ErrUnencodable, seg.Text)
	case strings.Contains(string(a.Type), fieldSep), strings.Contains(string(a.Type), markerClose):
		return fmt.Errorf("%w: type %q contains a delimiter", ErrUnencodable, a.Type)
	case containsAny(seg.Text, p.sep, fieldSep, markerOpen, markerClose):
		return fmt.Errorf("%w: original %q contains a delimiter", ErrUnencodable, seg.Text)
	case containsAny(a.Corrected, p.sep, fieldSep, markerClose):
		return fmt.Errorf("%w: corrected %q contains a delimiter", ErrUnencodable, a.Corrected)
	case strings.Contains(a.Reason, markerClose):
		return fmt.Errorf("%w: reason %q contains %q", ErrUnencodable, a.Reason, markerClose)
	}
	return nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func sameDocument(a, b Document) bool {
	if a.Original != b.Original || a.Corrected != b.Corrected || len(a.Corrections) != len(b.Corrections) {
		return false
	}
	for i := range a.Corrections {
		if a.Corrections[i] != b.Corrections[i] {
			return false
		}
	}
	return true
}
