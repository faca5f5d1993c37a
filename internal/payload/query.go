package payload

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"proofmark/internal/correction"
	"proofmark/internal/logging"
)

// FromQuery decodes query values with the default codec.
func FromQuery(values url.Values) (correction.Document, error) {
	return defaultCodec.FromQuery(values)
}

// FromURL decodes the query of a share link with the default codec.
func FromURL(raw string) (correction.Document, error) {
	return defaultCodec.FromURL(raw)
}

// ShareURL builds a share link with the default codec.
func ShareURL(base string, doc correction.Document) (string, error) {
	return defaultCodec.ShareURL(base, doc)
}

// FromQuery decodes the payload carried by query values. The inline
// parameter wins; without it the legacy original/corrections pair is mapped
// straight onto a position-indexed document.
func (c *Codec) FromQuery(values url.Values) (correction.Document, error) {
	if v := values.Get(c.param); v != "" {
		return c.DecodeData(v)
	}

	original := values.Get(ParamOriginal)
	corrections := values.Get(ParamCorrections)
	if original == "" || corrections == "" {
		return correction.Document{}, ErrNoPayload
	}
	logging.PayloadDebug("no %q parameter, decoding legacy form", c.param)
	return DecodeLegacy(original, corrections)
}

// FromURL parses raw as a URL and decodes its query.
func (c *Codec) FromURL(raw string) (correction.Document, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return correction.Document{}, &ParseError{Message: "invalid share link", Err: err}
	}
	return c.FromQuery(u.Query())
}

// legacyCorrections is the JSON carried by the legacy corrections parameter.
type legacyCorrections struct {
	Corrected   string                  `json:"corrected"`
	Corrections []correction.Correction `json:"corrections"`
}

// DecodeLegacy builds a document from the legacy parameter values, which are
// URI-component escaped once more inside the query. Values that do not
// unescape are used as they are.
func DecodeLegacy(original, corrections string) (correction.Document, error) {
	text := unescapeComponent(original)
	raw := unescapeComponent(corrections)

	var doc correction.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return correction.Document{}, &ParseError{Message: "corrections parameter is not valid JSON", Err: err}
	}
	doc.Original = text
	if doc.Corrections == nil {
		doc.Corrections = []correction.Correction{}
	}
	return correction.Normalize(correction.Source{Document: &doc}), nil
}

func unescapeComponent(s string) string {
	u, err := url.PathUnescape(s)
	if err != nil {
		logging.PayloadDebug("legacy value kept as is: %v", err)
		return s
	}
	return u
}

// ShareURL formats doc as an inline payload and returns base with the
// encoded payload set as the codec's query parameter.
func (c *Codec) ShareURL(base string, doc correction.Document) (string, error) {
	text, err := c.parser.Format(doc)
	if err != nil {
		return "", err
	}
	return c.ShareText(base, text)
}

// ShareText returns base with the inline payload text encoded into the
// codec's query parameter.
func (c *Codec) ShareText(base, text string) (string, error) {
	encoded, err := EncodeText(text)
	if err != nil {
		return "", err
	}
	logging.Payload("share link payload: %d bytes inline, %d encoded", len(text), len(encoded))
	return withQuery(base, url.Values{c.param: {encoded}})
}

// LegacyShareURL returns base with the two legacy parameters set.
func LegacyShareURL(base string, doc correction.Document) (string, error) {
	corrections := doc.Corrections
	if corrections == nil {
		corrections = []correction.Correction{}
	}
	data, err := json.Marshal(legacyCorrections{Corrected: doc.Corrected, Corrections: corrections})
	if err != nil {
		return "", err
	}
	return withQuery(base, url.Values{
		ParamOriginal:    {url.PathEscape(doc.Original)},
		ParamCorrections: {url.PathEscape(string(data))},
	})
}

func withQuery(base string, params url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	q := u.Query()
	for k, v := range params {
		q[k] = v
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// DecodeInput decodes a payload in any share form: a URL carrying the
// query, a data parameter value, or the inline JSON itself.
func (c *Codec) DecodeInput(s string) (correction.Document, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "://") {
		return c.FromURL(s)
	}
	return c.DecodeData(s)
}

// DecodeFile decodes the content of a payload file. A JSON object is read as
// inline JSON and a lone link as a share link; anything else, JSON scalars
// included, is parsed as bare inline text.
func (c *Codec) DecodeFile(data []byte) (correction.Document, error) {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)):
		logging.PayloadDebug("file holds inline JSON (%d bytes)", len(trimmed))
		return c.ParseInlineJSON(trimmed)
	case !strings.ContainsAny(trimmed, " \n") && strings.Contains(trimmed, "://"):
		logging.PayloadDebug("file holds a share link")
		return c.FromURL(trimmed)
	}
	logging.PayloadDebug("file holds bare inline text (%d bytes)", len(data))
	return c.parser.Parse(string(data)), nil
}
