// Package payload decodes and encodes the share-link forms of a correction
// document: base64 JSON carrying an inline payload, and the older
// two-parameter form with the original text and a corrections list.
package payload

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"proofmark/internal/correction"
	"proofmark/internal/logging"
)

// DefaultParam is the query parameter that carries the encoded payload.
const DefaultParam = "data"

// Legacy query parameters.
const (
	ParamOriginal    = "original"
	ParamCorrections = "corrections"
)

var errInvalidUTF8 = errors.New("decoded bytes are not valid UTF-8")

// Alphabets tried in order. Standard base64 is what Encode produces; the
// rest cover links that went through URL-safe or unpadded encoders.
var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Encode returns the standard base64 encoding of the UTF-8 bytes of raw.
func Encode(raw string) string {
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// Decode reverses Encode. Whitespace is ignored, except that spaces are read
// as '+' because form decoding turns an unescaped '+' into a space.
func Decode(s string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ':
			return '+'
		case '\n', '\r', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(s))

	if cleaned == "" {
		return "", &DecodeError{Input: s, Err: errors.New("empty input")}
	}

	var lastErr error
	for _, enc := range encodings {
		data, err := enc.DecodeString(cleaned)
		if err != nil {
			lastErr = err
			continue
		}
		if !utf8.Valid(data) {
			return "", &DecodeError{Input: s, Err: errInvalidUTF8}
		}
		return string(data), nil
	}
	return "", &DecodeError{Input: s, Err: lastErr}
}

// Codec ties the payload forms to a marker separator and a query parameter
// name.
type Codec struct {
	parser *correction.Parser
	param  string
}

// NewCodec returns a codec. Empty arguments select correction.Separator and
// DefaultParam.
func NewCodec(sep, param string) *Codec {
	if param == "" {
		param = DefaultParam
	}
	return &Codec{parser: correction.NewParser(sep), param: param}
}

// Param returns the query parameter name the codec reads and writes.
func (c *Codec) Param() string { return c.param }

// Parser returns the inline parser used by the codec.
func (c *Codec) Parser() *correction.Parser { return c.parser }

var defaultCodec = NewCodec(correction.Separator, DefaultParam)

// ParseInlineJSON parses {"text": "<inline payload>"} with the default codec.
func ParseInlineJSON(raw string) (correction.Document, error) {
	return defaultCodec.ParseInlineJSON(raw)
}

// DecodeData decodes a data parameter value with the default codec.
func DecodeData(value string) (correction.Document, error) {
	return defaultCodec.DecodeData(value)
}

// ParseInlineJSON parses {"text": "<inline payload>"} and runs the inline
// parser over the text.
func (c *Codec) ParseInlineJSON(raw string) (correction.Document, error) {
	text, err := InlineText(raw)
	if err != nil {
		logging.PayloadWarn("inline JSON rejected: %v", err)
		return correction.Document{}, err
	}
	return c.parser.Parse(text), nil
}

// InlineText extracts the "text" field of an inline JSON payload.
func InlineText(raw string) (string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &obj); err != nil {
		return "", &ParseError{Message: "payload is not a JSON object", Err: err}
	}
	field, ok := obj["text"]
	if !ok {
		return "", &ParseError{Message: `JSON must contain a "text" field`}
	}
	if bytes.Equal(bytes.TrimSpace(field), []byte("null")) {
		return "", &ParseError{Message: `"text" field must be a string`}
	}
	var text string
	if err := json.Unmarshal(field, &text); err != nil {
		return "", &ParseError{Message: `"text" field must be a string`, Err: err}
	}
	return text, nil
}

// DecodeData decodes a data parameter value: base64 of the inline JSON. A
// value that is not base64 is treated as the JSON itself.
func (c *Codec) DecodeData(value string) (correction.Document, error) {
	raw, err := Decode(value)
	if err != nil {
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			return correction.Document{}, err
		}
		logging.PayloadDebug("data value is not base64 (%v), reading it as raw JSON", decodeErr.Err)
		raw = value
	}
	return c.ParseInlineJSON(raw)
}

// EncodeText wraps an inline payload in its JSON envelope and base64-encodes it.
func EncodeText(text string) (string, error) {
	data, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return "", err
	}
	return Encode(string(data)), nil
}
