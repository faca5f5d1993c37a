package payload

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofmark/internal/correction"
)

func legacyDocument() correction.Document {
	return correction.Document{
		Original:  "Helo world! This are an example.",
		Corrected: "Hello world! This is an example.",
		Corrections: []correction.Correction{
			{Type: correction.TypeReplacement, Original: "Helo", Corrected: "Hello", Position: 0, CorrectedPosition: 0, Reason: "Spelling error"},
			{Type: correction.TypeReplacement, Original: "are", Corrected: "is", Position: 17, CorrectedPosition: 18, Reason: "Subject-verb agreement"},
		},
	}
}

func TestShareURL_RoundTrip(t *testing.T) {
	doc := correction.Parse("{{helo⋮Hello|spelling|fix}} wörld{{⋮!|punctuation}}")

	link, err := ShareURL("https://example.com/docs?lang=en", doc)
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/docs", u.Path)
	assert.Equal(t, "en", u.Query().Get("lang"))
	assert.NotEmpty(t, u.Query().Get(DefaultParam))

	got, err := FromURL(link)
	require.NoError(t, err)
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Errorf("FromURL(ShareURL(doc)) mismatch (-want +got):\n%s", diff)
	}
}

func TestShareURL_Unencodable(t *testing.T) {
	doc := correction.Document{Original: "a|b", Corrections: []correction.Correction{
		{Type: correction.TypeGrammar, Original: "a|b", Corrected: "c"},
	}}
	_, err := ShareURL("https://example.com/", doc)
	assert.ErrorIs(t, err, correction.ErrUnencodable)
}

func TestShareURL_InvalidBase(t *testing.T) {
	_, err := ShareURL("://nope", correction.Parse("x"))
	assert.Error(t, err)
}

func TestLegacyShareURL_RoundTrip(t *testing.T) {
	link, err := LegacyShareURL("https://example.com/", legacyDocument())
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Empty(t, u.Query().Get(DefaultParam))

	got, err := FromURL(link)
	require.NoError(t, err)
	if diff := cmp.Diff(legacyDocument(), got); diff != "" {
		t.Errorf("legacy round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFromQuery_LegacyWithoutCorrectedPositions(t *testing.T) {
	values := url.Values{
		ParamOriginal: {url.PathEscape("Helo world! This are an example.")},
		ParamCorrections: {url.PathEscape(`{"corrected":"Hello world! This is an example.","corrections":[` +
			`{"type":"replacement","original":"are","corrected":"is","position":17,"reason":"Subject-verb agreement"},` +
			`{"type":"replacement","original":"Helo","corrected":"Hello","position":0,"reason":"Spelling error"}]}`)},
	}

	got, err := FromQuery(values)
	require.NoError(t, err)
	if diff := cmp.Diff(legacyDocument(), got); diff != "" {
		t.Errorf("legacy decode mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, correction.Verify(got).OK())
}

func TestFromQuery_LegacySingleEncoded(t *testing.T) {
	values := url.Values{
		ParamOriginal:    {"100% done"},
		ParamCorrections: {`{"corrected":"100% done"}`},
	}
	got, err := FromQuery(values)
	require.NoError(t, err)
	assert.Equal(t, "100% done", got.Original)
	assert.Empty(t, got.Corrections)
	assert.NotNil(t, got.Corrections)
}

func TestFromQuery_DataWinsOverLegacy(t *testing.T) {
	data, err := EncodeText("{{a⋮b|grammar}}")
	require.NoError(t, err)

	values := url.Values{
		DefaultParam:     {data},
		ParamOriginal:    {"ignored"},
		ParamCorrections: {"{}"},
	}
	got, err := FromQuery(values)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Corrected)
}

func TestFromQuery_Errors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := FromQuery(url.Values{})
		assert.True(t, errors.Is(err, ErrNoPayload))
	})

	t.Run("legacy needs both parameters", func(t *testing.T) {
		_, err := FromQuery(url.Values{ParamOriginal: {"x"}})
		assert.ErrorIs(t, err, ErrNoPayload)
	})

	t.Run("legacy corrections not json", func(t *testing.T) {
		_, err := FromQuery(url.Values{ParamOriginal: {"x"}, ParamCorrections: {"nope"}})
		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr))
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := FromURL("http://[::1")
		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr))
	})
}

func TestCodec_ShareTextUsesParam(t *testing.T) {
	c := NewCodec("", "p")
	link, err := c.ShareText("https://example.com/view", "{{a⋮b|grammar}}")
	require.NoError(t, err)

	got, err := c.FromURL(link)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Corrected)

	_, err = FromURL(link)
	assert.ErrorIs(t, err, ErrNoPayload)
}

func TestLegacyShareURL_NilCorrections(t *testing.T) {
	link, err := LegacyShareURL("https://example.com/", correction.Document{Original: "x", Corrected: "x"})
	require.NoError(t, err)

	got, err := FromURL(link)
	require.NoError(t, err)
	if diff := cmp.Diff(correction.Document{Original: "x", Corrected: "x"}, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCodec_DecodeInput(t *testing.T) {
	c := NewCodec("-", "p")

	link, err := c.ShareText("https://example.com/", "{{teh-the|spelling}}")
	require.NoError(t, err)

	doc, err := c.DecodeInput("  " + link + "\n")
	require.NoError(t, err)
	assert.Equal(t, "the", doc.Corrected)

	doc, err = c.DecodeInput(`{"text":"{{a-b|grammar}}"}`)
	require.NoError(t, err)
	assert.Equal(t, "b", doc.Corrected)

	_, err = c.DecodeInput("https://example.com/?data=abc")
	assert.ErrorIs(t, err, ErrNoPayload)
}

func TestCodec_DecodeFile(t *testing.T) {
	c := NewCodec("", "")

	t.Run("inline json", func(t *testing.T) {
		doc, err := c.DecodeFile([]byte("{\"text\": \"x{{⋮.|punctuation}}\"}\n"))
		require.NoError(t, err)
		assert.Equal(t, "x.", doc.Corrected)
	})

	t.Run("share link", func(t *testing.T) {
		link, err := ShareURL("https://example.com/", correction.Parse("{{a⋮b|grammar}}"))
		require.NoError(t, err)

		doc, err := c.DecodeFile([]byte(link + "\n"))
		require.NoError(t, err)
		assert.Equal(t, "b", doc.Corrected)
	})

	t.Run("bare inline text keeps whitespace", func(t *testing.T) {
		doc, err := c.DecodeFile([]byte("{{helo⋮Hello|spelling}} world\n"))
		require.NoError(t, err)
		assert.Equal(t, "helo world\n", doc.Original)
		assert.Equal(t, "Hello world\n", doc.Corrected)
	})

	t.Run("json scalars are inline text", func(t *testing.T) {
		for _, content := range []string{"42", "true", `"Hello"`, "null"} {
			doc, err := c.DecodeFile([]byte(content))
			require.NoError(t, err, content)
			assert.Equal(t, content, doc.Original)
			assert.Empty(t, doc.Corrections)
		}
	})

	t.Run("json without text", func(t *testing.T) {
		_, err := c.DecodeFile([]byte(`{"body": "x"}`))
		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr))
	})
}
