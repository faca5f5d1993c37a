package payload

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"proofmark/internal/config"
	"proofmark/internal/logging"
)

func observePayload(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logging.InitializeWithLogger(zap.New(core), config.LoggingConfig{DebugMode: true})
	t.Cleanup(func() { logging.InitializeWithLogger(nil, config.LoggingConfig{}) })
	return logs.FilterLoggerName("payload")
}

func TestDecodeData_LogsRawJSONFallback(t *testing.T) {
	logs := observePayload(t)

	_, err := DecodeData(`{"text":"plain"}`)
	require.NoError(t, err)

	entries := logs.FilterMessageSnippet("reading it as raw JSON").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
}

func TestParseInlineJSON_WarnsOnRejection(t *testing.T) {
	logs := observePayload(t)

	_, err := ParseInlineJSON(`{"body":"x"}`)
	require.Error(t, err)

	entries := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, `"text" field`)
}

func TestDecodeLegacy_LogsLenientUnescape(t *testing.T) {
	logs := observePayload(t)

	doc, err := FromQuery(url.Values{
		ParamOriginal:    {"100%"},
		ParamCorrections: {`{"corrected":"100%","corrections":[]}`},
	})
	require.NoError(t, err)
	assert.Equal(t, "100%", doc.Original)

	assert.Equal(t, 1, logs.FilterMessageSnippet("legacy form").Len())
	assert.Equal(t, 2, logs.FilterMessageSnippet("kept as is").Len())
}

func TestDecodeData_SilentWhenLoggingOff(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logging.InitializeWithLogger(zap.New(core), config.LoggingConfig{})
	t.Cleanup(func() { logging.InitializeWithLogger(nil, config.LoggingConfig{}) })

	_, _ = DecodeData("%%%")
	assert.Zero(t, logs.Len())
}
