package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"proofmark/internal/batch"
	"proofmark/internal/correction"
	"proofmark/internal/render"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// setup resets the flag globals and returns a command wired to buffers.
func setup(t *testing.T, stdin string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	logger = zap.NewNop()
	cfg = nil
	jsonOutput = false
	t.Cleanup(func() {
		jsonOutput = false
		parseSegments = false
		shareLegacy = false
		shareFromJSON = false
		shareBase = ""
		renderSide = "both"
		renderLegend = true
		summaryRaw = false
		batchWorkers = 0
		batchVerify = false
	})

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	return cmd, &out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunParse(t *testing.T) {
	cmd, out := setup(t, "{{helo⋮Hello|spelling|fix}} world\n")

	require.NoError(t, runParse(cmd, nil))

	var doc correction.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "helo world", doc.Original)
	assert.Equal(t, "Hello world", doc.Corrected)
	require.Len(t, doc.Corrections, 1)
	assert.Equal(t, correction.Correction{
		Type: "spelling", Original: "helo", Corrected: "Hello", Reason: "fix",
	}, doc.Corrections[0])
}

func TestRunParse_Segments(t *testing.T) {
	cmd, out := setup(t, "{{helo⋮Hello|spelling}} world")
	parseSegments = true

	require.NoError(t, runParse(cmd, nil))

	var segs []correction.Segment
	require.NoError(t, json.Unmarshal(out.Bytes(), &segs))
	require.Len(t, segs, 2)
	assert.Equal(t, "helo", segs[0].Text)
	require.NotNil(t, segs[0].Correction)
	assert.Equal(t, "Hello", segs[0].Correction.Corrected)
	assert.Equal(t, " world", segs[1].Text)
	assert.Nil(t, segs[1].Correction)
}

func TestRunFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "document",
			input: `{"original":"helo world","corrected":"Hello world","corrections":[{"type":"spelling","original":"helo","corrected":"Hello","position":0}]}`,
			want:  "{{helo⋮Hello|spelling}} world\n",
		},
		{
			name:  "segments",
			input: `{"segments":[{"text":"a "},{"text":"cat","correction":{"type":"style","corrected":"dog","reason":"tone"}}]}`,
			want:  "a {{cat⋮dog|style|tone}}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, out := setup(t, tt.input)
			require.NoError(t, runFormat(cmd, nil))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRunFormat_InvalidJSON(t *testing.T) {
	cmd, _ := setup(t, "not json")
	err := runFormat(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a correction document")
}

func TestRunShareThenDecode(t *testing.T) {
	cmd, out := setup(t, "{{helo⋮Hello|spelling}} world\n")
	require.NoError(t, runShare(cmd, nil))

	link := strings.TrimSpace(out.String())
	assert.True(t, strings.HasPrefix(link, "https://proofmark.app/?data="), link)

	cmd, out = setup(t, "")
	require.NoError(t, runDecode(cmd, []string{link}))

	var doc correction.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "Hello world", doc.Corrected)
	require.Len(t, doc.Corrections, 1)
}

func TestRunShare_Legacy(t *testing.T) {
	cmd, out := setup(t, "{{helo⋮Hello|spelling}} world")
	shareLegacy = true
	shareBase = "https://example.com/view"

	require.NoError(t, runShare(cmd, nil))

	link := strings.TrimSpace(out.String())
	assert.True(t, strings.HasPrefix(link, "https://example.com/view?"), link)
	assert.Contains(t, link, "original=")
	assert.Contains(t, link, "corrections=")
	assert.NotContains(t, link, "data=")
}

func TestRunDecode_File(t *testing.T) {
	path := writeFile(t, "payload.json", `{"text": "{{are⋮is|grammar}} fine"}`)
	cmd, out := setup(t, "")

	require.NoError(t, runDecode(cmd, []string{path}))

	var doc correction.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "are fine", doc.Original)
	assert.Equal(t, "is fine", doc.Corrected)
}

func TestRunDecode_BadPayload(t *testing.T) {
	cmd, _ := setup(t, "")
	err := runDecode(cmd, []string{"https://proofmark.app/?other=1"})
	require.Error(t, err)
}

func TestRunRender(t *testing.T) {
	cmd, out := setup(t, "{{helo⋮Hello|spelling|fix}} world")

	require.NoError(t, runRender(cmd, nil))

	text := ansi.ReplaceAllString(out.String(), "")
	assert.Contains(t, text, "ORIGINAL")
	assert.Contains(t, text, "CORRECTED")
	assert.Contains(t, text, "helo world")
	assert.Contains(t, text, "Hello world")
	assert.Contains(t, text, "fix")
}

func TestRunRender_OneSide(t *testing.T) {
	cmd, out := setup(t, "{{helo⋮Hello|spelling}} world")
	renderSide = "corrected"
	renderLegend = false

	require.NoError(t, runRender(cmd, nil))

	text := ansi.ReplaceAllString(out.String(), "")
	assert.Equal(t, "Hello world", strings.TrimRight(text, " \n"))
}

func TestRunRender_InvalidSide(t *testing.T) {
	cmd, _ := setup(t, "plain")
	renderSide = "sideways"

	err := runRender(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}

func TestRunSummary(t *testing.T) {
	cmd, out := setup(t, "{{helo⋮Hello|spelling}} {{wrld⋮world|spelling}}{{⋮.|punctuation}}")
	jsonOutput = true

	require.NoError(t, runSummary(cmd, nil))

	var s render.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &s))
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, []render.TypeCount{
		{Type: "spelling", Count: 2},
		{Type: "punctuation", Count: 1},
	}, s.ByType)
}

func TestRunSummary_Raw(t *testing.T) {
	cmd, out := setup(t, "{{helo⋮Hello|spelling}} world")
	summaryRaw = true

	require.NoError(t, runSummary(cmd, nil))
	assert.Contains(t, out.String(), "# Correction Summary")
	assert.Contains(t, out.String(), "~~helo~~")
}

func TestRunVerify(t *testing.T) {
	cmd, out := setup(t, "{{helo⋮Hello|spelling}} world")

	require.NoError(t, runVerify(cmd, nil))
	assert.Equal(t, "ok: 1 corrections verified\n", out.String())
}

func TestRunVerify_Inconsistent(t *testing.T) {
	path := writeFile(t, "doc.json",
		`{"original":"helo world","corrected":"Hello world","corrections":[{"type":"spelling","original":"hi","corrected":"Hello","position":0}]}`)
	cmd, out := setup(t, "")

	err := runVerify(cmd, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issues found")
	assert.Contains(t, out.String(), string(correction.IssueTextMismatch))
}

func TestRunBatch(t *testing.T) {
	data, err := json.Marshal(map[string]string{"text": "{{are⋮is|grammar}} fine"})
	require.NoError(t, err)
	path := writeFile(t, "inputs.txt", strings.Join([]string{
		"# payloads",
		string(data),
		"",
		"https://proofmark.app/?data=eyJ0ZXh0IjoiaGkifQ==",
	}, "\n"))
	cmd, out := setup(t, "")
	jsonOutput = true
	batchVerify = true

	require.NoError(t, runBatch(cmd, []string{path}))

	var report batch.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.NotEmpty(t, report.RunID)
	assert.Zero(t, report.Failed)
	require.Len(t, report.Results, 2)
	assert.Equal(t, 2, report.Results[0].Line)
	assert.Equal(t, "is fine", report.Results[0].Document.Corrected)
	assert.Equal(t, 4, report.Results[1].Line)
	assert.Equal(t, "hi", report.Results[1].Document.Original)
}

func TestRunBatch_Failures(t *testing.T) {
	cmd, out := setup(t, "{\"text\": \"ok\"}\n%%%\n")

	err := runBatch(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 lines failed")
	assert.Contains(t, out.String(), "2: error:")
	assert.Contains(t, out.String(), "1 failed")
}

func TestRunWatch_InitialRender(t *testing.T) {
	path := writeFile(t, "draft.txt", "{{helo⋮Hello|spelling}} world\n")
	cmd, out := setup(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cmd.SetContext(ctx)

	require.NoError(t, runWatch(cmd, []string{path}))

	text := ansi.ReplaceAllString(out.String(), "")
	assert.Contains(t, text, "1 corrections")
	assert.Contains(t, text, "Hello world")
}

func TestLoadDocument_Segments(t *testing.T) {
	path := writeFile(t, "segments.json", `{"segments":[{"text":"teh","correction":{"type":"spelling","corrected":"the"}}]}`)
	cmd, _ := setup(t, "")

	doc, err := loadDocument(cmd, []string{path})
	require.NoError(t, err)
	assert.Equal(t, "teh", doc.Original)
	assert.Equal(t, "the", doc.Corrected)
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "proofmark dev\n", out.String())
}
