package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"proofmark/internal/correction"
	"proofmark/internal/logging"
)

// readInput reads the file named by args[0], or stdin when there is no
// argument or it is "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// readText reads inline text input without its final line break.
func readText(cmd *cobra.Command, args []string) (string, error) {
	data, err := readInput(cmd, args)
	if err != nil {
		return "", err
	}
	return trimLineEnd(string(data)), nil
}

func trimLineEnd(s string) string {
	return strings.TrimSuffix(strings.TrimSuffix(s, "\n"), "\r")
}

// loadDocument resolves a document from args[0]: stdin or an existing file
// is decoded as file content, anything else as a share link, data value or
// inline JSON. File content may also be a document written by parse.
func loadDocument(cmd *cobra.Command, args []string) (correction.Document, error) {
	codec := newCodec()

	if len(args) > 0 && args[0] != "-" {
		if _, err := os.Stat(args[0]); err != nil {
			cliLogger().Debug("decoding argument as payload", zap.Int("length", len(args[0])))
			return codec.DecodeInput(args[0])
		}
	}

	text, err := readText(cmd, args)
	if err != nil {
		return correction.Document{}, err
	}
	if doc, ok, err := documentJSON(text); ok {
		logging.CLIDebug("input is a correction document")
		return doc, err
	}
	return codec.DecodeFile([]byte(text))
}

// documentJSON decodes a JSON object without a "text" field as a document or
// segment list. Corrections keep their input order so verify can see it.
func documentJSON(text string) (correction.Document, bool, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return correction.Document{}, false, nil
	}
	if _, ok := probe["text"]; ok {
		return correction.Document{}, false, nil
	}
	var src correction.Source
	if err := json.Unmarshal([]byte(text), &src); err != nil {
		return correction.Document{}, true, fmt.Errorf("input is not a correction document: %w", err)
	}
	if src.Document != nil {
		return *src.Document, true, nil
	}
	return correction.ToLegacy(src.Segments), true, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// cmdContext returns the command's context, which is nil when a run
// function is called directly.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
