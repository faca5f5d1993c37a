package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"proofmark/internal/correction"
	"proofmark/internal/payload"
)

var (
	shareLegacy   bool
	shareFromJSON bool
	shareBase     string
)

// decodeCmd decodes any payload form into a document
var decodeCmd = &cobra.Command{
	Use:   "decode [payload|file]",
	Short: "Decode a share link, data value or payload file",
	Long: `Decodes a payload into the position-indexed document and writes it as
JSON. The argument may be a share link (new or legacy form), a base64 data
value, inline JSON, or a file; with no argument stdin is read.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

// shareCmd builds a share link
var shareCmd = &cobra.Command{
	Use:   "share [file]",
	Short: "Build a share link for an inline payload",
	Long: `Reads inline text (or, with --from-json, a document) and writes a share
link. --legacy writes the older original/corrections form.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShare,
}

func init() {
	shareCmd.Flags().BoolVar(&shareLegacy, "legacy", false, "Write the original/corrections link form")
	shareCmd.Flags().BoolVar(&shareFromJSON, "from-json", false, "Read a document as JSON instead of inline text")
	shareCmd.Flags().StringVar(&shareBase, "base", "", "Base URL (default from config)")

	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(shareCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd, args)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), doc)
}

func runShare(cmd *cobra.Command, args []string) error {
	base := shareBase
	if base == "" {
		base = currentConfig().Share.BaseURL
	}
	codec := newCodec()

	var link string
	if shareFromJSON {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		var src correction.Source
		if err := json.Unmarshal(data, &src); err != nil {
			return fmt.Errorf("input is not a correction document: %w", err)
		}
		link, err = shareDocument(codec, base, correction.Normalize(src))
		if err != nil {
			return err
		}
	} else {
		text, err := readText(cmd, args)
		if err != nil {
			return err
		}
		if shareLegacy {
			link, err = payload.LegacyShareURL(base, codec.Parser().Parse(text))
		} else {
			link, err = codec.ShareText(base, text)
		}
		if err != nil {
			return err
		}
	}

	cliLogger().Debug("share link built", zap.Int("length", len(link)), zap.Bool("legacy", shareLegacy))
	fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}

func shareDocument(codec *payload.Codec, base string, doc correction.Document) (string, error) {
	if shareLegacy {
		return payload.LegacyShareURL(base, doc)
	}
	return codec.ShareURL(base, doc)
}
