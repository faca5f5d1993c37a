package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"proofmark/internal/config"
	"proofmark/internal/logging"
	"proofmark/internal/payload"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	verbose    bool
	configPath string
	jsonOutput bool

	// Loaded in PersistentPreRunE
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "proofmark",
	Short: "proofmark - inline grammar correction payloads",
	Long: `proofmark parses, formats and displays grammar corrections written in the
inline marker format:

  {{original⋮corrected|type|reason}}

Payloads can be given as bare inline text, as {"text": ...} JSON, as the
base64 "data" value of a share link, or as the share link itself.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", configPath, err)
		}

		// --verbose routes category logs through the CLI logger.
		if verbose {
			lc := cfg.Logging
			lc.DebugMode = true
			logging.InitializeWithLogger(logger, lc)
		} else if err := logging.Initialize(cfg.Logging); err != nil {
			return err
		}
		logger.Debug("config loaded",
			zap.String("path", configPath),
			zap.String("separator", cfg.Parser.Separator),
			zap.String("param", cfg.Share.Param))
		logging.Boot("proofmark %s, config %s", version, configPath)
		logging.BootDebug("config %s: theme=%s width=%d workers=%d", configPath, cfg.Render.Theme, cfg.Render.Width, cfg.Batch.Workers)
		logging.CLI("running %s", cmd.CommandPath())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the proofmark version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "proofmark %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Write JSON instead of terminal output")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// currentConfig returns the loaded config, or the defaults when commands run
// without the root pre-run.
func currentConfig() *config.Config {
	if cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}

func newCodec() *payload.Codec {
	c := currentConfig()
	return payload.NewCodec(c.Parser.Separator, c.Share.Param)
}

func cliLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
