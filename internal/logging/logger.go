// Package logging provides config-driven categorized logging for proofmark.
// Every category logger is a named child of one zap logger. Category loggers
// are no-ops unless debug_mode is set, so library code can log freely.
package logging

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"proofmark/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config loading
	CategoryParse   Category = "parse"   // Inline marker parsing and conversion
	CategoryPayload Category = "payload" // Share link and base64 decoding
	CategoryRender  Category = "render"  // Terminal highlighting and summaries
	CategoryBatch   Category = "batch"   // Concurrent payload decoding
	CategoryWatch   Category = "watch"   // Payload file watcher
	CategoryCLI     Category = "cli"     // Command dispatch
)

// Logger is a category logger with printf-style methods. A Logger with no
// underlying zap logger discards everything.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	base    *zap.Logger
	cfg     config.LoggingConfig
	file    *os.File
	loggers = make(map[Category]*Logger)
)

// Initialize builds the root zap logger from c. Nothing is built when debug
// mode is off.
func Initialize(c config.LoggingConfig) error {
	if !c.DebugMode {
		InitializeWithLogger(nil, c)
		return nil
	}

	level := zapcore.InfoLevel
	if c.Level != "" {
		parsed, err := zapcore.ParseLevel(c.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", c.Level, err)
		}
		level = parsed
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if c.Format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	var out zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	var f *os.File
	if c.File != "" {
		var err error
		f, err = os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = zapcore.AddSync(f)
	}

	InitializeWithLogger(zap.New(zapcore.NewCore(enc, out, level)), c)

	mu.Lock()
	file = f
	mu.Unlock()

	Boot("logging initialized: level=%s format=%s file=%q", level, c.Format, c.File)
	return nil
}

// InitializeWithLogger installs l as the root logger. A nil l disables all
// categories regardless of c.
func InitializeWithLogger(l *zap.Logger, c config.LoggingConfig) {
	CloseAll()

	mu.Lock()
	defer mu.Unlock()
	base = l
	cfg = c
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return base != nil && cfg.IsCategoryEnabled(string(category))
}

// Get returns (or creates) a logger for the given category.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	if base == nil {
		return &Logger{category: category}
	}
	l := &Logger{category: category, sugar: base.Named(string(category)).Sugar()}
	loggers[category] = l
	return l
}

func (l *Logger) Debug(format string, args ...any) {
	if l.sugar != nil {
		l.sugar.Debugf(format, args...)
	}
}

func (l *Logger) Info(format string, args ...any) {
	if l.sugar != nil {
		l.sugar.Infof(format, args...)
	}
}

func (l *Logger) Warn(format string, args ...any) {
	if l.sugar != nil {
		l.sugar.Warnf(format, args...)
	}
}

func (l *Logger) Error(format string, args ...any) {
	if l.sugar != nil {
		l.sugar.Errorf(format, args...)
	}
}

// CloseAll flushes the root logger and closes the log file, if any.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()

	if base != nil {
		_ = base.Sync()
	}
	if file != nil {
		file.Close()
		file = nil
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...any) { Get(CategoryBoot).Info(format, args...) }

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...any) { Get(CategoryBoot).Debug(format, args...) }

// ParseDebug logs debug to the parse category
func ParseDebug(format string, args ...any) { Get(CategoryParse).Debug(format, args...) }

// Payload logs to the payload category
func Payload(format string, args ...any) { Get(CategoryPayload).Info(format, args...) }

// PayloadDebug logs debug to the payload category
func PayloadDebug(format string, args ...any) { Get(CategoryPayload).Debug(format, args...) }

// PayloadWarn logs a warning to the payload category
func PayloadWarn(format string, args ...any) { Get(CategoryPayload).Warn(format, args...) }

// RenderDebug logs debug to the render category
func RenderDebug(format string, args ...any) { Get(CategoryRender).Debug(format, args...) }

// Batch logs to the batch category
func Batch(format string, args ...any) { Get(CategoryBatch).Info(format, args...) }

// BatchDebug logs debug to the batch category
func BatchDebug(format string, args ...any) { Get(CategoryBatch).Debug(format, args...) }

// BatchWarn logs a warning to the batch category
func BatchWarn(format string, args ...any) { Get(CategoryBatch).Warn(format, args...) }

// Watch logs to the watch category
func Watch(format string, args ...any) { Get(CategoryWatch).Info(format, args...) }

// WatchDebug logs debug to the watch category
func WatchDebug(format string, args ...any) { Get(CategoryWatch).Debug(format, args...) }

// WatchError logs an error to the watch category
func WatchError(format string, args ...any) { Get(CategoryWatch).Error(format, args...) }

// CLI logs to the cli category
func CLI(format string, args ...any) { Get(CategoryCLI).Info(format, args...) }

// CLIDebug logs debug to the cli category
func CLIDebug(format string, args ...any) { Get(CategoryCLI).Debug(format, args...) }

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
