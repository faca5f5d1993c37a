package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"proofmark/internal/config"
)

func observe(t *testing.T, c config.LoggingConfig) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	InitializeWithLogger(zap.New(core), c)
	t.Cleanup(func() { InitializeWithLogger(nil, config.LoggingConfig{}) })
	return logs
}

func TestDisabledByDefault(t *testing.T) {
	logs := observe(t, config.LoggingConfig{})

	ParseDebug("should not appear %d", 1)
	Get(CategoryBatch).Error("nor this")

	assert.False(t, IsCategoryEnabled(CategoryBoot))
	assert.False(t, IsCategoryEnabled(CategoryParse))
	assert.Zero(t, logs.Len())
}

func TestCategoriesAreNamed(t *testing.T) {
	logs := observe(t, config.LoggingConfig{DebugMode: true})

	Boot("boot %s", "ok")
	ParseDebug("segments=%d", 3)
	PayloadWarn("fallback to raw json")
	WatchError("watch failed: %v", os.ErrNotExist)

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, "boot", entries[0].LoggerName)
	assert.Equal(t, "boot ok", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, "segments=3", entries[1].Message)
	assert.Equal(t, "payload", entries[2].LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestCategoryFilter(t *testing.T) {
	logs := observe(t, config.LoggingConfig{
		DebugMode:  true,
		Categories: map[string]bool{"watch": false, "batch": true},
	})

	Watch("hidden")
	Batch("shown")
	RenderDebug("unlisted categories default to on")

	assert.False(t, IsCategoryEnabled(CategoryWatch))
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "batch", logs.All()[0].LoggerName)
	assert.Equal(t, "render", logs.All()[1].LoggerName)
}

func TestHelpersUseTheirCategory(t *testing.T) {
	logs := observe(t, config.LoggingConfig{DebugMode: true})

	BootDebug("a")
	Payload("b")
	PayloadDebug("c")
	BatchDebug("d")
	BatchWarn("e")
	WatchDebug("f")
	CLI("g")
	CLIDebug("h")

	var names []string
	for _, e := range logs.All() {
		names = append(names, e.LoggerName+":"+e.Level.String()+":"+e.Message)
	}
	assert.Equal(t, []string{
		"boot:debug:a",
		"payload:info:b",
		"payload:debug:c",
		"batch:debug:d",
		"batch:warn:e",
		"watch:debug:f",
		"cli:info:g",
		"cli:debug:h",
	}, names)
}

func TestGetCachesLoggers(t *testing.T) {
	observe(t, config.LoggingConfig{DebugMode: true})
	assert.Same(t, Get(CategoryCLI), Get(CategoryCLI))
}

func TestConcurrentGet(t *testing.T) {
	logs := observe(t, config.LoggingConfig{DebugMode: true})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Get(CategoryBatch).Info("worker %d", i)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, logs.Len())
}

func TestTimer(t *testing.T) {
	logs := observe(t, config.LoggingConfig{DebugMode: true})

	timer := StartTimer(CategoryRender, "highlight")
	elapsed := timer.StopWithThreshold(time.Hour)
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))

	slow := &Timer{category: CategoryRender, op: "summary", start: time.Now().Add(-time.Second)}
	slow.StopWithThreshold(time.Millisecond)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Contains(t, entries[1].Message, "summary took")
}

func TestInitializeWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proofmark.log")
	require.NoError(t, Initialize(config.LoggingConfig{
		DebugMode: true,
		Level:     "debug",
		Format:    "json",
		File:      path,
	}))
	t.Cleanup(func() { InitializeWithLogger(nil, config.LoggingConfig{}) })

	CLIDebug("command %s", "parse")
	CloseAll()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"logger":"cli"`)
	assert.Contains(t, content, "command parse")
	assert.True(t, strings.Contains(content, "logging initialized"))
}

func TestInitializeRejectsLevel(t *testing.T) {
	err := Initialize(config.LoggingConfig{DebugMode: true, Level: "shouty"})
	assert.Error(t, err)
}

func TestInitializeDisabled(t *testing.T) {
	require.NoError(t, Initialize(config.LoggingConfig{Level: "debug"}))
	assert.False(t, IsCategoryEnabled(CategoryBoot))
}
