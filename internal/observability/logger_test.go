// internal/observability/logger_test.go
package observability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/terrier-cli/internal/config"
)

// memSink is an in-memory WriteSyncer so tests never touch real stdout.
type memSink struct {
	strings.Builder
}

func (*memSink) Sync() error { return nil }

func TestInitialize(t *testing.T) {
	t.Run("console format with colors", func(t *testing.T) {
		ResetForTest()
		sink := &memSink{}

		Initialize(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "test-service",
			Colors:      config.ColorConfig{Info: "green"},
		}, zapcore.AddSync(sink))

		GetLogger().Info("console message")

		output := sink.String()
		assert.Contains(t, output, "INFO")
		assert.Contains(t, output, "console message")
		assert.Contains(t, output, colorGreen)
		assert.Contains(t, output, colorReset)
		assert.Contains(t, output, "test-service.")
	})

	t.Run("json format", func(t *testing.T) {
		ResetForTest()
		sink := &memSink{}

		Initialize(config.LoggerConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "test-service",
		}, zapcore.AddSync(sink))

		GetLogger().Info("structured message")

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(sink.String())), &entry))
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "structured message", entry["msg"])
	})

	t.Run("level filtering", func(t *testing.T) {
		ResetForTest()
		sink := &memSink{}

		Initialize(config.LoggerConfig{
			Level:       "warn",
			Format:      "json",
			ServiceName: "test-service",
		}, zapcore.AddSync(sink))

		GetLogger().Info("should be filtered")
		GetLogger().Warn("should appear")

		output := sink.String()
		assert.NotContains(t, output, "should be filtered")
		assert.Contains(t, output, "should appear")
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		ResetForTest()
		sink := &memSink{}

		Initialize(config.LoggerConfig{
			Level:       "chatty",
			Format:      "json",
			ServiceName: "test-service",
		}, zapcore.AddSync(sink))

		GetLogger().Debug("debug hidden")
		GetLogger().Info("info shown")

		output := sink.String()
		assert.NotContains(t, output, "debug hidden")
		assert.Contains(t, output, "info shown")
	})

	t.Run("initialization happens once", func(t *testing.T) {
		ResetForTest()
		first := &memSink{}
		second := &memSink{}

		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "one"}, zapcore.AddSync(first))
		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "two"}, zapcore.AddSync(second))

		GetLogger().Info("routed to first")

		assert.Contains(t, first.String(), "routed to first")
		assert.Empty(t, second.String())
	})

	t.Run("file core writes json", func(t *testing.T) {
		ResetForTest()
		logFile := filepath.Join(t.TempDir(), "app.log")

		Initialize(config.LoggerConfig{
			Level:       "info",
			Format:      "console",
			ServiceName: "test-service",
			LogFile:     logFile,
			MaxSize:     1,
		}, zapcore.AddSync(&memSink{}))

		GetLogger().Info("file message")
		Sync()

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"file message"`)
	})
}

func TestGetLogger_FallbackBeforeInit(t *testing.T) {
	ResetForTest()
	logger := GetLogger()
	require.NotNil(t, logger)
}
