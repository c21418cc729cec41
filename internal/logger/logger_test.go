package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "info", config.Level)
	assert.Equal(t, "console", config.Format)
	assert.Equal(t, "stdout", config.Output)
	assert.Equal(t, time.RFC3339, config.TimeFormat)
	assert.True(t, config.Caller)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:   "nil config uses default",
			config: nil,
		},
		{
			name: "valid config",
			config: &Config{
				Level:      "debug",
				Format:     "json",
				Output:     "stdout",
				TimeFormat: time.RFC3339,
			},
		},
		{
			name: "async json to stderr",
			config: &Config{
				Level:  "warn",
				Format: "json",
				Output: "stderr",
				Async:  true,
			},
		},
		{
			name: "invalid log level",
			config: &Config{
				Level:  "invalid",
				Format: "console",
				Output: "stdout",
			},
			wantErr: true,
		},
		{
			name: "invalid format",
			config: &Config{
				Level:  "info",
				Format: "invalid",
				Output: "stdout",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			if tt.config == nil {
				assert.Equal(t, "info", logger.config.Level)
			} else {
				assert.Equal(t, tt.config.Level, logger.config.Level)
			}
		})
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

// debugGlobally 其他用例调用 New 会修改全局级别
func debugGlobally(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })
}

func TestLogger_LogLevels(t *testing.T) {
	var buf bytes.Buffer
	debugGlobally(t)

	testLogger := Wrap(zerolog.New(&buf).With().Timestamp().Logger())

	testLogger.Debug("debug message")
	testLogger.Info("info message")
	testLogger.Warn("warn message")
	testLogger.Error("error message")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 4)
	for _, entry := range entries {
		assert.Contains(t, entry, "time")
		assert.Contains(t, entry, "level")
		assert.Contains(t, entry, "message")
	}
	assert.Equal(t, "debug message", entries[0]["message"])
	assert.Equal(t, "error", entries[3]["level"])
}

func TestLogger_ForOperation(t *testing.T) {
	var buf bytes.Buffer
	debugGlobally(t)
	testLogger := Wrap(zerolog.New(&buf))

	opLog := testLogger.ForOperation("PullEVSEData", "track-1")
	opLog.Info().Str(FieldProcessID, "proc-9").Msg("response received")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "PullEVSEData", entries[0][FieldOperation])
	assert.Equal(t, "track-1", entries[0][FieldEventTrackingID])
	assert.Equal(t, "proc-9", entries[0][FieldProcessID])
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	debugGlobally(t)
	testLogger := Wrap(zerolog.New(&buf))

	testLogger.WithField(FieldEVSEID, "DE*GEF*E1").Msg("status cached")
	testLogger.With(map[string]interface{}{FieldSessionID: "s-1"}).Info("cdr stored")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "DE*GEF*E1", entries[0][FieldEVSEID])
	assert.Equal(t, "status cached", entries[0]["message"])
	assert.Equal(t, "s-1", entries[1][FieldSessionID])
}

func TestLogger_SetLevel(t *testing.T) {
	logger, err := New(&Config{Level: "info", Format: "console", Output: "stdout"})
	require.NoError(t, err)

	assert.NoError(t, logger.SetLevel("debug"))
	assert.Equal(t, "debug", logger.GetLevel())

	assert.Error(t, logger.SetLevel("invalid"))
	assert.Equal(t, "debug", logger.GetLevel())
}

func TestLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gateway.log")
	logger, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Info("written to file")
	require.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestGlobalLogger(t *testing.T) {
	originalLogger := globalLogger
	defer func() {
		globalLogger = originalLogger
	}()

	err := InitGlobalLogger(&Config{Level: "debug", Format: "console", Output: "stdout"})
	assert.NoError(t, err)
	assert.NotNil(t, globalLogger)

	// 全局函数不应panic
	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	Debugf("debug %s", "formatted")
	Infof("info %s", "formatted")
	Warnf("warn %s", "formatted")
	Errorf("error %s", "formatted")
	ErrorWithErr(assert.AnError, "with error")
}

func TestLogger_ErrorWithErr(t *testing.T) {
	var buf bytes.Buffer
	testLogger := Wrap(zerolog.New(&buf).With().Timestamp().Logger())

	testLogger.ErrorWithErr(assert.AnError, "operation failed")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "operation failed", entries[0]["message"])
	assert.Equal(t, "error", entries[0]["level"])
	assert.Contains(t, entries[0], "error")
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Info("discarded")
		opLog := Nop().ForOperation("x", "y")
		opLog.Info().Msg("discarded")
	})
}

func TestEnsureDir(t *testing.T) {
	testDir := filepath.Join(t.TempDir(), "nested", "directory")

	assert.NoError(t, ensureDir(testDir))
	info, err := os.Stat(testDir)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.NoError(t, ensureDir(""))
}
