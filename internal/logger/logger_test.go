package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDefaultLoggerIsUsableWithoutInit(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("not initialized", zap.String("k", "v"))
		Named("component").Debug("still fine")
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "viewer.log")

	cfg := DefaultFileConfig(logFile)
	cfg.Compress = false
	require.NoError(t, InitWithFileConfig("debug", cfg, false))
	t.Cleanup(func() {
		Log = zap.NewNop()
		Sugar = Log.Sugar()
	})

	Named("loader").Info("model loaded", zap.String("path", "box.gltf"), zap.Int("entities", 3))
	Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	line := string(data)
	assert.True(t, strings.Contains(line, `"msg":"model loaded"`), line)
	assert.True(t, strings.Contains(line, `"logger":"loader"`), line)
	assert.True(t, strings.Contains(line, `"entities":3`), line)
}

func TestLevelFiltering(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "filtered.log")

	require.NoError(t, InitWithFileConfig("warn", FileConfig{Path: logFile, MaxSizeMB: 1}, false))
	t.Cleanup(func() {
		Log = zap.NewNop()
		Sugar = Log.Sugar()
	})

	Info("dropped")
	Warn("kept")
	Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}
