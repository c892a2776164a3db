package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestGlobalHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	Debug("hidden")
	Info("evaluated", zap.Int("index", 1))
	Warn("equation failed")
	Error("stream failed")

	require.Equal(t, 3, logs.Len())
	entries := logs.All()
	assert.Equal(t, "evaluated", entries[0].Message)
	assert.Equal(t, int64(1), entries[0].ContextMap()["index"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rpncalc.log")
	l := New(&Config{
		Level:    "debug",
		Format:   "json",
		Output:   "file",
		FilePath: path,
		MaxSize:  1,
	})
	l.Debug("written to file")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), `"level":"debug"`)
}

func TestL_DefaultsWhenUnset(t *testing.T) {
	Set(nil)
	assert.NotNil(t, L())
}
