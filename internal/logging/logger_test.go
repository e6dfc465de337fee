package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" Warning "))
	assert.Equal(t, INFO, ParseLevel("что-то"))
}

func TestWriterLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("test", &buf, WARN)

	l.Info("не должно попасть")
	l.Warn("регион %s удалён", "spawn")

	out := buf.String()
	assert.NotContains(t, out, "не должно попасть")
	assert.Contains(t, out, "[WARN] [test] регион spawn удалён")
}

func TestNewLogger_WritesFile(t *testing.T) {
	dir := t.TempDir()
	SetLogDir(dir)
	defer SetLogDir("logs")

	l, err := NewLogger("engine")
	require.NoError(t, err)
	l.Debug("debug в файл")
	require.NoError(t, l.Close())

	files, err := filepath.Glob(filepath.Join(dir, "engine_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug в файл")
}

func TestPackageLevel_NoDefaultLogger(t *testing.T) {
	CloseDefaultLogger()
	// Без инициализированного логгера вызовы не паникуют
	Info("тихо")
}

func TestLoggerManager_SharedLevelAndClose(t *testing.T) {
	dir := t.TempDir()
	SetLogDir(dir)
	defer SetLogDir("logs")

	lm := newLoggerManager()
	lm.SetConsoleLevel(ERROR)

	api, err := lm.GetLogger("api")
	require.NoError(t, err)
	again, err := lm.GetLogger("api")
	require.NoError(t, err)
	assert.Same(t, api, again)

	_, err = lm.GetLogger("engine")
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "engine"}, lm.Components())

	lm.SetConsoleLevel(DEBUG)
	api.mu.Lock()
	level := api.minConsoleLevel
	api.mu.Unlock()
	assert.Equal(t, DEBUG, level)

	require.NoError(t, lm.CloseAll())
	assert.Empty(t, lm.Components())

	files, err := filepath.Glob(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
