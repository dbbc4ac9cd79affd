package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warn "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}

func TestQuietLoggerWritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	l, err := New(Config{Level: "debug", Dir: dir, Service: "test", Quiet: true})
	require.NoError(t, err)

	l.Info("grouped", "projects", 2)
	l.Debug("details")
	require.NoError(t, l.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "test_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)

	var first map[string]any
	line, _, _ := bytes.Cut(data, []byte("\n"))
	require.NoError(t, json.Unmarshal(line, &first))
	assert.Equal(t, "grouped", first["msg"])
	assert.Equal(t, "test", first["service"])
	assert.EqualValues(t, 2, first["projects"])
}

func TestCloseWithoutFile(t *testing.T) {
	l, err := New(Config{Quiet: true})
	require.NoError(t, err)
	assert.NoError(t, l.Close())

	var nilLogger *Logger
	assert.NoError(t, nilLogger.Close())
}
