package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(Te *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"":        zapcore.InfoLevel,
		"info":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, ok := ParseLevel(in)
		assert.True(Te, ok, in)
		assert.Equal(Te, want, got, in)
	}
	got, ok := ParseLevel("verbose")
	assert.False(Te, ok)
	assert.Equal(Te, zapcore.InfoLevel, got)
}

func TestNewJSONToFile(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "run.log")
	l, err := New(Config{Level: "debug", Format: FormatJSON, OutputPaths: []string{path}})
	require.NoError(Te, err)
	l.Debug("encoded molecule")
	require.NoError(Te, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(Te, err)
	assert.Contains(Te, string(data), `"msg":"encoded molecule"`)
	assert.Contains(Te, string(data), `"ts":`)
}

func TestNewLevelFilters(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "run.log")
	l, err := New(Config{Level: "warn", Format: FormatJSON, OutputPaths: []string{path}})
	require.NoError(Te, err)
	l.Info("hidden")
	l.Warn("shown")
	require.NoError(Te, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(Te, err)
	assert.NotContains(Te, string(data), "hidden")
	assert.Contains(Te, string(data), "shown")
}

func TestNewDefaultsAndErrors(Te *testing.T) {
	l, err := New(Config{})
	require.NoError(Te, err)
	assert.NotNil(Te, l)

	_, err = New(Config{Level: "loud"})
	assert.Error(Te, err)
	_, err = New(Config{Format: "xml"})
	assert.Error(Te, err)
}

func TestOrNop(Te *testing.T) {
	assert.NotNil(Te, OrNop(nil))
	l, err := New(Config{})
	require.NoError(Te, err)
	assert.Same(Te, l, OrNop(l))
}
