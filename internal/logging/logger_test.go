package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComponentAttribute(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Format: "json", Component: "api", Output: &buf})
	l.Info("request done", "status", 200)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "api", rec["component"])
	require.Equal(t, "request done", rec["msg"])
	require.EqualValues(t, 200, rec["status"])
}

func TestWithComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf}).WithComponent("tui")
	l.Info("hidden")
	l.Warn("shown", "view", "accounts")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "component=tui")
	require.Contains(t, out, "view=accounts")
	require.Equal(t, "tui", l.Component())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	l, closer, err := OpenFile(path, "info", "text")
	require.NoError(t, err)
	l.Info("first")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "msg=first"))
}
