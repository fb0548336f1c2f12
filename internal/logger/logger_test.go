package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_StdJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Backend: BackendStd, Format: "json", Output: &buf})

	log.Debug("hidden")
	log.Info("joined room", "room", "lobby")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "joined room", entry["msg"])
	require.Equal(t, "lobby", entry["room"])
	require.Equal(t, "roomchat", entry["service"])
}

func TestNew_StdText(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Output: &buf, Service: "test"})

	log.Debug("visible")

	require.Contains(t, buf.String(), "msg=visible")
	require.Contains(t, buf.String(), "service=test")
}

func TestNew_Zap(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Backend: BackendZap, Output: &buf})

	log.Info("hidden")
	log.Warn("send buffer full", "conn", "abc")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "send buffer full")
	require.Contains(t, out, `"level":"WARN"`)
}
