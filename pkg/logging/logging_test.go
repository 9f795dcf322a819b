package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogLevelSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelDebug.SlogLevel())
	assert.Equal(t, slog.LevelError, LevelError.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogLevel(42).SlogLevel())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestInitForCLIFiltersAndTagsSubsystem(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)
	t.Cleanup(func() { defaultLogger = nil })

	Debug("Connection", "hidden %d", 1)
	Info("Connection", "resolved %s", "cluster")
	Error("Outbound", errors.New("boom"), "request failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "resolved cluster")
	assert.Contains(t, out, "subsystem=Connection")
	assert.Contains(t, out, "subsystem=Outbound")
	assert.Contains(t, out, "error=boom")
}

func TestInitForJSON(t *testing.T) {
	var buf bytes.Buffer
	InitForJSON(LevelDebug, &buf)
	t.Cleanup(func() { defaultLogger = nil })

	Debug("MCP", "tool %s called", "kube_api_request")

	assert.Contains(t, buf.String(), `"subsystem":"MCP"`)
	assert.Contains(t, buf.String(), `"msg":"tool kube_api_request called"`)
}
