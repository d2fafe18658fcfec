package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestInitFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Config{Level: "WARN", Format: "text", Output: &buf}))
	defer Init(Config{Level: "INFO", Output: &bytes.Buffer{}})

	ctx := context.Background()
	Info(ctx, "hidden message")
	Warn(ctx, "sheet skipped", "sheet", "Q1")
	ErrorWithErr(ctx, "load failed", errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "sheet skipped")
	assert.Contains(t, out, "sheet=Q1")
	assert.Contains(t, out, "error=boom")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Config{Level: "DEBUG", Format: "json", Output: &buf}))
	defer Init(Config{Level: "INFO", Output: &bytes.Buffer{}})

	Debug(context.Background(), "profiled", "columns", 3)
	assert.Contains(t, buf.String(), `"msg":"profiled"`)
	assert.Contains(t, buf.String(), `"columns":3`)
}

func TestStartSpanWithoutTracing(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()

	assert.NotNil(t, ctx)
	assert.NoError(t, Shutdown(context.Background()))
}
