package agent

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStdLoggerHonorsMinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdLogger(LogLevelWarn, &buf)

	logger.Debug(context.Background(), "quiet")
	logger.Info(context.Background(), "quiet too")
	logger.Warn(context.Background(), "loud")

	out := buf.String()
	require.NotContains(t, out, "quiet")
	require.Contains(t, out, "loud")
	require.Contains(t, out, "[WARN]")
}

func TestStdLoggerIncludesFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdLogger(LogLevelDebug, &buf)

	logger.Error(context.Background(), "boom", errors.New("cause"), Field("tool", "apply_patch"))

	out := buf.String()
	require.Contains(t, out, `[error="cause"]`)
	require.Contains(t, out, "tool=apply_patch")
}

func TestStdLoggerCarriesTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdLogger(LogLevelDebug, &buf)

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.Info(ctx, "hello")
	require.Contains(t, buf.String(), "trace_id=trace-123")
}

func TestWithFieldsAccumulates(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdLogger(LogLevelDebug, &buf).WithFields(Field("component", "loop"))

	logger.Info(context.Background(), "step", Field("n", 2))
	out := buf.String()
	require.Contains(t, out, "component=loop")
	require.Contains(t, out, "n=2")
}

func TestNewTraceIDUnique(t *testing.T) {
	require.NotEqual(t, NewTraceID(), NewTraceID())
	require.Empty(t, TraceIDFrom(context.Background()))
}
