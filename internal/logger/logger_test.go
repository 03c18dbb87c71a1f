package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetWithoutInitReturnsNop(t *testing.T) {
	Set(nil)
	assert.NotPanics(t, func() { Get().Info("ignored") })
}

func TestWithContextAddsIDs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	ctx := WithTraceID(context.Background(), "trace-1")
	ctx = WithRequestID(ctx, "req-1")
	WithContext(ctx, nil).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "trace-1", fields["trace_id"])
	assert.Equal(t, "req-1", fields["request_id"])
}

func TestWithContextUsesGivenBase(t *testing.T) {
	Set(nil)
	core, logs := observer.New(zap.InfoLevel)

	WithContext(WithRequestID(context.Background(), "req-2"), zap.New(core)).Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-2", logs.All()[0].ContextMap()["request_id"])
	assert.NotContains(t, logs.All()[0].ContextMap(), "trace_id")
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock.log")
	require.NoError(t, Init("debug", "json", path))
	t.Cleanup(func() { Set(nil) })

	Info("written", zap.String("k", "v"))
	_ = Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written"`)
}
