package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("默认配置", func(t *testing.T) {
		l, err := New(Config{})
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("非法级别", func(t *testing.T) {
		_, err := New(Config{Level: "verbose"})
		assert.Error(t, err)
	})
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core).With(zap.String("request_id", "req-1"))

	ctx := WithContext(context.Background(), l)
	FromContext(ctx).Info("checkout")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "checkout", entry.Message)
	assert.Equal(t, "req-1", entry.ContextMap()["request_id"])

	// 没有Logger时退回全局Logger
	assert.NotNil(t, FromContext(context.Background()))
}
