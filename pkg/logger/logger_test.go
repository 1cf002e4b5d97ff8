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
	t.Run("defaults", func(t *testing.T) {
		l, err := New(Config{})
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("invalid level", func(t *testing.T) {
		l, err := New(Config{Level: "loud"})
		assert.Error(t, err)
		assert.Nil(t, l)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("console development", func(t *testing.T) {
		l, err := New(Config{Level: "debug", Encoding: "console", Development: true})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zap.DebugLevel))
	})
}

func TestWithContext(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := Get()
	Set(zap.New(core))
	defer Set(prev)

	ctx := context.WithValue(context.Background(), SceneKey, "arena")
	ctx = context.WithValue(ctx, FrameKey, 42)

	WithContext(ctx).Info("frame done")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "arena", fields["scene"])
	assert.EqualValues(t, 42, fields["frame"])
}
