// Package testutil provides testing utilities for prefabpool
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/prefabpool/pkg/pool"
	"github.com/ajitpratap0/prefabpool/pkg/scene"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout that is
// cancelled when the test completes.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// AssertEventually asserts that a condition becomes true within the specified timeout.
// It checks the condition every 10ms until it succeeds or the timeout expires.
func AssertEventually(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

// NewSceneRegistry builds a scene and a registry hosted by it, both
// logging to the test output. Extra options are applied after the logger.
func NewSceneRegistry(t *testing.T, name string, opts ...pool.Option) (*scene.Scene, *pool.Registry) {
	t.Helper()

	sc := scene.New(name)
	reg, err := pool.NewRegistry(sc, append([]pool.Option{pool.WithLogger(TestLogger(t))}, opts...)...)
	require.NoError(t, err)
	return sc, reg
}

// RegisterTemplate registers a behaviour-less scene template under name.
func RegisterTemplate(t *testing.T, reg *pool.Registry, name string) *pool.Prefab {
	t.Helper()

	p, err := reg.RegisterPrefab(name, &scene.Template{Name: name})
	require.NoError(t, err)
	return p
}
