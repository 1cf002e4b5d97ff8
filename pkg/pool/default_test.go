package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/prefabpool/pkg/errors"
)

func resetDefault(t *testing.T) {
	t.Helper()
	defaultMu.Lock()
	defaultReg = nil
	defaultMu.Unlock()
	t.Cleanup(func() {
		defaultMu.Lock()
		defaultReg = nil
		defaultMu.Unlock()
	})
}

func TestDefaultRegistry_BeforeInit(t *testing.T) {
	resetDefault(t)

	assert.Nil(t, Default())
	_, err := RegisterPrefab("bullet", nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	_, err = Spawn(nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.True(t, errors.IsType(CreatePool(nil, 1), errors.ErrorTypeConfig))
	assert.True(t, errors.IsType(Recycle(nil), errors.ErrorTypeConfig))

	var inst *Instance
	assert.True(t, errors.IsType(inst.Recycle(), errors.ErrorTypeValidation))
}

func TestDefaultRegistry(t *testing.T) {
	resetDefault(t)
	host := &fakeHost{}

	require.NoError(t, Init(host, WithLogger(zaptest.NewLogger(t)), WithRecyclePolicy(PolicyStrict)))
	require.NotNil(t, Default())

	err := Init(host)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))

	bullet, err := RegisterPrefab("bullet", nil)
	require.NoError(t, err)
	require.NoError(t, CreatePool(bullet, 1))

	inst, err := Spawn(bullet)
	require.NoError(t, err)
	require.NoError(t, Recycle(inst))

	again, err := bullet.Spawn()
	require.NoError(t, err)
	assert.Same(t, inst, again)
	assert.Equal(t, 1, host.constructed)

	var nilInst *Instance
	err = nilInst.Recycle()
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation), "nil recycle goes through the strict default registry")
}

func TestInit_NilHost(t *testing.T) {
	resetDefault(t)
	assert.True(t, errors.IsType(Init(nil), errors.ErrorTypeValidation))
	assert.Nil(t, Default())
}
