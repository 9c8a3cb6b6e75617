package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() { InfoLogger, FatalLogger = nil, nil })

	assert.NotNil(t, L())
	assert.Panics(t, func() { Info("x") })

	_, err := Init("verbose")
	assert.Error(t, err)

	l, err := Init("warn")
	require.NoError(t, err)
	assert.Same(t, l, L())
	assert.NotPanics(t, func() { Info("ready: %d markets", 2) })
}
