package tracing

import (
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracerDisabled(t *testing.T) {
	tr, closer, err := InitTracer(Config{})
	require.NoError(t, err)
	assert.IsType(t, opentracing.NoopTracer{}, tr)
	assert.NotPanics(t, closer)
}

func TestSetServiceName(t *testing.T) {
	old := SetServiceName("llama_lend")
	t.Cleanup(func() { SetServiceName(old) })
	assert.Equal(t, "llama_lend", serviceName)
}
