package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoolEnv(t *testing.T) {
	t.Setenv("KSEF_DEBUG", "false")
	assert.False(t, DebugEnabled())

	t.Setenv("KSEF_DEBUG", "true")
	assert.True(t, DebugEnabled())

	t.Setenv("KSEF_DEBUG", "0")
	assert.False(t, DebugEnabled())

	t.Setenv("KSEF_DEBUG", "nonsense")
	assert.False(t, DebugEnabled())

	t.Setenv("KSEF_HTTP_TRACE", "1")
	assert.True(t, HttpTraceEnabled())
}

func TestGetEnvOr(t *testing.T) {
	assert.Equal(t, "default", GetEnvOr("KSEF_TEST_MISSING", "default"))

	t.Setenv("KSEF_TEST_MISSING", "")
	assert.Equal(t, "default", GetEnvOr("KSEF_TEST_MISSING", "default"))

	t.Setenv("KSEF_TEST_MISSING", "value")
	assert.Equal(t, "value", GetEnvOr("KSEF_TEST_MISSING", "default"))
}
