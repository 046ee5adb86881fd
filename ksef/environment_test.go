package ksef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentBaseURL(t *testing.T) {
	assert.Equal(t, "https://api-test.ksef.mf.gov.pl/v2", Test.BaseURL())
	assert.Equal(t, "https://api-demo.ksef.mf.gov.pl/v2", Demo.BaseURL())
	assert.Equal(t, "https://api.ksef.mf.gov.pl/v2", Prod.BaseURL())
}

func TestEnvironmentUnmarshalText(t *testing.T) {
	tests := []struct {
		in       string
		expected Environment
	}{
		{"test", Test},
		{"demo", Demo},
		{"prod", Prod},
		{" PROD ", Prod},
		{"Test", Test},
	}

	for _, tc := range tests {
		var e Environment
		require.NoError(t, e.UnmarshalText([]byte(tc.in)))
		assert.Equal(t, tc.expected, e, "input %q", tc.in)
	}
}

func TestEnvironmentUnmarshalText_Invalid(t *testing.T) {
	var e Environment
	assert.Error(t, e.UnmarshalText([]byte("staging")))
}

func TestEnvironmentName(t *testing.T) {
	assert.Equal(t, "test", Test.Name())
	assert.Equal(t, "demo", Demo.Name())
	assert.Equal(t, "prod", Prod.Name())
}
