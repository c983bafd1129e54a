package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRandomCode(t *testing.T) {
	code, err := GetRandomCode(8)
	require.NoError(t, err)
	assert.Len(t, code, 8)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(codeCharset, r), "unexpected rune %q", r)
	}

	other, err := GetRandomCode(8)
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}
