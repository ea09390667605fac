package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword_ProducesVerifiableHash(t *testing.T) {
	t.Parallel()

	h, err := Password("admin123")
	require.NoError(t, err)
	require.NotEmpty(t, h)

	assert.True(t, strings.HasPrefix(h, "$2"), "expected a bcrypt hash, got %q", h)
	assert.NotContains(t, h, "admin123")
	assert.True(t, Check(h, "admin123"))
	assert.False(t, Check(h, "admin124"))
}

func TestPassword_SaltsEveryHash(t *testing.T) {
	t.Parallel()

	h1, err := Password("secret")
	require.NoError(t, err)
	h2, err := Password("secret")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, Check(h1, "secret"))
	assert.True(t, Check(h2, "secret"))
}

func TestCheck_RejectsGarbageHash(t *testing.T) {
	t.Parallel()

	assert.False(t, Check("not-a-hash", "secret"))
	assert.False(t, Check("", "secret"))
}
