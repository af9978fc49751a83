package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Regexp(t, `^[0-9]{6}$`, code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}

func TestCalculateHash(t *testing.T) {
	h1 := CalculateHash("key", "a@x.com", "123456")
	h2 := CalculateHash("key", "a@x.com", "123456")
	h3 := CalculateHash("other", "a@x.com", "123456")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.True(t, HashEqual(h1, h2))
	assert.False(t, HashEqual(h1, h3))
	assert.Empty(t, CalculateHash("key"))
}

func TestGenerateSecret(t *testing.T) {
	s, err := GenerateSecret(32)
	require.NoError(t, err)
	assert.Len(t, s, 32)
}
