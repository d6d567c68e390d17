package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword("correct horse", hash))
	assert.False(t, CheckPassword("wrong horse", hash))
}

func TestRandomIntInRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		n, err := RandomIntInRange(100000, 999999)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(100000))
		assert.LessOrEqual(t, n, int64(999999))
	}

	_, err := RandomIntInRange(5, 1)
	assert.Error(t, err)
}

func TestHashSecret_Deterministic(t *testing.T) {
	assert.Equal(t, HashSecret("482913"), HashSecret("482913"))
	assert.NotEqual(t, HashSecret("482913"), HashSecret("482914"))
	assert.Len(t, HashSecret("x"), 64)
}
