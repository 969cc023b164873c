package digest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfIsDeterministic(t *testing.T) {
	a, err := Of("# Base\nDo X.")
	require.NoError(t, err)
	b, err := Of("# Base\nDo X.")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "bafkrei"), "raw sha2-256 CIDv1 in base32: %s", a)
}

func TestOfDiffersForDifferentText(t *testing.T) {
	a, err := Of("# Base\nDo X.")
	require.NoError(t, err)
	b, err := Of("# Base\nDo Y.")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify(t *testing.T) {
	id, err := Of("hello")
	require.NoError(t, err)

	ok, err := Verify("hello", id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("goodbye", id)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Verify("hello", "not-a-cid")
	assert.Error(t, err)
}
