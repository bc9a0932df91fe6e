package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	assert.True(t, Verify("s3cret", encoded))
	assert.False(t, Verify("wrong", encoded))
	assert.False(t, Verify("", encoded))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("s3cret")
	require.NoError(t, err)
	second, err := Hash("s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, Verify("s3cret", first))
	assert.True(t, Verify("s3cret", second))
}

func TestVerifyRejectsMalformedEncodings(t *testing.T) {
	cases := []string{
		"",
		"plain",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!$aGFzaA",
	}
	for _, encoded := range cases {
		assert.False(t, Verify("s3cret", encoded), "encoding %q", encoded)
	}
}
