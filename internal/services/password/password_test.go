package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testParams keeps scrypt cheap so the suite stays fast
func testParams() Params {
	return Params{N: 1 << 4, R: 8, P: 1, SaltLen: 16, KeyLen: 32}
}

func TestHashAndVerify(t *testing.T) {
	v := New(testParams())

	hash, salt, err := v.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	assert.True(t, v.Verify("correct horse battery staple", hash, salt))
	assert.False(t, v.Verify("wrong password", hash, salt))
}

func TestHashDoesNotContainPlaintext(t *testing.T) {
	v := New(testParams())

	hash, salt, err := v.Hash("supersecret")
	require.NoError(t, err)
	assert.NotContains(t, string(hash), "supersecret")
	assert.NotContains(t, string(salt), "supersecret")
}

func TestSaltIsPerHash(t *testing.T) {
	v := New(testParams())

	_, salt1, err := v.Hash("same password")
	require.NoError(t, err)
	_, salt2, err := v.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2, "each hash must use a fresh salt")
}

func TestVerifyRejectsEmptyMaterial(t *testing.T) {
	v := New(testParams())

	assert.False(t, v.Verify("anything", nil, nil))
	assert.False(t, v.Verify("anything", []byte{0x01}, nil))
	assert.False(t, v.Verify("anything", nil, []byte{0x01}))
}

func TestVerifyWithForeignSaltFails(t *testing.T) {
	v := New(testParams())

	hash, _, err := v.Hash("password")
	require.NoError(t, err)
	_, otherSalt, err := v.Hash("password")
	require.NoError(t, err)

	assert.False(t, v.Verify("password", hash, otherSalt))
}

func TestZeroParamsFallBackToDefaults(t *testing.T) {
	v := New(Params{})
	assert.Equal(t, DefaultParams(), v.params)
}
