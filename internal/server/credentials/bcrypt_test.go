package credentials

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	cred, err := h.Hash("Password123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Password123!", cred)
	assert.True(t, strings.HasPrefix(cred, "$2a$"))

	assert.True(t, h.Verify("Password123!", cred))
	assert.False(t, h.Verify("password123!", cred))
	assert.False(t, h.Verify("", cred))
}

func TestHash_Salted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify_MalformedCredential(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, cred := range []string{"", "plaintext", "$2a$", "$2a$04$short"} {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("anything", cred), cred)
		})
	}
}

func TestHash_TooLong(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.Error(t, err)
}

func TestVerify_LongerThanLimitNeverMatches(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	pw := strings.Repeat("Aa1!", MaxPasswordBytes/4)
	require.Len(t, pw, MaxPasswordBytes)

	cred, err := h.Hash(pw)
	require.NoError(t, err)

	assert.True(t, h.Verify(pw, cred))
	assert.False(t, h.Verify(pw+"x", cred))
	assert.False(t, h.Verify(pw+"anything at all", cred))
}

func TestNewHasher_CostBounds(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, NewHasher(12).cost)
}

func TestVerifyDummy(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	assert.NotPanics(t, func() {
		h.VerifyDummy("whatever")
		h.VerifyDummy("again")
	})
	assert.NotEmpty(t, h.dummy)
}
