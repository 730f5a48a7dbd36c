package solana

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"

	sgo "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWithSeed(t *testing.T) {
	keys := generateKeys(t, 2)

	for _, seed := range []string{"", "abcdef", "abcdef0.5390173511985897", strings.Repeat("x", MaxSeedLength)} {
		addr, err := CreateWithSeed(keys[0], seed, keys[1])
		require.NoError(t, err)
		assert.Len(t, addr, ed25519.PublicKeySize)

		again, err := CreateWithSeed(keys[0], seed, keys[1])
		require.NoError(t, err)
		assert.Equal(t, addr, again)

		expected, err := sgo.CreateWithSeed(sgo.PublicKeyFromBytes(keys[0]), seed, sgo.PublicKeyFromBytes(keys[1]))
		require.NoError(t, err)
		assert.EqualValues(t, expected[:], []byte(addr))
	}

	a, err := CreateWithSeed(keys[0], "abcdef1", keys[1])
	require.NoError(t, err)
	b, err := CreateWithSeed(keys[0], "abcdef2", keys[1])
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	_, err = CreateWithSeed(keys[0], strings.Repeat("x", MaxSeedLength+1), keys[1])
	assert.Equal(t, ErrMaxSeedLengthExceeded, err)

	_, err = CreateWithSeed(keys[0][:10], "abcdef", keys[1])
	assert.Error(t, err)
}

func TestParsePublicKey(t *testing.T) {
	key, err := ParsePublicKey("DtVe5Jab8MmDtAbyi3XzVsg9mc4NKwJ1AFybq5Xd8U2a")
	require.NoError(t, err)
	assert.Len(t, key, ed25519.PublicKeySize)

	system, err := ParsePublicKey("11111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, make(ed25519.PublicKey, ed25519.PublicKeySize), system)

	_, err = ParsePublicKey("not-base58-0OIl")
	assert.Error(t, err)

	_, err = ParsePublicKey("abc")
	assert.Error(t, err)

	assert.Panics(t, func() { MustParsePublicKey("abc") })
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		keys[i] = pub
	}

	return keys
}
