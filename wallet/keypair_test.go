package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinecosystem/agora-crowdfund/solana"
	"github.com/kinecosystem/agora-crowdfund/solana/system"
	_ "github.com/kinecosystem/agora-crowdfund/testutil"
)

func TestParseKeypair(t *testing.T) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	ints := make([]int, len(key))
	for i := range key {
		ints[i] = int(key[i])
	}
	jsonKey, err := json.Marshal(ints)
	require.NoError(t, err)

	for _, encoded := range [][]byte{
		jsonKey,
		append(jsonKey, '\n'),
		[]byte(base58.Encode(key)),
	} {
		k, err := ParseKeypair(encoded)
		require.NoError(t, err)
		assert.Equal(t, key, k.PrivateKey())
		assert.Equal(t, key.Public(), k.PublicKey())
	}
}

func TestParseKeypair_Invalid(t *testing.T) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	mismatched := make([]byte, len(key))
	copy(mismatched, key)
	mismatched[63] ^= 0xff

	for _, encoded := range [][]byte{
		nil,
		[]byte("  "),
		[]byte("[1, 2, 3"),
		[]byte("[1, 2, 300]"),
		[]byte("[1, 2, 3]"),
		[]byte("0OIl"),
		[]byte(base58.Encode(key[:32])),
		[]byte(base58.Encode(mismatched)),
	} {
		_, err := ParseKeypair(encoded)
		assert.Error(t, err, string(encoded))
	}
}

func TestKeypair_SignTransaction(t *testing.T) {
	k, err := GenerateKeypair()
	require.NoError(t, err)
	assert.True(t, k.Connected())
	assert.NoError(t, k.Connect(context.Background()))

	other, err := GenerateKeypair()
	require.NoError(t, err)

	txn := solana.NewTransaction(k.PublicKey(), system.Transfer(k.PublicKey(), other.PublicKey(), 10))
	txn.SetBlockhash(solana.Blockhash{1, 2, 3})

	signed, err := k.SignTransaction(context.Background(), txn)
	require.NoError(t, err)
	assert.True(t, signed.VerifySignature(k.PublicKey(), signed.Signature()))

	// The input is left untouched.
	assert.Equal(t, solana.Signature{}, txn.Signatures[0])

	// Keys that aren't part of the transaction can't sign it.
	_, err = other.SignTransaction(context.Background(), txn)
	assert.Error(t, err)
}
