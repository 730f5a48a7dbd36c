package solana

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	bin "github.com/gagliardetto/binary"
	sgo "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransaction_AccountOrdering(t *testing.T) {
	keys := generateKeys(t, 5)
	payer, program, writable, readonly, signer := keys[0], keys[1], keys[2], keys[3], keys[4]

	txn := NewTransaction(
		payer,
		NewInstruction(
			program,
			[]byte{1, 2, 3},
			NewReadonlyAccountMeta(readonly, false),
			NewAccountMeta(writable, false),
			NewReadonlyAccountMeta(signer, true),
			NewReadonlyAccountMeta(payer, true),
		),
	)

	m := txn.Message
	assert.Equal(t, []ed25519.PublicKey{payer, signer, writable, readonly, program}, m.Accounts)
	assert.Equal(t, Header{NumSignatures: 2, NumReadonlySigned: 1, NumReadOnly: 2}, m.Header)
	assert.Len(t, txn.Signatures, 2)

	require.Len(t, m.Instructions, 1)
	assert.EqualValues(t, 4, m.Instructions[0].ProgramIndex)
	assert.Equal(t, []byte{3, 2, 1, 0}, m.Instructions[0].Accounts)
	assert.Equal(t, []byte{1, 2, 3}, m.Instructions[0].Data)
}

func TestNewTransaction_Empty(t *testing.T) {
	payer := generateKeys(t, 1)[0]

	txn := NewTransaction(payer)
	assert.Equal(t, []ed25519.PublicKey{payer}, txn.Message.Accounts)
	assert.Equal(t, Header{NumSignatures: 1}, txn.Message.Header)
	assert.Empty(t, txn.Message.Instructions)
	assert.Len(t, txn.Signatures, 1)
}

func TestTransaction_Sign(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	_, other, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	keys := generateKeys(t, 2)
	txn := NewTransaction(pub, NewInstruction(keys[0], []byte{0}, NewAccountMeta(keys[1], false)))
	txn.SetBlockhash(Blockhash{1, 2, 3})

	require.NoError(t, txn.Sign(priv))
	assert.NotEqual(t, Signature{}, txn.Signature())
	assert.True(t, txn.VerifySignature(pub, txn.Signature()))

	assert.Error(t, txn.Sign(other))

	// Changing the blockhash invalidates signatures.
	txn.SetBlockhash(Blockhash{4, 5, 6})
	assert.Equal(t, Signature{}, txn.Signature())

	require.Error(t, txn.AddSignature(keys[1], Signature{1}))
}

func TestTransaction_MarshalRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	keys := generateKeys(t, 3)

	txn := NewTransaction(
		pub,
		NewInstruction(keys[0], []byte{9, 9}, NewAccountMeta(keys[1], false)),
		NewInstruction(keys[2], make([]byte, 200), NewAccountMeta(keys[1], false), NewReadonlyAccountMeta(pub, true)),
	)
	txn.SetBlockhash(Blockhash{7})
	require.NoError(t, txn.Sign(priv))

	var decoded Transaction
	require.NoError(t, decoded.Unmarshal(txn.Marshal()))
	assert.Equal(t, txn, decoded)
	assert.True(t, decoded.VerifySignature(pub, decoded.Signature()))
}

func TestTransaction_WireFormat(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	keys := generateKeys(t, 2)

	bh := Blockhash{1, 2, 3, 4}
	txn := NewTransaction(
		pub,
		NewInstruction(keys[0], []byte{0, 1, 2}, NewAccountMeta(keys[1], false), NewReadonlyAccountMeta(pub, true)),
	)
	txn.SetBlockhash(bh)
	require.NoError(t, txn.Sign(priv))

	parsed, err := sgo.TransactionFromDecoder(bin.NewBinDecoder(txn.Marshal()))
	require.NoError(t, err)

	assert.EqualValues(t, 1, parsed.Message.Header.NumRequiredSignatures)
	assert.EqualValues(t, 0, parsed.Message.Header.NumReadonlySignedAccounts)
	assert.EqualValues(t, 1, parsed.Message.Header.NumReadonlyUnsignedAccounts)
	require.Len(t, parsed.Message.AccountKeys, 3)
	assert.EqualValues(t, pub, parsed.Message.AccountKeys[0][:])
	assert.EqualValues(t, keys[1], parsed.Message.AccountKeys[1][:])
	assert.EqualValues(t, keys[0], parsed.Message.AccountKeys[2][:])
	assert.EqualValues(t, bh[:], parsed.Message.RecentBlockhash[:])

	require.Len(t, parsed.Signatures, 1)
	assert.EqualValues(t, txn.Signatures[0][:], parsed.Signatures[0][:])

	require.Len(t, parsed.Message.Instructions, 1)
	assert.EqualValues(t, 2, parsed.Message.Instructions[0].ProgramIDIndex)
	assert.EqualValues(t, []byte{0, 1, 2}, []byte(parsed.Message.Instructions[0].Data))
}

func TestTransaction_UnmarshalInvalid(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	keys := generateKeys(t, 2)

	txn := NewTransaction(pub, NewInstruction(keys[0], []byte{1}, NewAccountMeta(keys[1], false)))
	require.NoError(t, txn.Sign(priv))
	raw := txn.Marshal()

	var decoded Transaction
	for _, b := range [][]byte{
		nil,
		raw[:1],
		raw[:64],
		raw[:len(raw)-1],
		append(append([]byte{}, raw...), 0),
	} {
		assert.Error(t, decoded.Unmarshal(b))
	}
}

func TestShortVec(t *testing.T) {
	for _, tc := range []struct {
		n       int
		encoded []byte
	}{
		{0, []byte{0x00}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{0xffff, []byte{0xff, 0xff, 0x03}},
	} {
		assert.Equal(t, tc.encoded, appendShortVecLength(nil, tc.n))

		n, size, err := readShortVecLength(tc.encoded)
		require.NoError(t, err)
		assert.Equal(t, tc.n, n)
		assert.Equal(t, len(tc.encoded), size)
	}

	_, _, err := readShortVecLength([]byte{0x80})
	assert.Error(t, err)
	_, _, err = readShortVecLength([]byte{0x80, 0x80, 0x80, 0x01})
	assert.Error(t, err)
}
