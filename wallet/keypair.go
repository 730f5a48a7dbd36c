package wallet

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-crowdfund/solana"
)

// Keypair is a Wallet backed by a private key held in memory. It is always
// connected.
type Keypair struct {
	key ed25519.PrivateKey
}

func NewKeypair(key ed25519.PrivateKey) *Keypair {
	return &Keypair{key: key}
}

// GenerateKeypair returns a Keypair with a new random key.
func GenerateKeypair() (*Keypair, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate key")
	}

	return NewKeypair(key), nil
}

// ParseKeypair parses a private key in either the solana-keygen JSON format
// (an array of 64 bytes) or as a base58 string.
func ParseKeypair(b []byte) (*Keypair, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, errors.New("empty keypair")
	}

	var raw []byte
	if b[0] == '[' {
		var ints []int
		if err := json.Unmarshal(b, &ints); err != nil {
			return nil, errors.Wrap(err, "invalid keypair json")
		}

		raw = make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, errors.Errorf("invalid keypair byte at %d: %d", i, v)
			}
			raw[i] = byte(v)
		}
	} else {
		var err error
		if raw, err = base58.Decode(string(b)); err != nil {
			return nil, errors.Wrap(err, "invalid base58 keypair")
		}
	}

	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("invalid keypair size: %d", len(raw))
	}

	key := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !bytes.Equal(key[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
		return nil, errors.New("keypair public key does not match private key")
	}

	return NewKeypair(key), nil
}

func (k *Keypair) PublicKey() ed25519.PublicKey {
	return k.key.Public().(ed25519.PublicKey)
}

// PrivateKey returns the key used for signing.
func (k *Keypair) PrivateKey() ed25519.PrivateKey {
	return k.key
}

func (k *Keypair) Connected() bool {
	return true
}

func (k *Keypair) Connect(_ context.Context) error {
	return nil
}

func (k *Keypair) SignTransaction(_ context.Context, txn solana.Transaction) (solana.Transaction, error) {
	signed := copyTransaction(txn)
	if err := signed.Sign(k.key); err != nil {
		return txn, err
	}

	return signed, nil
}
