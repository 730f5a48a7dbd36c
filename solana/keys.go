package solana

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// MaxSeedLength is the maximum length of a seed used in address derivation.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/pubkey.rs#L13
const MaxSeedLength = 32

var ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

// CreateWithSeed derives an address from a base key, a seed, and the owning program.
//
// The result is sha256(base || seed || owner), and is stable for a given triple.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/pubkey.rs#L150-L162
func CreateWithSeed(base ed25519.PublicKey, seed string, owner ed25519.PublicKey) (ed25519.PublicKey, error) {
	if len(seed) > MaxSeedLength {
		return nil, ErrMaxSeedLengthExceeded
	}
	if len(base) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid base key size: %d", len(base))
	}
	if len(owner) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid owner key size: %d", len(owner))
	}

	h := sha256.New()
	_, _ = h.Write(base)
	_, _ = h.Write([]byte(seed))
	_, _ = h.Write(owner)

	return h.Sum(nil), nil
}

// ParsePublicKey decodes a base58 encoded public key.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base58 encoded key")
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid key size: %d", len(b))
	}

	return b, nil
}

// MustParsePublicKey calls ParsePublicKey, panicking if there's an error.
func MustParsePublicKey(s string) ed25519.PublicKey {
	k, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return k
}
