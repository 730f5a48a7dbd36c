package crowdfund

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"

	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-crowdfund/solana"
)

// SeedPrefix is prepended to every generated seed.
const SeedPrefix = "abcdef"

// SeedGenerator returns a seed used to derive a new account address.
type SeedGenerator func() (string, error)

// RandomSeed returns SeedPrefix followed by the decimal form of a random
// fraction in [0, 1), truncated to solana.MaxSeedLength.
func RandomSeed() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}

	// 53 bits fill the float64 mantissa
	f := float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)

	seed := SeedPrefix + strconv.FormatFloat(f, 'f', -1, 64)
	if len(seed) > solana.MaxSeedLength {
		seed = seed[:solana.MaxSeedLength]
	}

	return seed, nil
}
