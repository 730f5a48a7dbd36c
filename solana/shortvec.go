package solana

import (
	"github.com/pkg/errors"
)

// appendShortVecLength appends the compact-u16 encoding of n to b.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/short_vec.rs
func appendShortVecLength(b []byte, n int) []byte {
	v := uint16(n)
	for {
		elem := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(b, elem)
		}
		b = append(b, elem|0x80)
	}
}

// readShortVecLength decodes a compact-u16 from the front of b, returning
// the value and the number of bytes consumed.
func readShortVecLength(b []byte) (n int, size int, err error) {
	var v uint32
	for size = 0; size < 3; size++ {
		if size >= len(b) {
			return 0, 0, errors.New("short vec length truncated")
		}

		elem := b[size]
		v |= uint32(elem&0x7f) << (7 * uint(size))
		if elem&0x80 == 0 {
			if v > 0xffff {
				return 0, 0, errors.Errorf("short vec length out of range: %d", v)
			}
			return int(v), size + 1, nil
		}
	}

	return 0, 0, errors.New("short vec length too long")
}
