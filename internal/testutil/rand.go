// Package testutil provides deterministic test fixtures shared across the
// module's packages.
package testutil

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
)

// Rand is a deterministic pseudo-random byte source: the same seed always
// produces the same sequence, independent of Go version or platform, which
// math/rand does not guarantee across releases.
type Rand struct {
	cipher.Block
	ctr uint64
	blk [aes.BlockSize]byte
}

// NewRand returns a Rand seeded from seed.
func NewRand(seed int64) *Rand {
	var key [aes.BlockSize]byte
	binary.LittleEndian.PutUint64(key[:], uint64(seed))
	blk, _ := aes.NewCipher(key[:])
	return &Rand{Block: blk}
}

func (r *Rand) next() [aes.BlockSize]byte {
	var in [aes.BlockSize]byte
	binary.LittleEndian.PutUint64(in[:8], r.ctr)
	r.ctr++
	var out [aes.BlockSize]byte
	r.Encrypt(out[:], in[:])
	return out
}

// Intn returns a pseudo-random integer in [0, n).
func (r *Rand) Intn(n int) int {
	blk := r.next()
	x := int(binary.LittleEndian.Uint32(blk[:4]) & 0x7fffffff)
	return x % n
}

// Bytes returns n pseudo-random bytes.
func (r *Rand) Bytes(n int) []byte {
	out := make([]byte, n)
	rest := out
	for len(rest) > 0 {
		blk := r.next()
		rest = rest[copy(rest, blk[:]):]
	}
	return out
}
