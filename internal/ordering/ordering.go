// Package ordering produces the deterministic sequence in which resolved
// dependencies are written to the lock file.
//
// Without a seed, pins are sorted by name. With a seed, pins are first sorted
// by name and then permuted by the algorithm named in Algorithm:
//
//   - key: 32 bytes, the seed as little-endian uint64 in bytes 0..7, zeros after
//   - generator: ChaCha8Rand (C2SP chacha8rand), math/rand/v2.ChaCha8
//   - shuffle: Fisher-Yates from the last index down to 1; for index i one
//     Uint64 u is drawn and the swap partner is the high 64 bits of u*(i+1)
//
// A shuffle of n pins consumes exactly n-1 draws. The algorithm is part of the
// lock file format: changing any step reorders every previously seeded lock.
package ordering

import (
	"encoding/binary"
	"math/bits"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/frederic-klein/dustpkg/internal/dist"
)

// Algorithm identifies the seeded permutation written into lock files.
const Algorithm = "chacha8rand-fy-v1"

// Order returns pins in lock-file order. The input slice is not modified.
func Order(pins []dist.Pin, seed *uint64) []dist.Pin {
	sorted := Sorted(pins)
	if seed == nil {
		return sorted
	}
	shuffle(sorted, *seed)
	return sorted
}

// Sorted returns a copy of pins sorted ascending by byte-wise name.
func Sorted(pins []dist.Pin) []dist.Pin {
	out := slices.Clone(pins)
	slices.SortFunc(out, func(a, b dist.Pin) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Key expands a 64-bit seed into the generator key.
func Key(seed uint64) [32]byte {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	return key
}

func shuffle(pins []dist.Pin, seed uint64) {
	rng := rand.NewChaCha8(Key(seed))
	for i := len(pins) - 1; i > 0; i-- {
		j, _ := bits.Mul64(rng.Uint64(), uint64(i+1))
		pins[i], pins[j] = pins[j], pins[i]
	}
}
