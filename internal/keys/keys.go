// Package keys derives stable integer keys from string chunk ids, for vector
// backends that only accept int64 primary keys.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// IntKey maps a chunk id to a deterministic integer in [0, 2^63-2]: the first
// 16 hex digits of the SHA-256 digest, interpreted as an integer and reduced
// modulo 2^63-1.
//
// The mapping is not reversible and not collision-free; the collision
// probability over a 63-bit space is negligible for realistic corpus sizes,
// and no detection or re-hash path exists. The reverse mapping back to the
// chunk id is persisted alongside chunk metadata at write time.
func IntKey(chunkID string) int64 {
	sum := sha256.Sum256([]byte(chunkID))
	digest := hex.EncodeToString(sum[:])

	// 16 hex digits always fit in a uint64.
	v, _ := strconv.ParseUint(digest[:16], 16, 64)
	return int64(v % (1<<63 - 1))
}
