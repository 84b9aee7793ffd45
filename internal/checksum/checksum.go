// Package checksum derives the content identifier recorded for each locked
// dependency. The identifier is computed from the declared name and version
// only; it is not a digest of artifact bytes.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Separator joins name and version in the hashed string.
const Separator = "@"

// Sum returns the lowercase hex SHA-256 of name + "@" + version.
func Sum(name, version string) string {
	h := sha256.Sum256([]byte(name + Separator + version))
	return hex.EncodeToString(h[:])
}
