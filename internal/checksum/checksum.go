// Package checksum fingerprints note content for optimistic
// concurrency: a note update carries the checksum it was read at, and
// the write is refused when the stored note no longer matches.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of a note's raw text.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
