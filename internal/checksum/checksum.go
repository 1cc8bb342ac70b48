// Package checksum computes the content and metadata digests used to detect
// changed notes.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/starford/relyaml/internal/models"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Metadata returns a digest of front-matter that is equal for two
// snapshots exactly when they are deeply equal, key order included.
// Absent metadata hashes differently from an empty block.
func Metadata(md models.Metadata) string {
	// Field and Value marshal without error; nil encodes as null.
	data, _ := json.Marshal(md)
	return Sum(data)
}
