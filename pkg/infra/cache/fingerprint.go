package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint derives the query cache key for a scope. Queries that differ
// only in surrounding or repeated whitespace share a fingerprint.
func Fingerprint(scope, query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	h := sha256.New()
	h.Write([]byte(scope))
	h.Write([]byte{0})
	h.Write([]byte(normalized))
	return hex.EncodeToString(h.Sum(nil))
}
