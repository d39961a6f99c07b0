package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KeyLength is the length in hex characters of a derived cache key.
const KeyLength = 16

// lowercaser performs Unicode-aware lowercasing for query normalization.
// cases.Caser is not safe for concurrent use, so each call takes a copy.
var lowercaser = cases.Lower(language.Und)

// NormalizeQuery canonicalizes a raw query string: lowercased, leading and
// trailing whitespace trimmed, interior whitespace runs collapsed to a
// single space. Queries that normalize identically share a cache entry.
func NormalizeQuery(query string) string {
	caser := lowercaser
	lowered := caser.String(query)
	return strings.Join(strings.Fields(lowered), " ")
}

// DeriveKey maps a raw query to its cache key: the first KeyLength hex
// characters of the SHA-256 digest of the normalized query. Deterministic
// and side-effect free.
func DeriveKey(query string) string {
	sum := sha256.Sum256([]byte(NormalizeQuery(query)))
	return hex.EncodeToString(sum[:])[:KeyLength]
}
