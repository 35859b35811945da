package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainQuery is the domain separation prefix for query content hashes.
// The version suffix leaves room for a future canonicalization change
// without colliding with hashes minted under this one.
const DomainQuery = "facet/query/v1"

// Hash computes the content address of a normalized query: SHA-256 over
// the domain prefix, a null separator, and the canonical JSON of the
// materialized form. Two clients that validated the same document get
// the same hash, regardless of key order in the raw input, because
// canonical serialization sorts keys.
//
// The hash is what the snapshot cache keys on and what `facet hash`
// prints.
func Hash(q *Query) (string, error) {
	canonical, err := MarshalCanonical(encodeQuery(q))
	if err != nil {
		return "", fmt.Errorf("hash query: %w", err)
	}
	return HashDomain(DomainQuery, canonical), nil
}

// HashDomain computes SHA256(domain || 0x00 || data) in hex. The null
// separator keeps the domain/data boundary unambiguous.
func HashDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
