package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows a future
// change of algorithm.
const (
	DomainTimeline = "dasha/timeline/v1"
	DomainSystem   = "dasha/system/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null separator
// prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns the cache key of a timeline request.
func (k TimelineKey) Hash() (string, error) {
	canonical, err := MarshalCanonical(k.Value())
	if err != nil {
		return "", fmt.Errorf("TimelineKey: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTimeline, canonical), nil
}

// Hash returns the content hash of a system definition. Two definitions
// with the same hash subdivide identically.
func (s SystemRecord) Hash() (string, error) {
	canonical, err := MarshalCanonical(s.Value())
	if err != nil {
		return "", fmt.Errorf("SystemRecord: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSystem, canonical), nil
}
