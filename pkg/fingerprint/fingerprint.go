// Package fingerprint computes content fingerprints for clipboard payloads.
// Fingerprints are used for equality checks only: change detection, echo
// suppression, and history deduplication. They are not a security boundary.
package fingerprint

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a 64-bit digest of clipboard content.
type Fingerprint uint64

// Zero is the sentinel fingerprint for empty or missing content.
const Zero Fingerprint = 0

// Sum computes the fingerprint of content. Identical input always produces
// an identical fingerprint. Empty content maps to Zero.
func Sum(content string) Fingerprint {
	if content == "" {
		return Zero
	}
	return Fingerprint(xxhash.Sum64String(content))
}

// IsZero reports whether the fingerprint is the empty-content sentinel.
func (f Fingerprint) IsZero() bool {
	return f == Zero
}

// String returns the fingerprint as fixed-width hex, suitable for logging
// and wire encoding.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}
