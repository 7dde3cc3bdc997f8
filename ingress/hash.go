package ingress

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashPayload returns a deterministic hex digest of the raw payload body,
// used as the third component of the dedup key (spec.md §3).
func hashPayload(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
