// Package verify implements the document verification workflow: an LLM
// judges a document against the specification governing its type, and a
// content-addressable cache keyed by a fingerprint of (document, spec)
// lets the remote call be skipped while neither input has changed.
package verify

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintLen is the number of hex characters kept from the digest.
// Eight characters identify content for cache validity; this is not a
// security boundary.
const fingerprintLen = 8

// Fingerprint returns a short stable digest of a document and the
// specification it is verified against. Equal inputs always produce
// equal output, and changing either input changes it.
func Fingerprint(docContent, specContent []byte) string {
	h := sha256.New()
	h.Write(docContent)
	h.Write(specContent)
	return hex.EncodeToString(h.Sum(nil))[:fingerprintLen]
}
