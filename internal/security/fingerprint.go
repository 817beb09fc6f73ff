package security

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Fingerprinter derives stable, non-reversible labels for client
// identifiers so they can appear in tokens and logs.
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter creates a keyed fingerprinter. An empty key is allowed
// but makes short identifiers guessable from their fingerprint.
func NewFingerprinter(key string) (*Fingerprinter, error) {
	if len(key) > blake2b.Size {
		return nil, fmt.Errorf("fingerprint key too long: %d bytes (max %d)", len(key), blake2b.Size)
	}
	return &Fingerprinter{key: []byte(key)}, nil
}

// Fingerprint returns 16 hex characters of keyed BLAKE2b-256 over id
func (f *Fingerprinter) Fingerprint(id string) string {
	h, err := blake2b.New256(f.key)
	if err != nil {
		// unreachable: key length is checked in NewFingerprinter
		panic(err)
	}
	h.Write([]byte(id))
	return hex.EncodeToString(h.Sum(nil)[:8])
}
