// Package accesskey generates the opaque access keys (eakeys) that
// identify a caller on the API surface.
package accesskey

import (
	"crypto/rand"
	"encoding/hex"
)

const keyLen = 32

// New returns a random 64-character hex access key.
func New() (string, error) {
	raw := make([]byte, keyLen)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
