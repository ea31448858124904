package util

import (
	"crypto/rand"
	"encoding/hex"
)

// idBytes sizes account identifiers: 16 random bytes render as 32 hex
// characters, well inside the store's 64-character ID columns.
const idBytes = 16

// NewID returns a random hex identifier for user accounts.
func NewID() string {
	b := make([]byte, idBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
