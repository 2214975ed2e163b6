package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrInvalidID is returned when an externally supplied record id does not
// have the expected 24-hex-character form.
var ErrInvalidID = errors.New("malformed record id")

// idLength is the length of a record id in hex characters.
const idLength = 24

// NewID generates a new opaque record id: 12 random bytes, hex encoded.
func NewID() string {
	b := make([]byte, idLength/2)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b)
}

// ParseID validates an externally supplied id string. Ids arrive from URL
// paths, so a bad one is a client error, not a crash.
func ParseID(s string) (string, error) {
	if len(s) != idLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return s, nil
}
