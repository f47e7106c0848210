package service

import (
	"crypto/rand"
	"encoding/hex"
)

// newID returns a 32-char hex identifier for rows created by the services.
func newID() string {
	var buf [16]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
