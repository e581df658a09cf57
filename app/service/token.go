package service

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

const transactionIDLength = 26

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// newTransactionID returns a fixed-length, URL-safe correlation token. It is
// the only thing tying an outbound request to its webhook, so it must be
// unguessable; 16 bytes of crypto/rand gives 128 bits of entropy.
func newTransactionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToLower(tokenEncoding.EncodeToString(buf)), nil
}
