package batch

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const shareCodeLen = 7

// NewShareCode returns 7 uppercase hex characters.
func NewShareCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)[:shareCodeLen]), nil
}

func ShareLink(base, code string) string {
	return strings.TrimRight(base, "/") + "/join-batch/" + code
}
