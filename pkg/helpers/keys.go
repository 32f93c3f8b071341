package helpers

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// Base64ToHex re-encodes a base64 master key into the hex form distributed
// to clients. Empty input yields empty output; malformed input is an error
// the caller treats as non-fatal.
func Base64ToHex(b64 string) (string, error) {
	b64 = strings.TrimSpace(b64)
	if b64 == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
