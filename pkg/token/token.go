package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Generate returns n crypto-secure random characters from the URL-safe base64 alphabet
// These are used as connection IDs, so they can appear in logs and query strings
func Generate(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token length must be positive, got %d", n)
	}

	enc := base64.RawURLEncoding
	raw := make([]byte, enc.DecodedLen(n)+1)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("could not read random bytes: %w", err)
	}

	return enc.EncodeToString(raw)[:n], nil
}
