package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// APIKeyPrefix starts every raw API key.
const APIKeyPrefix = "mpk_"

// keyPrefixLen is the number of raw key characters kept for display:
// the prefix plus eight hex characters.
const keyPrefixLen = len(APIKeyPrefix) + 8

// GenerateAPIKey returns a new raw API key: the prefix followed by 32
// random bytes in hex.
func GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return APIKeyPrefix + hex.EncodeToString(b), nil
}

// HashAPIKey computes the SHA-256 hex hash stored for a raw key.
func HashAPIKey(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// DisplayPrefix returns the leading part of a raw key that is safe to show.
func DisplayPrefix(raw string) string {
	if len(raw) < keyPrefixLen {
		return raw
	}
	return raw[:keyPrefixLen]
}
