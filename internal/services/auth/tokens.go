package auth

import (
	"crypto/rand"
	"encoding/base64"
)

const (
	tokenBytes   = 32
	APIKeyPrefix = "sk_"
)

func randomToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func newSessionToken() (string, error) {
	return randomToken()
}

func newAPIKey() (string, error) {
	t, err := randomToken()
	if err != nil {
		return "", err
	}
	return APIKeyPrefix + t, nil
}

// MaskKey shows the first 8 and last 4 characters of key.
func MaskKey(key string) string {
	if len(key) <= 12 {
		return "..."
	}
	return key[:8] + "..." + key[len(key)-4:]
}
