package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is the work factor for new password hashes.
	DefaultBcryptCost = 12

	// MaxPasswordBytes is bcrypt's input limit; longer input is truncated by
	// the algorithm, so it is rejected instead.
	MaxPasswordBytes = 72
)

// PasswordHasher hashes with bcrypt and verifies both bcrypt hashes and the
// legacy "salt$sha256hex" format found in older databases.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsLegacyHash reports whether hash is in the pre-bcrypt format.
func IsLegacyHash(hash string) bool {
	return !strings.HasPrefix(hash, "$2")
}

func (h *PasswordHasher) Verify(password, hash string) bool {
	if !IsLegacyHash(hash) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	return verifyLegacy(password, hash)
}

func verifyLegacy(password, stored string) bool {
	salt, digest, ok := strings.Cut(stored, "$")
	if !ok || salt == "" || digest == "" {
		return false
	}
	sum := sha256.Sum256([]byte(password + salt))
	computed := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
