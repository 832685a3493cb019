package auth

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashCode creates a bcrypt hash from the given plaintext confirmation code.
// The cost determines how slow an offline guess is; DefaultCost (10) keeps signup latency low.
func HashCode(code string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyCode checks the provided code against the stored bcrypt hash.
// An empty hash (consumed or never issued) never verifies.
func VerifyCode(hashedCode, providedCode string) error {
	if hashedCode == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(providedCode))
}

// NewConfirmationCode returns 32 hex characters backed by a random v4 uuid (122 bits from crypto/rand).
func NewConfirmationCode() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}
