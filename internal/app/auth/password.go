package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/khattakbelt/community-api/internal/domain/apperrors"
)

// bcryptCost matches the work factor the stored digests were created with.
// Changing it only affects newly hashed passwords.
const bcryptCost = 12

func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", apperrors.WrapInternal(err, "hash password")
	}
	return string(digest), nil
}

// CheckPassword reports whether plaintext matches digest. The comparison
// inside bcrypt is constant-time.
func CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
