package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/stream254/backend/internal/common"
)

// passwordSymbols is the fixed set of special characters a password may
// (and must) contain.
const passwordSymbols = "@$!%*?&"

const minPasswordLength = 8

// ValidatePassword enforces the registration/reset complexity rule:
// at least 8 characters with at least one letter, one digit and one symbol
// from the allowed set, and no characters outside letters, digits and that
// set. Violations are reported as common.ErrWeakPassword.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: minimum %d characters", common.ErrWeakPassword, minPasswordLength)
	}

	var hasLetter, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		default:
			return fmt.Errorf("%w: character %q is not allowed", common.ErrWeakPassword, r)
		}
	}

	if !hasLetter || !hasDigit || !hasSymbol {
		return fmt.Errorf("%w: need at least one letter, one number and one of %q",
			common.ErrWeakPassword, passwordSymbols)
	}
	return nil
}

// HashPassword returns the bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
