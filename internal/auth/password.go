package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// PasswordChecker verifies the single shared admin password. A bcrypt hash
// takes precedence over the plaintext value when both are configured.
type PasswordChecker struct {
	plain string
	hash  []byte
}

func NewPasswordChecker(plain, hash string) *PasswordChecker {
	pc := &PasswordChecker{plain: plain}
	if hash != "" {
		pc.hash = []byte(hash)
	}
	return pc
}

// Configured reports whether any admin password is set. With none set every
// login is refused.
func (pc *PasswordChecker) Configured() bool {
	return pc.plain != "" || len(pc.hash) > 0
}

func (pc *PasswordChecker) Check(password string) bool {
	if password == "" {
		return false
	}
	if len(pc.hash) > 0 {
		return bcrypt.CompareHashAndPassword(pc.hash, []byte(password)) == nil
	}
	if pc.plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pc.plain), []byte(password)) == 1
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
