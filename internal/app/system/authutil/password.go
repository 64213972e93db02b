// Package authutil holds password hashing and password-rule helpers.
package authutil

import (
	"errors"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

const (
	MinPasswordLen = 6
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordBytes = 72
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
)

// PasswordRules is the user-facing description of the password policy.
const PasswordRules = "Passwords must be at least 6 characters."

// CheckPasswordRules validates a self-chosen password against the policy.
func CheckPasswordRules(pw string) error {
	if utf8.RuneCountInString(pw) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	return CheckPasswordLength(pw)
}

// CheckPasswordLength only enforces the bcrypt input cap. Administrators
// may assign short initial passwords.
func CheckPasswordLength(pw string) error {
	if len(pw) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// HashPassword returns a bcrypt hash of pw. Costs below DefaultCost are
// raised to DefaultCost.
func HashPassword(pw string, cost int) (string, error) {
	if cost < DefaultCost {
		cost = DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches the bcrypt hash.
func CheckPassword(hash, pw string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// BurnCompare performs a throwaway bcrypt comparison. Call it when the
// account being authenticated does not exist so the response takes about as
// long as a real password check.
func BurnCompare(pw string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("readinglog-dummy-password"), DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(pw))
}
