package auth

import (
	"errors"
	"strings"

	"trusttracker/models"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	MaxUsernameLength = 80
)

var (
	ErrUsernameRequired = errors.New("username required")
	ErrUsernameTooLong  = errors.New("username too long (max 80)")
	ErrPasswordTooShort = errors.New("password too short (min 6)")
)

// HashPassword hashes a plain text password using bcrypt.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// VerifyPassword checks if a plain text password matches the hashed password.
func VerifyPassword(hash []byte, password string) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(password))
}

// CheckPasswordPolicy enforces the minimum password length.
func CheckPasswordPolicy(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// NewUser validates the credentials and returns an unsaved user holding the
// password hash.
func NewUser(username, password string, isAdmin bool) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(username) > MaxUsernameLength {
		return nil, ErrUsernameTooLong
	}
	if err := CheckPasswordPolicy(password); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &models.User{Username: username, PasswordHash: hash, IsAdmin: isAdmin}, nil
}
