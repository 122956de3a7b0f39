package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"trusttracker/models"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrMasterNotInitialized = errors.New("master account not initialized")
)

var dummyHash, dummyHashErr = HashPassword("timing-equalizer")

// UserLookup finds users by username.
type UserLookup interface {
	UserByUsername(ctx context.Context, username string) (*models.User, error)
}

// MasterCredentials is the configured bootstrap account.
type MasterCredentials struct {
	Username string
	Password string
	// Override accepts the master pair without checking the stored hash.
	Override bool
}

func (m MasterCredentials) matches(username, password string) bool {
	if m.Username == "" || m.Password == "" {
		return false
	}
	u := subtle.ConstantTimeCompare([]byte(username), []byte(m.Username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(m.Password))
	return u&p == 1
}

// Authenticator verifies login attempts.
type Authenticator struct {
	users    UserLookup
	master   MasterCredentials
	notFound func(error) bool
}

// NewAuthenticator builds an Authenticator. isNotFound tells a missing user
// apart from a storage failure.
func NewAuthenticator(users UserLookup, master MasterCredentials, isNotFound func(error) bool) *Authenticator {
	return &Authenticator{users: users, master: master, notFound: isNotFound}
}

// Login returns the user for a valid username/password pair. Unknown users and
// wrong passwords both yield ErrInvalidCredentials. The master pair yields
// ErrMasterNotInitialized while its account row does not exist.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	isMaster := a.master.matches(username, password)

	user, err := a.users.UserByUsername(ctx, username)
	switch {
	case err == nil:
	case a.notFound(err):
		if isMaster {
			return nil, ErrMasterNotInitialized
		}
		// keep unknown users as slow as wrong passwords
		if dummyHashErr == nil {
			_ = VerifyPassword(dummyHash, password)
		}
		return nil, ErrInvalidCredentials
	default:
		return nil, err
	}

	if isMaster && a.master.Override {
		return user, nil
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
