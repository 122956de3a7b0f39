package auth

import (
	"context"
	"errors"
	"testing"

	"trusttracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoUser = errors.New("no such user")

// fakeUsers implements UserLookup over a map.
type fakeUsers struct {
	users map[string]*models.User
	err   error
}

func (f *fakeUsers) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, errNoUser
	}
	return u, nil
}

func isNoUser(err error) bool { return errors.Is(err, errNoUser) }

func newFakeUsers(t *testing.T, pairs ...string) *fakeUsers {
	t.Helper()
	f := &fakeUsers{users: map[string]*models.User{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		u, err := NewUser(pairs[i], pairs[i+1], false)
		require.NoError(t, err)
		u.ID = uint(len(f.users) + 1)
		f.users[u.Username] = u
	}
	return f
}

func TestLogin_StoredHash(t *testing.T) {
	a := NewAuthenticator(newFakeUsers(t, "alice", "secret1"), MasterCredentials{}, isNoUser)
	ctx := context.Background()

	u, err := a.Login(ctx, " alice ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = a.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Login(ctx, "mallory", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown users look like wrong passwords")

	_, err = a.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_MasterNotInitialized(t *testing.T) {
	master := MasterCredentials{Username: "admin", Password: "admin123"}
	for _, override := range []bool{false, true} {
		master.Override = override
		a := NewAuthenticator(newFakeUsers(t), master, isNoUser)

		u, err := a.Login(context.Background(), "admin", "admin123")
		assert.Nil(t, u)
		assert.ErrorIs(t, err, ErrMasterNotInitialized, "override=%v", override)

		_, err = a.Login(context.Background(), "admin", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
}

func TestLogin_MasterProvisioned(t *testing.T) {
	master := MasterCredentials{Username: "admin", Password: "admin123"}
	users := newFakeUsers(t, "admin", "admin123")
	a := NewAuthenticator(users, master, isNoUser)

	u, err := a.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Username)
}

func TestLogin_MasterOverrideSkipsStoredHash(t *testing.T) {
	// the stored hash no longer matches the configured master password
	users := newFakeUsers(t, "admin", "rotated-password")
	ctx := context.Background()

	strict := NewAuthenticator(users, MasterCredentials{Username: "admin", Password: "admin123"}, isNoUser)
	_, err := strict.Login(ctx, "admin", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	override := NewAuthenticator(users, MasterCredentials{Username: "admin", Password: "admin123", Override: true}, isNoUser)
	u, err := override.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Username)

	u, err = override.Login(ctx, "admin", "rotated-password")
	require.NoError(t, err, "stored hash still works")
	assert.Equal(t, "admin", u.Username)
}

func TestLogin_StorageFailure(t *testing.T) {
	boom := errors.New("database is locked")
	a := NewAuthenticator(&fakeUsers{err: boom}, MasterCredentials{}, isNoUser)
	_, err := a.Login(context.Background(), "alice", "secret1")
	assert.ErrorIs(t, err, boom)
}
