package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	user, err := f.auth.Register(&RegisterRequest{Username: "alice", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.False(t, user.IsAdmin)
	require.NotEqual(t, "secret1", user.Password)

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"duplicate username", RegisterRequest{Username: "alice", Email: "other@x.com", Password: "secret1"}},
		{"duplicate email", RegisterRequest{Username: "alice2", Email: "a@x.com", Password: "secret1"}},
		{"short password", RegisterRequest{Username: "bob", Email: "b@x.com", Password: "12345"}},
		{"short username", RegisterRequest{Username: "bo", Email: "b@x.com", Password: "secret1"}},
		{"bad email", RegisterRequest{Username: "bob", Email: "nope", Password: "secret1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.auth.Register(&tc.req)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(&RegisterRequest{Username: "alice", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := f.auth.Authenticate("alice", "secret1")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	_, err = f.auth.Authenticate("alice", "wrong")
	require.ErrorIs(t, err, ErrAuthentication)

	// unknown users get the same answer as bad passwords
	_, err2 := f.auth.Authenticate("nobody", "secret1")
	require.ErrorIs(t, err2, ErrAuthentication)
	require.Equal(t, err.Error(), err2.Error())
}

func TestLoginAndValidateToken(t *testing.T) {
	f := newFixture(t)

	resp, err := f.auth.Login("root", "password")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.True(t, resp.User.IsAdmin)

	me, err := f.auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, f.admin.ID, me.ID)
	require.Equal(t, "root", me.Username)

	_, err = f.auth.ValidateToken("garbage")
	require.ErrorIs(t, err, ErrAuthentication)

	_, err = f.auth.Login("root", "nope")
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.auth.ChangePassword("clerk", "wrong", "newpass1"), ErrValidation)
	require.ErrorIs(t, f.auth.ChangePassword("clerk", "password", "123"), ErrValidation)
	require.ErrorIs(t, f.auth.ChangePassword("ghost", "password", "newpass1"), ErrNotFound)

	require.NoError(t, f.auth.ChangePassword("clerk", "password", "newpass1"))

	_, err := f.auth.Authenticate("clerk", "password")
	require.ErrorIs(t, err, ErrAuthentication)
	_, err = f.auth.Authenticate("clerk", "newpass1")
	require.NoError(t, err)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(t)

	created, err := f.auth.EnsureAdmin("admin", "admin@inventory.com", "admin123")
	require.NoError(t, err)
	require.True(t, created)

	created, err = f.auth.EnsureAdmin("admin", "admin@inventory.com", "different")
	require.NoError(t, err)
	require.False(t, created)

	// the first password is kept
	user, err := f.auth.Authenticate("admin", "admin123")
	require.NoError(t, err)
	require.True(t, user.IsAdmin)

	users, err := f.auth.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 3) // admin, clerk, root
	require.Equal(t, "admin", users[0].Username)
}
