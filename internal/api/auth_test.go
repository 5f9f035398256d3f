package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionFromLogin(t *testing.T) {
	sess, err := SessionFromLogin(LoginResponse{
		Success: true,
		User:    &User{ID: "3", Username: "USER1", Role: "USER"},
	}, " user1 ")
	require.NoError(t, err)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "authenticated", sess.Token, "no token issued keeps the auth marker")
	assert.Equal(t, "user1", sess.User.Name, "the typed username is the display name")
	assert.Equal(t, "3", sess.User.ID)
	assert.Equal(t, "USER", sess.User.Role)

	sess, err = SessionFromLogin(LoginResponse{Success: true, Token: "jwt", User: &User{ID: "1"}}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "jwt", sess.Token)
}

func TestSessionFromLoginRejected(t *testing.T) {
	_, err := SessionFromLogin(LoginResponse{Success: false, Message: "Invalid username or password"}, "x")
	var failure *FailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "Invalid username or password", ServerMessage(err))

	_, err = SessionFromLogin(LoginResponse{Success: false}, "x")
	require.ErrorAs(t, err, &failure)
	assert.Empty(t, ServerMessage(err))

	_, err = SessionFromLogin(LoginResponse{Success: true}, "x")
	assert.ErrorIs(t, err, ErrMalformedBody)

	_, err = SessionFromLogin(LoginResponse{Success: true, User: &User{ID: "1"}}, "  ")
	assert.Error(t, err, "a blank username cannot make a valid session")
}
