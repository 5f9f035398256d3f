package api

import (
	"fmt"
	"strings"

	"orders_console/internal/session"
)

// SessionFromLogin turns a login response into the session to persist. The
// display name is the username that was typed, not the server's copy.
// A response flagged success:false yields a *FailureError.
func SessionFromLogin(resp LoginResponse, username string) (session.Session, error) {
	if !resp.Success {
		return session.Anonymous(), &FailureError{Message: strings.TrimSpace(resp.Message)}
	}
	if resp.User == nil || resp.User.ID == "" {
		return session.Anonymous(), fmt.Errorf("%w: login response without user", ErrMalformedBody)
	}

	sess := session.New(resp.Token, session.User{
		ID:   resp.User.ID.String(),
		Name: strings.TrimSpace(username),
		Role: resp.User.Role,
	})
	if err := sess.Validate(); err != nil {
		return session.Anonymous(), err
	}
	return sess, nil
}
