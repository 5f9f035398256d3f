package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"orders_console/internal/validation"
)

// Storage keys: the auth token (or flag) and the serialized user profile.
const (
	KeyAuthToken = "auth_token"
	KeyUser      = "user"

	// AuthenticatedMarker is stored as the token when the backend
	// authenticates without issuing a bearer token.
	AuthenticatedMarker = "authenticated"
)

var ErrInvalidSession = errors.New("invalid session")

type User struct {
	ID   string `json:"id" validate:"required,notblank"`
	Name string `json:"name" validate:"required,notblank"`
	Role string `json:"role"`
}

// Session is the client-held record of who is logged in.
// Authenticated implies User is non-nil and valid.
type Session struct {
	Authenticated bool
	Token         string
	User          *User
}

// Anonymous is the unauthenticated default.
func Anonymous() Session {
	return Session{}
}

// New builds an authenticated session. An empty token is replaced by
// AuthenticatedMarker so the auth flag is always persisted.
func New(token string, user User) Session {
	token = strings.TrimSpace(token)
	if token == "" {
		token = AuthenticatedMarker
	}
	return Session{
		Authenticated: true,
		Token:         token,
		User:          &user,
	}
}

func (s Session) Validate() error {
	if !s.Authenticated {
		return nil
	}
	if strings.TrimSpace(s.Token) == "" {
		return fmt.Errorf("%w: missing token", ErrInvalidSession)
	}
	if s.User == nil {
		return fmt.Errorf("%w: missing user", ErrInvalidSession)
	}
	if err := validation.Validate(s.User); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	return nil
}

func (s Session) UserName() string {
	if s.User == nil {
		return ""
	}
	return s.User.Name
}

func (s Session) same(other Session) bool {
	if s.Authenticated != other.Authenticated || s.Token != other.Token {
		return false
	}
	if s.User == nil || other.User == nil {
		return s.User == other.User
	}
	return *s.User == *other.User
}

func encode(s Session) (map[string]string, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	user, err := json.Marshal(s.User)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	return map[string]string{
		KeyAuthToken: s.Token,
		KeyUser:      string(user),
	}, nil
}

// decode never trusts stored content: anything that does not produce a valid
// authenticated session returns ErrInvalidSession.
func decode(kv map[string]string) (Session, error) {
	token := strings.TrimSpace(kv[KeyAuthToken])
	if token == "" {
		return Anonymous(), nil
	}

	raw := strings.TrimSpace(kv[KeyUser])
	if raw == "" {
		return Anonymous(), fmt.Errorf("%w: auth flag without user", ErrInvalidSession)
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return Anonymous(), fmt.Errorf("%w: decode user: %v", ErrInvalidSession, err)
	}

	s := Session{Authenticated: true, Token: token, User: &user}
	if err := s.Validate(); err != nil {
		return Anonymous(), err
	}
	return s, nil
}
