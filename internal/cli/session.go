package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"orders_console/internal/api"
	"orders_console/internal/session"

	"go.uber.org/zap"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrMissingUsername  = errors.New("username is required")
	ErrMissingPassword  = errors.New("password is required")
)

type profile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role,omitempty"`
	Source string `json:"source"`
}

func (r *Runner) login(ctx context.Context, opts *Options, args []string) error {
	var username, password string
	fs := newFlagSet("login", r.stderr)
	fs.StringVar(&username, "u", "", "Username")
	fs.StringVar(&password, "p", "", "Password (read from stdin when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	username = strings.TrimSpace(username)
	if username == "" && fs.NArg() > 0 {
		username = strings.TrimSpace(fs.Arg(0))
	}
	if username == "" {
		return ErrMissingUsername
	}
	if password == "" {
		var err error
		if password, err = r.readPassword(); err != nil {
			return err
		}
	}

	resp, err := r.client.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	sess, err := api.SessionFromLogin(resp, username)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := r.sessions.Save(sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	r.logger.Info("logged in", zap.String("username", username), zap.String("role", sess.User.Role))
	return r.writeProfile(opts, profileOf(sess, "login"), "Connecté en tant que")
}

// readPassword takes the first line of stdin. The prompt goes to stderr so
// it never mixes with --json output.
func (r *Runner) readPassword() (string, error) {
	fmt.Fprint(r.stderr, "Mot de passe : ")
	scanner := bufio.NewScanner(r.stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", ErrMissingPassword
	}
	password := strings.TrimRight(scanner.Text(), "\r\n")
	if password == "" {
		return "", ErrMissingPassword
	}
	return password, nil
}

// logout is best-effort towards the server; the local session is always
// cleared.
func (r *Runner) logout(ctx context.Context, opts *Options) error {
	sess, err := r.sessions.Load()
	if err != nil {
		return err
	}
	if sess.Authenticated {
		if err := r.client.Logout(ctx); err != nil {
			r.logger.Warn("logout request failed", zap.Error(err))
		}
	}
	if err := r.sessions.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return r.writeMessage(opts, "logged_out", "Déconnecté.")
}

// whoami asks the server and falls back to the stored profile when the
// server cannot answer. A 401 is not a fallback case: the session is gone.
func (r *Runner) whoami(ctx context.Context, opts *Options) error {
	sess, err := r.requireSession()
	if err != nil {
		return err
	}

	user, err := r.client.Me(ctx)
	switch {
	case err == nil:
		p := profile{ID: user.ID.String(), Name: user.Username, Role: user.Role, Source: "server"}
		if p.Name == "" {
			p.Name = sess.UserName()
		}
		return r.writeProfile(opts, p, "Utilisateur")
	case errors.Is(err, api.ErrUnauthorized):
		return err
	default:
		r.logger.Warn("me request failed; using stored profile", zap.Error(err))
		return r.writeProfile(opts, profileOf(sess, "session"), "Utilisateur")
	}
}

func profileOf(sess session.Session, source string) profile {
	if sess.User == nil {
		return profile{Source: source}
	}
	return profile{ID: sess.User.ID, Name: sess.User.Name, Role: sess.User.Role, Source: source}
}
