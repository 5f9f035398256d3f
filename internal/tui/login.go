package tui

import (
	"context"
	"strings"

	"orders_console/internal/api"
	"orders_console/internal/session"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const (
	msgLoginFailed    = "Login failed"
	msgLoginError     = "Une erreur est survenue lors de la connexion"
	msgLoginRequired  = "Nom d'utilisateur et mot de passe requis"
	msgLoginSubmitted = "Connexion..."
)

type loginState int

const (
	loginIdle loginState = iota
	loginSubmitting
	loginSuccess
	loginFailure
)

func (s loginState) String() string {
	switch s {
	case loginIdle:
		return "idle"
	case loginSubmitting:
		return "submitting"
	case loginSuccess:
		return "success"
	case loginFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Authenticator is the part of the API client the screens call directly.
type Authenticator interface {
	Login(ctx context.Context, creds api.LoginRequest) (api.LoginResponse, error)
	Logout(ctx context.Context) error
}

type loginResultMsg struct {
	state   loginState
	message string
}

type loginModel struct {
	ctx      context.Context
	auth     Authenticator
	sessions *session.Manager
	logger   *zap.Logger
	keys     KeyMap

	username textinput.Model
	password textinput.Model
	focus    int

	state   loginState
	message string
}

func newLoginModel(ctx context.Context, auth Authenticator, sessions *session.Manager, logger *zap.Logger) loginModel {
	username := newInput("Nom d'utilisateur : ", "admin")
	password := newInput("Mot de passe : ", "")
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	m := loginModel{
		ctx:      ctx,
		auth:     auth,
		sessions: sessions,
		logger:   logger,
		keys:     DefaultKeyMap,
		username: username,
		password: password,
	}
	m.setFocus(0)
	return m
}

func newInput(prompt, placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = placeholder
	ti.CharLimit = 128
	ti.Width = 32
	ti.PromptStyle = labelStyle
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func (m *loginModel) setFocus(i int) {
	m.focus = (i + 2) % 2
	if m.focus == 0 {
		m.username.Focus()
		m.password.Blur()
		return
	}
	m.username.Blur()
	m.password.Focus()
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.state = msg.state
		m.message = msg.message
		if m.state == loginFailure {
			m.password.SetValue("")
			m.setFocus(1)
		}
		return m, nil

	case tea.KeyMsg:
		if m.state == loginSubmitting {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, m.keys.NextField):
			m.setFocus(m.focus + 1)
			return m, nil
		case key.Matches(msg, m.keys.PrevField):
			m.setFocus(m.focus - 1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	creds := api.LoginRequest{
		Username: strings.TrimSpace(m.username.Value()),
		Password: m.password.Value(),
	}
	if creds.Username == "" || creds.Password == "" {
		m.state = loginIdle
		m.message = msgLoginRequired
		if creds.Username == "" {
			m.setFocus(0)
		} else {
			m.setFocus(1)
		}
		return m, nil
	}

	m.state = loginSubmitting
	m.message = msgLoginSubmitted
	return m, login(m.ctx, m.auth, m.sessions, m.logger, creds)
}

// login runs the request and, on success, persists the session. The saved
// session is broadcast, which is what moves the route gate off this screen.
func login(ctx context.Context, auth Authenticator, sessions *session.Manager, logger *zap.Logger, creds api.LoginRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := auth.Login(ctx, creds)
		if err != nil {
			logger.Warn("login failed", zap.String("username", creds.Username), zap.Error(err))
			message := api.ServerMessage(err)
			if message == "" {
				message = msgLoginError
			}
			return loginResultMsg{state: loginFailure, message: message}
		}
		sess, err := api.SessionFromLogin(resp, creds.Username)
		if err != nil {
			logger.Info("login rejected", zap.String("username", creds.Username), zap.Error(err))
			message := api.ServerMessage(err)
			if message == "" {
				message = msgLoginFailed
			}
			return loginResultMsg{state: loginFailure, message: message}
		}
		if err := sessions.Save(sess); err != nil {
			logger.Error("save session", zap.Error(err))
			return loginResultMsg{state: loginFailure, message: msgLoginError}
		}
		logger.Info("logged in", zap.String("username", creds.Username), zap.String("role", resp.User.Role))
		return loginResultMsg{state: loginSuccess}
	}
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Copima Sales"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Connexion"))
	b.WriteString("\n\n")
	b.WriteString(m.username.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	switch {
	case m.state == loginFailure || (m.state == loginIdle && m.message != ""):
		b.WriteString(errorStyle.Render(m.message))
	case m.message != "":
		b.WriteString(mutedStyle.Render(m.message))
	}
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(helpLine(m.keys.Submit, m.keys.NextField, m.keys.ForceQuit)))

	return panelStyle.Render(lipgloss.NewStyle().Width(48).Render(b.String()))
}
