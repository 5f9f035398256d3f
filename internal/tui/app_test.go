package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"orders_console/internal/api"
	"orders_console/internal/orders"
	"orders_console/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, fake *fakeAPI, sessions *session.Manager, path string) *App {
	t.Helper()
	loader := orders.NewLoader(fake, zap.NewNop())
	app := NewApp(context.Background(), fake, sessions, loader, Options{Path: path, PageSize: 24}, zap.NewNop())
	t.Cleanup(app.Close)
	return app
}

func newSessions(t *testing.T, authenticated bool) *session.Manager {
	t.Helper()
	m := session.NewManager(session.NewMemoryStore(), zap.NewNop())
	if authenticated {
		require.NoError(t, m.Save(session.New("tok", session.User{ID: "1", Name: "abdeslam", Role: "sales"})))
	}
	return m
}

func samplePage() api.OrderPage {
	return api.OrderPage{
		Orders: []api.Order{
			{ID: "O-1", OrderDate: "2024-01-05", ClientName: "Acme Corporation", Type: "1", PaymentMethod: "CARD", Expedition: "EXPRESS", Price: decimal.NewNullDecimal(decimal.RequireFromString("1234.5")), Status: "COMPLETED"},
			{ID: "O-2", OrderDate: "2024-02-10", Status: "PENDING"},
		},
		Total: 100,
	}
}

func TestResolve(t *testing.T) {
	tests := map[string]string{
		"/":        PathOrders,
		"/orders":  PathOrders,
		"/login":   PathOrders,
		"/nope":    PathOrders,
		"":         PathOrders,
		"/orders/": PathOrders,
	}
	for in, want := range tests {
		assert.Equal(t, want, Resolve(in), in)
	}
}

func TestGateShowsLoadingUntilResolved(t *testing.T) {
	app := newTestApp(t, &fakeAPI{}, newSessions(t, true), "/")
	assert.Contains(t, app.View(), "Chargement...")
}

func TestGateAnonymousShowsLoginForAnyPath(t *testing.T) {
	for _, path := range []string{"/", "/orders", "/login", "/unknown"} {
		fake := &fakeAPI{}
		h := newHarness(t, newTestApp(t, fake, newSessions(t, false), path))

		assert.Equal(t, gateAnonymous, h.App().gate, path)
		assert.Equal(t, PathLogin, h.App().Path())
		assert.Contains(t, h.App().View(), "Connexion")
		assert.Zero(t, fake.queryCount(), "no order fetch before login")
	}
}

func TestGateAuthenticatedRedirects(t *testing.T) {
	for _, path := range []string{"/", "/orders", "/login", "/unknown"} {
		fake := &fakeAPI{orderPage: samplePage()}
		h := newHarness(t, newTestApp(t, fake, newSessions(t, true), path))

		assert.Equal(t, gateAuthenticated, h.App().gate, path)
		assert.Equal(t, PathOrders, h.App().Path(), path)
		assert.Equal(t, api.OrderQuery{Page: 0, Size: 24}, fake.lastQuery())
	}
}

func TestLoginSuccessMountsOrders(t *testing.T) {
	fake := &fakeAPI{
		loginResp: api.LoginResponse{Success: true, User: &api.User{ID: "7", Username: "admin", Role: "ADMIN"}, Token: "jwt"},
		orderPage: samplePage(),
		clients:   []api.ClientRecord{{ID: "1", Name: "Acme Corporation"}},
	}
	sessions := newSessions(t, false)
	h := newHarness(t, newTestApp(t, fake, sessions, "/"))

	h.Type("admin")
	h.Key(tea.KeyTab)
	h.Type("password")
	h.Key(tea.KeyEnter)

	require.Len(t, fake.logins, 1)
	assert.Equal(t, api.LoginRequest{Username: "admin", Password: "password"}, fake.logins[0])

	sess, err := sessions.Load()
	require.NoError(t, err)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "jwt", sess.Token)
	assert.Equal(t, "admin", sess.User.Name)
	assert.Equal(t, "7", sess.User.ID)

	app := h.App()
	assert.Equal(t, gateAuthenticated, app.gate)
	assert.Equal(t, PathOrders, app.Path())
	assert.Len(t, app.orders.rows, 2)
	assert.Equal(t, int64(100), app.orders.total)
	assert.Len(t, app.orders.clients, 1)

	view := app.View()
	assert.Contains(t, view, "Acme Corporation")
	assert.Contains(t, view, "Unknown Client")
	assert.Contains(t, view, "05/01/24")
	assert.Contains(t, view, "1 234,50")
	assert.Contains(t, view, "Clôturée")
	assert.Contains(t, view, "Non assignée")
}

func TestLoginRequiresFields(t *testing.T) {
	fake := &fakeAPI{}
	h := newHarness(t, newTestApp(t, fake, newSessions(t, false), "/"))

	h.Key(tea.KeyEnter)
	assert.Empty(t, fake.logins)
	assert.Equal(t, msgLoginRequired, h.App().login.message)

	h.Type("admin")
	h.Key(tea.KeyEnter)
	assert.Empty(t, fake.logins, "password is required too")
	assert.Equal(t, 1, h.App().login.focus)
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name string
		resp api.LoginResponse
		err  error
		want string
	}{
		{"flag false with message", api.LoginResponse{Success: false, Message: "Compte désactivé"}, nil, "Compte désactivé"},
		{"flag false without message", api.LoginResponse{Success: false}, nil, msgLoginFailed},
		{"server message", api.LoginResponse{}, fmt.Errorf("%w: %w", api.ErrUnauthorized, &api.APIError{StatusCode: 401, Message: "Invalid username or password"}), "Invalid username or password"},
		{"transport", api.LoginResponse{}, fmt.Errorf("%w: connection refused", api.ErrTransport), msgLoginError},
		{"missing user", api.LoginResponse{Success: true}, nil, msgLoginFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAPI{loginResp: tt.resp, loginErr: tt.err}
			sessions := newSessions(t, false)
			h := newHarness(t, newTestApp(t, fake, sessions, "/"))

			h.Type("admin")
			h.Key(tea.KeyTab)
			h.Type("secret")
			h.Key(tea.KeyEnter)

			app := h.App()
			assert.Equal(t, gateAnonymous, app.gate)
			assert.Equal(t, loginFailure, app.login.state)
			assert.Equal(t, tt.want, app.login.message)
			assert.Empty(t, app.login.password.Value())

			sess, err := sessions.Load()
			require.NoError(t, err)
			assert.False(t, sess.Authenticated)
		})
	}
}

func TestSessionLossReturnsToLogin(t *testing.T) {
	fake := &fakeAPI{orderPage: samplePage()}
	sessions := newSessions(t, true)
	h := newHarness(t, newTestApp(t, fake, sessions, "/orders"))
	require.Equal(t, gateAuthenticated, h.App().gate)

	// what the API client does on any 401
	require.NoError(t, sessions.Clear())
	h.settle()

	assert.Equal(t, gateAnonymous, h.App().gate)
	assert.Equal(t, loginIdle, h.App().login.state)
}

func TestReauthenticationLandsOnRoot(t *testing.T) {
	fake := &fakeAPI{orderPage: samplePage()}
	sessions := newSessions(t, false)
	h := newHarness(t, newTestApp(t, fake, sessions, "/unknown"))

	require.NoError(t, sessions.Save(session.New("", session.User{ID: "2", Name: "manager"})))
	h.settle()

	assert.Equal(t, gateAuthenticated, h.App().gate)
	assert.Equal(t, PathOrders, h.App().Path())
	assert.Equal(t, "manager", h.App().orders.user.Name)
}

func TestLogoutIsBestEffort(t *testing.T) {
	for _, logoutErr := range []error{nil, errors.New("network down")} {
		fake := &fakeAPI{orderPage: samplePage(), logoutErr: logoutErr}
		sessions := newSessions(t, true)
		h := newHarness(t, newTestApp(t, fake, sessions, "/"))

		h.Type("L")

		assert.Equal(t, 1, fake.logouts)
		assert.Equal(t, gateAnonymous, h.App().gate)
		sess, err := sessions.Load()
		require.NoError(t, err)
		assert.False(t, sess.Authenticated)
	}
}

func TestQuitKeys(t *testing.T) {
	h := newHarness(t, newTestApp(t, &fakeAPI{}, newSessions(t, false), "/"))
	h.Type("q")
	assert.False(t, h.quit, "q is text on the login screen")

	h.Key(tea.KeyCtrlC)
	assert.True(t, h.quit)

	h = newHarness(t, newTestApp(t, &fakeAPI{}, newSessions(t, true), "/"))
	h.Type("q")
	assert.True(t, h.quit)
}
