package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"orders_console/internal/api"
	"orders_console/internal/config"
	"orders_console/internal/mockapi"
	"orders_console/internal/orders"
	"orders_console/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type RunnerSuite struct {
	suite.Suite

	server   *httptest.Server
	sessions *session.Manager
	runner   *Runner
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerSuite))
}

func (s *RunnerSuite) SetupTest() {
	store := mockapi.NewStore()
	s.Require().NoError(store.Seed(60, rand.New(rand.NewPCG(11, 12))))
	s.server = httptest.NewServer(mockapi.NewServer(config.Config{MockJWTSecret: "cli-test"}, store, zap.NewNop()).Router())

	cfg := config.Config{
		APIBaseURL: s.server.URL + "/api",
		Timeout:    5 * time.Second,
		PageSize:   orders.DefaultPageSize,
	}
	logger := zap.NewNop()
	s.sessions = session.NewManager(session.NewMemoryStore(), logger)
	client := api.NewClient(cfg, s.sessions, logger)

	s.runner = NewRunner(cfg, logger, s.sessions, client, orders.NewLoader(client, logger))
	s.stdout = &bytes.Buffer{}
	s.stderr = &bytes.Buffer{}
	s.runner.stdout = s.stdout
	s.runner.stderr = s.stderr
	s.runner.stdin = strings.NewReader("")
}

func (s *RunnerSuite) TearDownTest() {
	s.server.Close()
}

func (s *RunnerSuite) run(args ...string) error {
	s.stdout.Reset()
	return s.runner.run(args)
}

func (s *RunnerSuite) login() {
	s.Require().NoError(s.run("login", "-u", "admin", "-p", "password"))
}

func (s *RunnerSuite) decode(v any) {
	s.Require().NoError(json.Unmarshal(s.stdout.Bytes(), v), s.stdout.String())
}

func (s *RunnerSuite) TestLoginWithFlags() {
	s.login()
	s.Equal("Connecté en tant que admin (ADMIN) [id=1]\n", s.stdout.String())

	sess, err := s.sessions.Load()
	s.Require().NoError(err)
	s.True(sess.Authenticated)
	s.Equal("admin", sess.UserName())
	s.NotEmpty(s.sessions.Token())
}

func (s *RunnerSuite) TestLoginReadsPasswordFromStdin() {
	s.runner.stdin = strings.NewReader("password\n")

	s.Require().NoError(s.run("--json", "login", "manager"))

	var p profile
	s.decode(&p)
	s.Equal(profile{ID: "2", Name: "manager", Role: "MANAGER", Source: "login"}, p)
	s.Contains(s.stderr.String(), "Mot de passe")
}

func (s *RunnerSuite) TestLoginErrors() {
	err := s.run("login")
	s.Require().ErrorIs(err, ErrMissingUsername)

	err = s.run("login", "-u", "admin")
	s.Require().ErrorIs(err, ErrMissingPassword)

	err = s.run("login", "-u", "admin", "-p", "wrong")
	s.Require().ErrorIs(err, api.ErrUnauthorized)
	s.Equal("Accès refusé : Invalid username or password", FriendlyError(err))

	sess, loadErr := s.sessions.Load()
	s.Require().NoError(loadErr)
	s.False(sess.Authenticated)
}

func (s *RunnerSuite) TestCommandsRequireSession() {
	for _, cmd := range []string{"orders", "clients", "whoami"} {
		err := s.run(cmd)
		s.Require().ErrorIs(err, ErrNotAuthenticated, cmd)
	}
}

func (s *RunnerSuite) TestOrdersJSON() {
	s.login()

	s.Require().NoError(s.run("--json", "orders", "--page", "2"))

	var out struct {
		Page   int              `json:"page"`
		Size   int              `json:"size"`
		Total  int64            `json:"total"`
		Pages  int              `json:"pages"`
		Orders []map[string]any `json:"orders"`
	}
	s.decode(&out)
	s.Equal(2, out.Page)
	s.Equal(24, out.Size)
	s.Equal(int64(60), out.Total)
	s.Equal(3, out.Pages)
	s.Require().Len(out.Orders, 24)
	s.Equal("25", out.Orders[0]["id"])
	s.NotEmpty(out.Orders[0]["clientName"])
}

func (s *RunnerSuite) TestOrdersHumanWithClientFilter() {
	s.login()

	s.Require().NoError(s.run("orders", "--client", "3", "--size", "96"))

	out := s.stdout.String()
	s.Contains(out, "Filtres: client=Global Industries")
	s.Contains(out, "REFERENCE")
	s.Contains(out, "MOYEN DE PAIEMENT")
	s.Contains(out, "96 par page")
	s.NotContains(out, "Unknown Client")
}

func (s *RunnerSuite) TestOrdersInvalidFilter() {
	s.login()

	err := s.run("orders", "--page", "0")
	s.Require().ErrorIs(err, orders.ErrInvalidFilter)

	err = s.run("orders", "--size", "50")
	s.Require().ErrorIs(err, orders.ErrInvalidFilter)
	s.Contains(FriendlyError(err), "24, 48 or 96")
}

func (s *RunnerSuite) TestOrdersAmountsCheckedByServer() {
	s.login()

	err := s.run("orders", "--min", "abc")
	s.Require().Error(err)
	s.Equal("Invalid minPrice parameter", FriendlyError(err))

	s.Require().NoError(s.run("--json", "orders", "--min", "500", "--max", "100"))
	var out struct {
		Total   int64            `json:"total"`
		Filters map[string]any   `json:"filters"`
		Orders  []map[string]any `json:"orders"`
	}
	s.decode(&out)
	s.Zero(out.Total)
	s.Empty(out.Orders)
	s.Equal("500", out.Filters["minPrice"])
}

func (s *RunnerSuite) TestUsageListsSubcommands() {
	s.Require().NoError(s.run("--help"))

	usage := s.stderr.String()
	for _, line := range []string{
		"clients [list]", "clients show ID", "clients create", "clients update ID", "clients delete ID",
		"orders [list]", "orders show ID", "orders create", "orders update ID", "orders delete ID",
	} {
		s.Contains(usage, line)
	}
}

func (s *RunnerSuite) TestOrderLifecycle() {
	s.login()

	s.Require().NoError(s.run("--json", "orders", "create",
		"--client", "4", "--product", "CRM System", "--quantity", "2",
		"--price", "149,90", "--date", "2025-02-03", "--payment", "CASH", "--status", "PENDING"))
	var created api.Order
	s.decode(&created)
	s.Equal("61", created.ID.String())
	s.Equal("Innovation Systems", created.ClientName)
	s.Equal("149.9", created.Price.Decimal.String())

	s.Require().NoError(s.run("--json", "orders", "update", "61", "--status", "COMPLETED"))
	var updated api.Order
	s.decode(&updated)
	s.Equal("COMPLETED", updated.Status)
	s.Equal("CRM System", updated.ProductName)
	s.Equal("4", updated.ClientID.String())

	s.Require().NoError(s.run("orders", "show", "61"))
	s.Contains(s.stdout.String(), "Clôturée")

	s.Require().NoError(s.run("orders", "delete", "61"))
	s.Equal("Commande 61 supprimée.\n", s.stdout.String())

	err := s.run("orders", "show", "61")
	s.Require().Error(err)
	s.Equal("Order not found", FriendlyError(err))

	err = s.run("orders", "create", "--client", "4", "--product", "CRM System", "--quantity", "1", "--price", "10", "--date", "03/02/2025")
	s.Require().Error(err)
	s.Equal("Invalid order date", FriendlyError(err))

	err = s.run("orders", "create", "--client", "4", "--product", "CRM System", "--quantity", "1")
	s.Require().Error(err)
	s.Equal("Valid price is required", FriendlyError(err))

	err = s.run("orders", "show")
	s.Require().ErrorIs(err, api.ErrMissingID)
}

func (s *RunnerSuite) TestClientLifecycle() {
	s.login()

	s.Require().NoError(s.run("clients"))
	s.Contains(s.stdout.String(), "Acme Corporation")

	s.Require().NoError(s.run("--json", "clients", "create", "--name", "Nova", "--code", "NOVA009", "--city", "Lyon"))
	var created struct {
		Clients []api.ClientRecord `json:"clients"`
	}
	s.decode(&created)
	s.Require().Len(created.Clients, 1)
	s.Equal("9", created.Clients[0].ID.String())

	err := s.run("clients", "create", "--name", "Nova", "--code", "", "--city", "Lyon")
	s.Require().ErrorIs(err, api.ErrInvalidInput)

	s.Require().NoError(s.run("clients", "update", "9", "--city", "Paris"))
	s.Contains(s.stdout.String(), "Paris")
	s.Contains(s.stdout.String(), "NOVA009")

	s.Require().NoError(s.run("--json", "clients", "delete", "9"))
	var msg jsonMessage
	s.decode(&msg)
	s.Equal("deleted", msg.Result)
}

func (s *RunnerSuite) TestWhoamiAndLogout() {
	s.login()

	s.Require().NoError(s.run("--json", "whoami"))
	var p profile
	s.decode(&p)
	s.Equal("server", p.Source)
	s.Equal("admin", p.Name)

	s.Require().NoError(s.run("logout"))
	s.Equal("Déconnecté.\n", s.stdout.String())

	sess, err := s.sessions.Load()
	s.Require().NoError(err)
	s.False(sess.Authenticated)

	// Logging out twice is harmless.
	s.Require().NoError(s.run("logout"))
}

func (s *RunnerSuite) TestUnknownCommand() {
	err := s.run("invoices")
	s.Require().ErrorIs(err, ErrUnknownCommand)

	s.login()
	err = s.run("orders", "archive")
	s.Require().ErrorIs(err, ErrUnknownCommand)
}

func TestFriendlyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "not signed in", err: ErrNotAuthenticated, want: "Non connecté : lancez « orders-console login -u UTILISATEUR »."},
		{name: "expired", err: fmt.Errorf("%w: boom", api.ErrUnauthorized), want: "Session expirée : reconnectez-vous."},
		{name: "transport", err: fmt.Errorf("%w: dial", api.ErrTransport), want: "Une erreur est survenue lors de la connexion au serveur."},
		{name: "missing id", err: fmt.Errorf("orders show: %w", api.ErrMissingID), want: "Identifiant requis."},
		{name: "envelope", err: api.ErrUnrecognizedEnvelope, want: "Réponse inattendue du serveur."},
		{name: "server message", err: &api.APIError{Status: "400 Bad Request", Message: "Client code already exists"}, want: "Client code already exists"},
		{name: "failure flag", err: &api.FailureError{}, want: "Login failed"},
		{name: "other", err: errors.New("disk full"), want: "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FriendlyError(tt.err))
		})
	}
}

func TestRedactArgs(t *testing.T) {
	got := redactArgs([]string{"-u", "admin", "-p", "secret", "--password=hunter2", "orders"})
	require.Equal(t, []string{"-u", "admin", "-p", "***", "--password=***", "orders"}, got)
}
