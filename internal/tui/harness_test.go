package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	"orders_console/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

// harness runs a model the way tea.Program does: commands execute on
// goroutines and their messages are fed back into Update. Commands that
// block (session listeners) stay pending and deliver whenever they return.
type harness struct {
	t       *testing.T
	model   tea.Model
	pending []chan tea.Msg
	quit    bool
}

func newHarness(t *testing.T, model tea.Model) *harness {
	t.Helper()
	h := &harness{t: t, model: model}
	h.exec(model.Init())
	h.settle()
	return h
}

func (h *harness) exec(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	h.pending = append(h.pending, ch)
}

func (h *harness) send(msg tea.Msg) {
	model, cmd := h.model.Update(msg)
	h.model = model
	h.exec(cmd)
}

// Send delivers msg and waits until no command produces a message for a
// short quiet period.
func (h *harness) Send(msg tea.Msg) {
	h.t.Helper()
	h.send(msg)
	h.settle()
}

func (h *harness) Type(s string) {
	h.t.Helper()
	h.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) Key(k tea.KeyType) {
	h.t.Helper()
	h.Send(tea.KeyMsg{Type: k})
}

func (h *harness) settle() {
	const quiet = 100 * time.Millisecond
	deadline := time.Now().Add(5 * time.Second)
	idleSince := time.Now()

	for time.Since(idleSince) < quiet {
		if time.Now().After(deadline) {
			h.t.Fatal("model did not settle")
		}
		delivered := false
		for i := 0; i < len(h.pending); i++ {
			select {
			case msg := <-h.pending[i]:
				h.pending = append(h.pending[:i], h.pending[i+1:]...)
				i--
				delivered = true
				h.dispatch(msg)
			default:
			}
		}
		if delivered {
			idleSince = time.Now()
			continue
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func (h *harness) dispatch(msg tea.Msg) {
	switch msg := msg.(type) {
	case nil:
	case tea.BatchMsg:
		for _, cmd := range msg {
			h.exec(cmd)
		}
	case tea.QuitMsg:
		h.quit = true
	default:
		h.send(msg)
	}
}

func (h *harness) App() *App {
	return h.model.(*App)
}

type fakeAPI struct {
	mu sync.Mutex

	loginResp  api.LoginResponse
	loginErr   error
	logins     []api.LoginRequest
	logoutErr  error
	logouts    int
	orderPage  api.OrderPage
	orderErr   error
	queries    []api.OrderQuery
	clients    []api.ClientRecord
	clientsErr error

	// gate, when set, holds ListOrders until a value is received.
	gate chan struct{}
}

func (f *fakeAPI) Login(_ context.Context, creds api.LoginRequest) (api.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, creds)
	return f.loginResp, f.loginErr
}

func (f *fakeAPI) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return f.logoutErr
}

func (f *fakeAPI) ListOrders(_ context.Context, q api.OrderQuery) (api.OrderPage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	gate := f.gate
	page, err := f.orderPage, f.orderErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return page, err
}

func (f *fakeAPI) ListClients(context.Context) ([]api.ClientRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clients, f.clientsErr
}

func (f *fakeAPI) lastQuery() api.OrderQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return api.OrderQuery{}
	}
	return f.queries[len(f.queries)-1]
}

func (f *fakeAPI) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}
