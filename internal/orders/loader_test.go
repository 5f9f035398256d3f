package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"orders_console/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	mu      sync.Mutex
	queries []api.OrderQuery
	page    api.OrderPage
	err     error
	clients []api.ClientRecord
	cErr    error
}

func (f *fakeSource) ListOrders(_ context.Context, q api.OrderQuery) (api.OrderPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.page, f.err
}

func (f *fakeSource) ListClients(context.Context) ([]api.ClientRecord, error) {
	return f.clients, f.cErr
}

func TestLoaderFetch(t *testing.T) {
	src := &fakeSource{page: api.OrderPage{
		Orders: []api.Order{{ID: "O-1"}, {ID: "O-2", ClientName: "Acme"}},
		Total:  57,
	}}
	l := NewLoader(src, zap.NewNop())

	seq := l.Begin()
	page := l.Fetch(context.Background(), seq, Pagination{Page: 1, PageSize: 24}, Filter{ClientID: "3"})

	require.NoError(t, page.Err)
	assert.Equal(t, seq, page.Seq)
	assert.Len(t, page.Rows, 2)
	assert.Equal(t, UnknownClient, page.Rows[0].ClientName)
	assert.Equal(t, int64(57), page.Total)
	assert.Equal(t, []api.OrderQuery{{Page: 1, Size: 24, ClientID: "3"}}, src.queries)
}

func TestLoaderFetchDegrades(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		notice string
	}{
		{"unrecognized envelope", api.ErrUnrecognizedEnvelope, "Réponse inattendue du serveur."},
		{"transport", fmt.Errorf("%w: dial tcp", api.ErrTransport), "Serveur injoignable."},
		{"server message", &api.FailureError{Message: "Failed to retrieve orders"}, "Failed to retrieve orders"},
		{"unauthorized", fmt.Errorf("%w: %w", api.ErrUnauthorized, &api.APIError{StatusCode: 401, Message: "nope"}), "Session expirée, veuillez vous reconnecter."},
		{"other", errors.New("boom"), "Impossible de charger les commandes."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(&fakeSource{err: tt.err}, zap.NewNop())
			page := l.Fetch(context.Background(), l.Begin(), NewPagination(24), Filter{})
			assert.ErrorIs(t, page.Err, tt.err)
			assert.NotNil(t, page.Rows)
			assert.Empty(t, page.Rows)
			assert.Zero(t, page.Total)
			assert.Equal(t, tt.notice, page.Notice())
		})
	}
}

func TestLoaderSendsUncheckedAmounts(t *testing.T) {
	serverErr := &api.APIError{StatusCode: 400, Message: "Invalid minPrice parameter"}
	src := &fakeSource{err: serverErr}
	l := NewLoader(src, zap.NewNop())

	for _, f := range []Filter{{MinAmount: "abc"}, {MinAmount: "500", MaxAmount: "100"}, {MinAmount: "-5"}} {
		page := l.Fetch(context.Background(), l.Begin(), NewPagination(24), f)
		assert.ErrorIs(t, page.Err, serverErr)
		assert.Equal(t, "Invalid minPrice parameter", page.Notice())
	}
	require.Len(t, src.queries, 3)
	assert.Equal(t, "abc", src.queries[0].MinPrice)
	assert.Equal(t, "100", src.queries[1].MaxPrice)
	assert.Equal(t, "-5", src.queries[2].MinPrice)
}

func TestLoaderSequencing(t *testing.T) {
	l := NewLoader(&fakeSource{}, zap.NewNop())

	first := l.Begin()
	second := l.Begin()

	assert.False(t, l.IsLatest(first), "an earlier fetch is stale once a newer one starts")
	assert.True(t, l.IsLatest(second))
	assert.False(t, l.IsLatest(0))

	third := l.Begin()
	assert.Greater(t, third, second)
	assert.False(t, l.IsLatest(second))
}

func TestSequencerConcurrent(t *testing.T) {
	var s Sequencer
	var wg sync.WaitGroup
	seen := make(chan uint64, 100)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- s.Next()
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[uint64]bool{}
	for v := range seen {
		unique[v] = true
	}
	assert.Len(t, unique, 100)
	assert.True(t, s.IsLatest(100))
}

func TestLoaderClients(t *testing.T) {
	l := NewLoader(&fakeSource{clients: []api.ClientRecord{{ID: "1", Name: "Acme"}}}, zap.NewNop())
	clients, err := l.Clients(context.Background())
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	l = NewLoader(&fakeSource{cErr: api.ErrTransport}, zap.NewNop())
	clients, err = l.Clients(context.Background())
	assert.ErrorIs(t, err, api.ErrTransport)
	assert.NotNil(t, clients)
	assert.Empty(t, clients)
}
