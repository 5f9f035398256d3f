package orders

import (
	"context"
	"errors"

	"orders_console/internal/api"

	"go.uber.org/zap"
)

// Source is the part of the API client the order list reads from.
type Source interface {
	ListOrders(ctx context.Context, query api.OrderQuery) (api.OrderPage, error)
	ListClients(ctx context.Context) ([]api.ClientRecord, error)
}

// Page is the outcome of one order fetch. A failed fetch still yields a
// usable page: no rows, zero total, and Err set.
type Page struct {
	Seq   uint64
	Query api.OrderQuery
	Rows  []Row
	Total int64
	Err   error
}

func (p Page) Notice() string {
	return FriendlyError(p.Err)
}

type Loader struct {
	source Source
	seq    Sequencer
	logger *zap.Logger
}

func NewLoader(source Source, logger *zap.Logger) *Loader {
	return &Loader{
		source: source,
		logger: logger.Named("orders"),
	}
}

// Begin reserves the sequence number for a new fetch. Any earlier fetch
// still in flight becomes stale.
func (l *Loader) Begin() uint64 {
	return l.seq.Next()
}

func (l *Loader) IsLatest(seq uint64) bool {
	return l.seq.IsLatest(seq)
}

// Fetch runs one order request tagged with seq.
func (l *Loader) Fetch(ctx context.Context, seq uint64, p Pagination, f Filter) Page {
	query := Query(p, f)
	page := Page{Seq: seq, Query: query, Rows: []Row{}}

	result, err := l.source.ListOrders(ctx, query)
	if err != nil {
		level := l.logger.Warn
		if errors.Is(err, api.ErrUnauthorized) {
			level = l.logger.Info
		}
		level("order fetch failed",
			zap.Uint64("seq", seq),
			zap.Int("page", query.Page),
			zap.Int("size", query.Size),
			zap.Error(err),
		)
		page.Err = err
		return page
	}

	page.Rows = ToRows(result.Orders)
	page.Total = result.Total
	l.logger.Debug("order fetch done",
		zap.Uint64("seq", seq),
		zap.Int("rows", len(page.Rows)),
		zap.Int64("total", page.Total),
	)
	return page
}

// Clients loads the selector options; failures degrade to an empty list.
func (l *Loader) Clients(ctx context.Context) ([]api.ClientRecord, error) {
	clients, err := l.source.ListClients(ctx)
	if err != nil {
		l.logger.Warn("client list fetch failed", zap.Error(err))
		return []api.ClientRecord{}, err
	}
	return clients, nil
}
