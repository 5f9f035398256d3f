package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"orders_console/internal/api"
	"orders_console/internal/orders"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func (r *Runner) clients(ctx context.Context, opts *Options, args []string) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	sub := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "", "list":
		list, err := r.client.ListClients(ctx)
		if err != nil {
			return err
		}
		return r.writeClients(opts, list)
	case "show":
		id, _, err := idArg("clients show", args)
		if err != nil {
			return err
		}
		c, err := r.client.GetClient(ctx, id)
		if err != nil {
			return err
		}
		return r.writeClients(opts, []api.ClientRecord{c})
	case "create":
		input, err := r.parseClientInput("clients create", args, api.ClientInput{})
		if err != nil {
			return err
		}
		c, err := r.client.CreateClient(ctx, input)
		if err != nil {
			return err
		}
		r.logger.Info("client created", zap.String("id", c.ID.String()))
		return r.writeClients(opts, []api.ClientRecord{c})
	case "update":
		id, rest, err := idArg("clients update", args)
		if err != nil {
			return err
		}
		current, err := r.client.GetClient(ctx, id)
		if err != nil {
			return err
		}
		input, err := r.parseClientInput("clients update", rest, api.ClientInput{
			Name: current.Name,
			Code: current.Code,
			City: current.City,
		})
		if err != nil {
			return err
		}
		c, err := r.client.UpdateClient(ctx, id, input)
		if err != nil {
			return err
		}
		return r.writeClients(opts, []api.ClientRecord{c})
	case "delete":
		id, _, err := idArg("clients delete", args)
		if err != nil {
			return err
		}
		if err := r.client.DeleteClient(ctx, id); err != nil {
			return err
		}
		r.logger.Info("client deleted", zap.String("id", id))
		return r.writeMessage(opts, "deleted", fmt.Sprintf("Client %s supprimé.", id))
	default:
		return fmt.Errorf("%w: clients %q", ErrUnknownCommand, sub)
	}
}

func (r *Runner) parseClientInput(name string, args []string, input api.ClientInput) (api.ClientInput, error) {
	fs := newFlagSet(name, r.stderr)
	fs.StringVar(&input.Name, "name", input.Name, "Client name")
	fs.StringVar(&input.Code, "code", input.Code, "Client code")
	fs.StringVar(&input.City, "city", input.City, "Client city")
	if err := fs.Parse(args); err != nil {
		return api.ClientInput{}, err
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.TrimSpace(input.Code)
	input.City = strings.TrimSpace(input.City)
	return input, nil
}

func (r *Runner) orders(ctx context.Context, opts *Options, args []string) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	sub := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "", "list":
		return r.listOrders(ctx, opts, args)
	case "show":
		id, _, err := idArg("orders show", args)
		if err != nil {
			return err
		}
		o, err := r.client.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		return r.writeOrder(opts, o)
	case "create":
		input, err := r.parseOrderInput("orders create", args, api.OrderInput{Quantity: 1})
		if err != nil {
			return err
		}
		o, err := r.client.CreateOrder(ctx, input)
		if err != nil {
			return err
		}
		r.logger.Info("order created", zap.String("id", o.ID.String()))
		return r.writeOrder(opts, o)
	case "update":
		id, rest, err := idArg("orders update", args)
		if err != nil {
			return err
		}
		current, err := r.client.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		input, err := r.parseOrderInput("orders update", rest, orderInputFrom(current))
		if err != nil {
			return err
		}
		o, err := r.client.UpdateOrder(ctx, id, input)
		if err != nil {
			return err
		}
		return r.writeOrder(opts, o)
	case "delete":
		id, _, err := idArg("orders delete", args)
		if err != nil {
			return err
		}
		if err := r.client.DeleteOrder(ctx, id); err != nil {
			return err
		}
		r.logger.Info("order deleted", zap.String("id", id))
		return r.writeMessage(opts, "deleted", fmt.Sprintf("Commande %s supprimée.", id))
	default:
		return fmt.Errorf("%w: orders %q", ErrUnknownCommand, sub)
	}
}

func (r *Runner) parseOrderInput(name string, args []string, input api.OrderInput) (api.OrderInput, error) {
	price := ""
	if !input.Price.IsZero() {
		price = input.Price.String()
	}
	fs := newFlagSet(name, r.stderr)
	fs.Int64Var(&input.Client.ID, "client", input.Client.ID, "Client id")
	fs.StringVar(&input.ProductName, "product", input.ProductName, "Product name")
	fs.IntVar(&input.Quantity, "quantity", input.Quantity, "Quantity")
	fs.StringVar(&price, "price", price, "Unit price")
	fs.StringVar(&input.OrderDate, "date", input.OrderDate, "Order date (YYYY-MM-DD)")
	fs.IntVar(&input.Type, "type", input.Type, "Order type")
	fs.StringVar(&input.PaymentMethod, "payment", input.PaymentMethod, "Payment method")
	fs.StringVar(&input.Expedition, "expedition", input.Expedition, "Expedition")
	fs.StringVar(&input.Status, "status", input.Status, "Status")
	if err := fs.Parse(args); err != nil {
		return api.OrderInput{}, err
	}

	price = strings.ReplaceAll(strings.TrimSpace(price), ",", ".")
	if price != "" {
		d, err := decimal.NewFromString(price)
		if err != nil {
			return api.OrderInput{}, fmt.Errorf("%w: price %q is not a number", api.ErrInvalidInput, price)
		}
		input.Price = d
	}
	input.OrderDate = strings.TrimSpace(input.OrderDate)
	input.ProductName = strings.TrimSpace(input.ProductName)
	return input, nil
}

// orderInputFrom seeds an update with the current values. Servers that do
// not expose the client id require --client again.
func orderInputFrom(o api.Order) api.OrderInput {
	input := api.OrderInput{
		ProductName:   o.ProductName,
		Quantity:      o.Quantity,
		OrderDate:     o.OrderDate,
		PaymentMethod: o.PaymentMethod,
		Expedition:    o.Expedition,
		Status:        o.Status,
	}
	if o.Price.Valid {
		input.Price = o.Price.Decimal
	}
	if id, err := strconv.ParseInt(o.ClientID.String(), 10, 64); err == nil {
		input.Client.ID = id
	}
	if t, err := strconv.Atoi(o.Type.String()); err == nil {
		input.Type = t
	}
	return input
}

type orderListing struct {
	Pagination  orders.Pagination
	Filter      orders.Filter
	ClientLabel string
	Rows        []orders.Row
	Total       int64
}

// listOrders fetches the client list and the order page concurrently; the
// client list only labels the client filter.
func (r *Runner) listOrders(ctx context.Context, opts *Options, args []string) error {
	var (
		page   int
		size   int
		filter orders.Filter
	)
	fs := newFlagSet("orders", r.stderr)
	fs.IntVar(&page, "page", 1, "Page number, starting at 1")
	fs.IntVar(&size, "size", opts.PageSize, "Page size (24, 48 or 96)")
	fs.StringVar(&filter.ClientID, "client", "", "Client id")
	fs.StringVar(&filter.Expedition, "expedition", "", "Expedition (EXPRESS, STANDARD, PRIORITY)")
	fs.StringVar(&filter.PaymentMethod, "payment", "", "Payment method (CARD, BANK_TRANSFER, CASH)")
	fs.StringVar(&filter.Status, "status", "", "Status (COMPLETED, PENDING, IN_PROGRESS)")
	fs.StringVar(&filter.MinAmount, "min", "", "Minimum amount")
	fs.StringVar(&filter.MaxAmount, "max", "", "Maximum amount")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if page < 1 {
		return fmt.Errorf("%w: page must be at least 1", orders.ErrInvalidFilter)
	}
	if !slices.Contains(orders.PageSizes, size) {
		return fmt.Errorf("%w: page size must be 24, 48 or 96, got %d", orders.ErrInvalidFilter, size)
	}

	pagination := orders.NewPagination(size)
	pagination.Page = page - 1

	var (
		clients []api.ClientRecord
		result  orders.Page
	)
	g, gctx := errgroup.WithContext(ctx)
	if filter.ClientID != "" {
		g.Go(func() error {
			// Labelling is cosmetic; a failed client fetch keeps the raw id.
			clients, _ = r.loader.Clients(gctx)
			return nil
		})
	}
	g.Go(func() error {
		result = r.loader.Fetch(gctx, r.loader.Begin(), pagination, filter)
		return result.Err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return r.writeOrders(opts, orderListing{
		Pagination:  pagination,
		Filter:      filter,
		ClientLabel: clientLabel(clients, filter.ClientID),
		Rows:        result.Rows,
		Total:       result.Total,
	})
}

func clientLabel(clients []api.ClientRecord, id string) string {
	if id == "" {
		return ""
	}
	for _, c := range clients {
		if c.ID.String() == id {
			return c.Name
		}
	}
	return id
}

func idArg(name string, args []string) (string, []string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%s: %w", name, api.ErrMissingID)
	}
	return strings.TrimSpace(args[0]), args[1:], nil
}

func formatAmount(d decimal.NullDecimal) string {
	if s := orders.FormatAmount(d); s != "" {
		return s
	}
	return "-"
}
