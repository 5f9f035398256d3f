package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"orders_console/internal/api"
	"orders_console/internal/orders"
)

type jsonOrders struct {
	Page        int          `json:"page"`
	Size        int          `json:"size"`
	Total       int64        `json:"total"`
	Pages       int          `json:"pages"`
	Filters     jsonFilters  `json:"filters"`
	ClientLabel string       `json:"client_label,omitempty"`
	Orders      []orders.Row `json:"orders"`
}

type jsonFilters struct {
	ClientID      string `json:"clientId,omitempty"`
	Expedition    string `json:"expedition,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	Status        string `json:"status,omitempty"`
	MinPrice      string `json:"minPrice,omitempty"`
	MaxPrice      string `json:"maxPrice,omitempty"`
}

type jsonMessage struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

func (r *Runner) writeJSON(v any) error {
	enc := json.NewEncoder(r.stdout)
	return enc.Encode(v)
}

func (r *Runner) writeMessage(opts *Options, result, message string) error {
	if opts.JSON {
		return r.writeJSON(jsonMessage{Result: result, Message: message})
	}
	fmt.Fprintln(r.stdout, message)
	return nil
}

func (r *Runner) writeProfile(opts *Options, p profile, title string) error {
	if opts.JSON {
		return r.writeJSON(p)
	}
	fmt.Fprintf(r.stdout, "%s %s", title, p.Name)
	if p.Role != "" {
		fmt.Fprintf(r.stdout, " (%s)", p.Role)
	}
	fmt.Fprintf(r.stdout, " [id=%s]\n", p.ID)
	return nil
}

func (r *Runner) writeClients(opts *Options, list []api.ClientRecord) error {
	if opts.JSON {
		return r.writeJSON(struct {
			Clients []api.ClientRecord `json:"clients"`
		}{Clients: list})
	}
	if len(list) == 0 {
		fmt.Fprintln(r.stdout, "- (aucun client)")
		return nil
	}

	tw := newTable(r.stdout)
	fmt.Fprintln(tw, "ID\tNOM\tCODE\tVILLE")
	for _, c := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Name, dash(c.Code), dash(c.City))
	}
	return tw.Flush()
}

func (r *Runner) writeOrder(opts *Options, o api.Order) error {
	if opts.JSON {
		return r.writeJSON(o)
	}
	row := orders.ToRow(o)
	badge := orders.StatusBadge(row.Status)

	tw := newTable(r.stdout)
	fmt.Fprintf(tw, "Référence\t%s\n", row.ID)
	fmt.Fprintf(tw, "Produit\t%s\n", dash(o.ProductName))
	fmt.Fprintf(tw, "Client\t%s\n", row.ClientName)
	fmt.Fprintf(tw, "Quantité\t%d\n", o.Quantity)
	fmt.Fprintf(tw, "Montant\t%s\n", formatAmount(row.Amount))
	fmt.Fprintf(tw, "Date\t%s\n", dash(orders.FormatDate(row.Date)))
	fmt.Fprintf(tw, "Type\t%s\n", dash(row.Type))
	fmt.Fprintf(tw, "Paiement\t%s\n", dash(row.Payment))
	fmt.Fprintf(tw, "Expédition\t%s\n", dash(row.Shipping))
	fmt.Fprintf(tw, "Statut\t%s\n", dash(badge.Label))
	return tw.Flush()
}

func (r *Runner) writeOrders(opts *Options, l orderListing) error {
	pages := l.Pagination.PageCount(l.Total)
	if opts.JSON {
		return r.writeJSON(jsonOrders{
			Page:        l.Pagination.Page + 1,
			Size:        l.Pagination.PageSize,
			Total:       l.Total,
			Pages:       pages,
			Filters:     filtersOf(l.Filter),
			ClientLabel: l.ClientLabel,
			Orders:      l.Rows,
		})
	}

	if filters := describeFilters(l); filters != "" {
		fmt.Fprintf(r.stdout, "Filtres: %s\n\n", filters)
	}
	if len(l.Rows) == 0 {
		fmt.Fprintln(r.stdout, "- (aucune commande)")
	} else {
		tw := newTable(r.stdout)
		fmt.Fprintln(tw, "REFERENCE\tDATE\tCLIENT\tTYPE\tMOYEN DE PAIEMENT\tEXPEDITION\tMONTANT\tSTATUS")
		for _, row := range l.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				row.ID,
				dash(orders.FormatDate(row.Date)),
				row.ClientName,
				dash(row.Type),
				dash(row.Payment),
				dash(row.Shipping),
				formatAmount(row.Amount),
				dash(orders.StatusBadge(row.Status).Label),
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	fmt.Fprintf(r.stdout, "\nPage %d/%d · %d commandes · %d par page\n",
		l.Pagination.Page+1, pages, l.Total, l.Pagination.PageSize)
	return nil
}

func filtersOf(f orders.Filter) jsonFilters {
	q := orders.Query(orders.Pagination{}, f)
	return jsonFilters{
		ClientID:      q.ClientID,
		Expedition:    q.Expedition,
		PaymentMethod: q.PaymentMethod,
		Status:        q.Status,
		MinPrice:      q.MinPrice,
		MaxPrice:      q.MaxPrice,
	}
}

func describeFilters(l orderListing) string {
	f := filtersOf(l.Filter)
	var parts []string
	if f.ClientID != "" {
		parts = append(parts, "client="+l.ClientLabel)
	}
	if f.Expedition != "" {
		parts = append(parts, "expédition="+f.Expedition)
	}
	if f.PaymentMethod != "" {
		parts = append(parts, "paiement="+f.PaymentMethod)
	}
	if f.Status != "" {
		parts = append(parts, "statut="+f.Status)
	}
	if f.MinPrice != "" {
		parts = append(parts, "min="+f.MinPrice)
	}
	if f.MaxPrice != "" {
		parts = append(parts, "max="+f.MaxPrice)
	}
	return strings.Join(parts, ", ")
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
