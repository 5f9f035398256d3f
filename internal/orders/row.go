package orders

import (
	"strings"
	"time"

	"orders_console/internal/api"

	"github.com/shopspring/decimal"
)

const UnknownClient = "Unknown Client"

// Row is the display shape of an order.
type Row struct {
	ID         string              `json:"id"`
	Date       string              `json:"date"`
	ClientName string              `json:"clientName"`
	Type       string              `json:"type"`
	Payment    string              `json:"payment"`
	Shipping   string              `json:"shipping"`
	Amount     decimal.NullDecimal `json:"amount"`
	Status     string              `json:"status"`
}

func ToRow(o api.Order) Row {
	client := strings.TrimSpace(o.ClientName)
	if client == "" {
		client = UnknownClient
	}
	return Row{
		ID:         o.ID.String(),
		Date:       o.OrderDate,
		ClientName: client,
		Type:       o.Type.String(),
		Payment:    o.PaymentMethod,
		Shipping:   o.Expedition,
		Amount:     o.Price,
		Status:     o.Status,
	}
}

func ToRows(list []api.Order) []Row {
	rows := make([]Row, 0, len(list))
	for _, o := range list {
		rows = append(rows, ToRow(o))
	}
	return rows
}

// FormatDate renders YYYY-MM-DD as DD/MM/YY. Timestamps render as DD/MM/YYYY;
// anything unparseable is returned as-is.
func FormatDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t.Format("02/01/06")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", time.DateTime} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return value
}

const groupSeparator = " "

// FormatAmount renders two decimals with a comma and groups thousands with a
// space (1 234,50). Missing and zero amounts render blank.
func FormatAmount(amount decimal.NullDecimal) string {
	if !amount.Valid || amount.Decimal.IsZero() {
		return ""
	}
	fixed := amount.Decimal.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	return sign + groupThousands(intPart) + "," + fracPart
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(groupSeparator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
