package orders

import (
	"strings"

	"orders_console/internal/api"

	"github.com/shopspring/decimal"
)

const DefaultPageSize = 24

// PageSizes are the selectable page sizes, in cycling order.
var PageSizes = []int{24, 48, 96}

// Option values offered by the filter selectors. The empty value means "all".
var (
	Expeditions    = []string{"EXPRESS", "STANDARD", "PRIORITY"}
	PaymentMethods = []string{"CARD", "BANK_TRANSFER", "CASH"}
	Statuses       = []string{StatusCompleted, StatusPending, StatusInProgress}
)

// Pagination is zero-based.
type Pagination struct {
	Page     int
	PageSize int
}

func NewPagination(size int) Pagination {
	return Pagination{PageSize: normalizeSize(size)}
}

func normalizeSize(size int) int {
	for _, s := range PageSizes {
		if s == size {
			return size
		}
	}
	return DefaultPageSize
}

// PageCount returns the number of pages for total rows, at least 1.
func (p Pagination) PageCount(total int64) int {
	size := int64(normalizeSize(p.PageSize))
	if total <= 0 {
		return 1
	}
	return int((total + size - 1) / size)
}

// Next advances one page unless the current page is the last one for total.
func (p Pagination) Next(total int64) (Pagination, bool) {
	if p.Page+1 >= p.PageCount(total) {
		return p, false
	}
	p.Page++
	return p, true
}

func (p Pagination) Prev() (Pagination, bool) {
	if p.Page <= 0 {
		return p, false
	}
	p.Page--
	return p, true
}

// WithSize changes the page size and returns to the first page.
func (p Pagination) WithSize(size int) Pagination {
	return Pagination{Page: 0, PageSize: normalizeSize(size)}
}

// CycleSize moves to the next entry of PageSizes.
func (p Pagination) CycleSize() Pagination {
	current := normalizeSize(p.PageSize)
	for i, s := range PageSizes {
		if s == current {
			return p.WithSize(PageSizes[(i+1)%len(PageSizes)])
		}
	}
	return p.WithSize(DefaultPageSize)
}

// Filter holds the optional order filters. Empty fields are not sent.
type Filter struct {
	ClientID      string
	Expedition    string
	PaymentMethod string
	Status        string
	MinAmount     string
	MaxAmount     string
}

func (f Filter) IsZero() bool {
	return f == Filter{}
}

// normalizeAmount turns a decimal comma into a point when the value parses.
// Anything else is sent as typed and left to the server to reject.
func normalizeAmount(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
	if err != nil {
		return value
	}
	return d.String()
}

// Query builds the request for one page. Page and size are always present.
func Query(p Pagination, f Filter) api.OrderQuery {
	return api.OrderQuery{
		Page:          max(p.Page, 0),
		Size:          normalizeSize(p.PageSize),
		ClientID:      strings.TrimSpace(f.ClientID),
		Expedition:    strings.TrimSpace(f.Expedition),
		PaymentMethod: strings.TrimSpace(f.PaymentMethod),
		Status:        strings.TrimSpace(f.Status),
		MinPrice:      normalizeAmount(f.MinAmount),
		MaxPrice:      normalizeAmount(f.MaxAmount),
	}
}

// CycleOption returns the option after current, wrapping through "" (all).
func CycleOption(options []string, current string) string {
	if current == "" {
		if len(options) == 0 {
			return ""
		}
		return options[0]
	}
	for i, o := range options {
		if o == current && i+1 < len(options) {
			return options[i+1]
		}
	}
	return ""
}
