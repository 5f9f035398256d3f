package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexString accepts JSON strings and numbers. Backends disagree on whether
// ids and order types are numeric.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flex string: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

type User struct {
	ID        FlexString `json:"id"`
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	CreatedAt string     `json:"createdAt,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    *User  `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
}

type ClientRecord struct {
	ID   FlexString `json:"id,omitempty"`
	Name string     `json:"name"`
	Code string     `json:"code,omitempty"`
	City string     `json:"city,omitempty"`
}

type ClientInput struct {
	Name string `json:"name" validate:"required,notblank"`
	Code string `json:"code" validate:"required,notblank"`
	City string `json:"city" validate:"required,notblank"`
}

// Order is the server order record. Price is null-safe because older rows
// may carry no amount.
type Order struct {
	ID            FlexString          `json:"id"`
	ProductName   string              `json:"productName,omitempty"`
	ClientID      FlexString          `json:"clientId,omitempty"`
	ClientName    string              `json:"clientName,omitempty"`
	Quantity      int                 `json:"quantity,omitempty"`
	Price         decimal.NullDecimal `json:"price"`
	OrderDate     string              `json:"orderDate,omitempty"`
	Type          FlexString          `json:"type,omitempty"`
	PaymentMethod string              `json:"paymentMethod,omitempty"`
	Expedition    string              `json:"expedition,omitempty"`
	Status        string              `json:"status,omitempty"`
	CreatedAt     string              `json:"createdAt,omitempty"`
}

type ClientRef struct {
	ID int64 `json:"id"`
}

type OrderInput struct {
	Client        ClientRef       `json:"client"`
	ProductName   string          `json:"productName" validate:"required,notblank"`
	Quantity      int             `json:"quantity" validate:"required"`
	Price         decimal.Decimal `json:"price"`
	OrderDate     string          `json:"orderDate,omitempty"`
	Type          int             `json:"type,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Expedition    string          `json:"expedition,omitempty"`
	Status        string          `json:"status,omitempty"`
}

// OrderQuery carries one server-paginated request. Empty filters are not
// sent.
type OrderQuery struct {
	Page          int
	Size          int
	ClientID      string
	Expedition    string
	PaymentMethod string
	Status        string
	MinPrice      string
	MaxPrice      string
}

func (q OrderQuery) Params() map[string]string {
	params := map[string]string{
		"page": strconv.Itoa(q.Page),
		"size": strconv.Itoa(q.Size),
	}
	optional := map[string]string{
		"clientId":      q.ClientID,
		"expedition":    q.Expedition,
		"paymentMethod": q.PaymentMethod,
		"status":        q.Status,
		"minPrice":      q.MinPrice,
		"maxPrice":      q.MaxPrice,
	}
	for key, value := range optional {
		if v := strings.TrimSpace(value); v != "" {
			params[key] = v
		}
	}
	return params
}

// Envelope names the order-list response shape a page was decoded from.
type Envelope string

const (
	EnvelopeContent Envelope = "content"
	EnvelopeLegacy  Envelope = "legacy"
)

type OrderPage struct {
	Orders   []Order
	Total    int64
	Envelope Envelope
}

type statusEnvelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type userEnvelope struct {
	User *User `json:"user"`
}

type clientsEnvelope struct {
	Clients []ClientRecord `json:"clients"`
}

type clientEnvelope struct {
	Client *ClientRecord `json:"client"`
}

type orderEnvelope struct {
	Order *Order `json:"order"`
}

type orderPageEnvelope struct {
	Content       json.RawMessage `json:"content"`
	Orders        json.RawMessage `json:"orders"`
	TotalElements *int64          `json:"totalElements"`
	Total         *int64          `json:"total"`
}
