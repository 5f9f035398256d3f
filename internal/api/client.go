package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"orders_console/internal/config"
	"orders_console/internal/validation"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	apiMediaType    = "application/json"
	requestIDHeader = "X-Request-ID"
)

// SessionStore is the slice of the session context the client needs:
// the current bearer token and the ability to drop the session on 401.
type SessionStore interface {
	Token() string
	Clear() error
}

type Client struct {
	http     *resty.Client
	sessions SessionStore
	logger   *zap.Logger
}

func NewClient(cfg config.Config, sessions SessionStore, logger *zap.Logger) *Client {
	c := &Client{
		sessions: sessions,
		logger:   logger.Named("api"),
	}

	c.http = resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetHeader("Accept", apiMediaType).
		SetHeader("Content-Type", apiMediaType).
		SetTimeout(cfg.Timeout).
		SetLogger(c.logger.Sugar()).
		OnBeforeRequest(c.authorize).
		OnAfterResponse(c.rejectUnauthorized)

	return c
}

// authorize attaches the bearer token and a request id to every call.
func (c *Client) authorize(_ *resty.Client, req *resty.Request) error {
	if token := strings.TrimSpace(c.sessions.Token()); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	if req.Header.Get(requestIDHeader) == "" {
		req.SetHeader(requestIDHeader, uuid.NewString())
	}
	return nil
}

// rejectUnauthorized is the single cross-cutting failure policy: any 401
// drops the session (subscribers return to the login screen) and fails the
// call with ErrUnauthorized.
func (c *Client) rejectUnauthorized(_ *resty.Client, resp *resty.Response) error {
	if !isUnauthorized(resp) {
		return nil
	}

	c.logger.Warn("unauthorized response; clearing session",
		zap.String("method", resp.Request.Method),
		zap.String("url", resp.Request.URL),
		zap.String("request_id", resp.Request.Header.Get(requestIDHeader)),
	)
	if err := c.sessions.Clear(); err != nil {
		c.logger.Error("clear session after 401", zap.Error(err))
	}
	return fmt.Errorf("%w: %w", ErrUnauthorized, apiErrorFromResponse(resp))
}

func (c *Client) Login(ctx context.Context, creds LoginRequest) (LoginResponse, error) {
	if err := validation.Validate(creds); err != nil {
		return LoginResponse{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &resp); err != nil {
		return LoginResponse{}, err
	}
	return resp, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var resp userEnvelope
	if err := c.doEnvelope(ctx, http.MethodGet, "/auth/me", nil, nil, &resp); err != nil {
		return User{}, err
	}
	if resp.User == nil {
		return User{}, fmt.Errorf("%w: missing user", ErrMalformedBody)
	}
	return *resp.User, nil
}

func (c *Client) ListClients(ctx context.Context) ([]ClientRecord, error) {
	var resp clientsEnvelope
	if err := c.doEnvelope(ctx, http.MethodGet, "/clients", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Clients == nil {
		return []ClientRecord{}, nil
	}
	return resp.Clients, nil
}

func (c *Client) GetClient(ctx context.Context, id string) (ClientRecord, error) {
	path, err := resourcePath("/clients", id)
	if err != nil {
		return ClientRecord{}, err
	}
	var resp clientEnvelope
	if err := c.doEnvelope(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return ClientRecord{}, err
	}
	if resp.Client == nil {
		return ClientRecord{}, fmt.Errorf("%w: missing client", ErrMalformedBody)
	}
	return *resp.Client, nil
}

func (c *Client) CreateClient(ctx context.Context, input ClientInput) (ClientRecord, error) {
	return c.writeClient(ctx, http.MethodPost, "/clients", input)
}

func (c *Client) UpdateClient(ctx context.Context, id string, input ClientInput) (ClientRecord, error) {
	path, err := resourcePath("/clients", id)
	if err != nil {
		return ClientRecord{}, err
	}
	return c.writeClient(ctx, http.MethodPut, path, input)
}

func (c *Client) DeleteClient(ctx context.Context, id string) error {
	path, err := resourcePath("/clients", id)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) writeClient(ctx context.Context, method, path string, input ClientInput) (ClientRecord, error) {
	if err := validation.Validate(input); err != nil {
		return ClientRecord{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var resp clientEnvelope
	if err := c.doEnvelope(ctx, method, path, nil, input, &resp); err != nil {
		return ClientRecord{}, err
	}
	if resp.Client == nil {
		return ClientRecord{}, fmt.Errorf("%w: missing client", ErrMalformedBody)
	}
	return *resp.Client, nil
}

// ListOrders fetches one page. The body goes through DecodeOrderPage, so a
// response with neither envelope shape returns ErrUnrecognizedEnvelope.
func (c *Client) ListOrders(ctx context.Context, query OrderQuery) (OrderPage, error) {
	resp, err := c.send(ctx, http.MethodGet, "/orders", query.Params(), nil)
	if err != nil {
		return OrderPage{}, err
	}
	page, err := DecodeOrderPage(resp.Body())
	if err != nil {
		return OrderPage{}, err
	}
	c.logger.Debug("orders page",
		zap.Int("rows", len(page.Orders)),
		zap.Int64("total", page.Total),
		zap.String("envelope", string(page.Envelope)),
	)
	return page, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (Order, error) {
	path, err := resourcePath("/orders", id)
	if err != nil {
		return Order{}, err
	}
	var resp orderEnvelope
	if err := c.doEnvelope(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return Order{}, err
	}
	if resp.Order == nil {
		return Order{}, fmt.Errorf("%w: missing order", ErrMalformedBody)
	}
	return *resp.Order, nil
}

func (c *Client) CreateOrder(ctx context.Context, input OrderInput) (Order, error) {
	return c.writeOrder(ctx, http.MethodPost, "/orders", input)
}

func (c *Client) UpdateOrder(ctx context.Context, id string, input OrderInput) (Order, error) {
	path, err := resourcePath("/orders", id)
	if err != nil {
		return Order{}, err
	}
	return c.writeOrder(ctx, http.MethodPut, path, input)
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	path, err := resourcePath("/orders", id)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) writeOrder(ctx context.Context, method, path string, input OrderInput) (Order, error) {
	if err := validation.Validate(input); err != nil {
		return Order{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	var resp orderEnvelope
	if err := c.doEnvelope(ctx, method, path, nil, input, &resp); err != nil {
		return Order{}, err
	}
	if resp.Order == nil {
		return Order{}, fmt.Errorf("%w: missing order", ErrMalformedBody)
	}
	return *resp.Order, nil
}

// do decodes the body into result as-is; the caller inspects any success
// flag itself.
func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, result any) error {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	data, err := unwrapBody(resp.Body())
	if err != nil {
		return err
	}
	return decodeInto(data, result)
}

// doEnvelope additionally turns success:false into a *FailureError.
func (c *Client) doEnvelope(ctx context.Context, method, path string, query map[string]string, body, result any) error {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	return decodeEnvelope(resp.Body(), result)
}

func (c *Client) send(ctx context.Context, method, path string, query map[string]string, body any) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if resp.IsError() {
		return nil, apiErrorFromResponse(resp)
	}
	return resp, nil
}

func resourcePath(collection, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrMissingID
	}
	return collection + "/" + url.PathEscape(id), nil
}
