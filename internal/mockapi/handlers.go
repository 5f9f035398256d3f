package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultPage = 0
	defaultSize = 10
	maxPageSize = 500
)

type loginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type clientRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
	City string `json:"city"`
}

type orderRequest struct {
	Client *struct {
		ID *int64 `json:"id"`
	} `json:"client"`
	ProductName   string              `json:"productName"`
	Quantity      *int                `json:"quantity"`
	Price         decimal.NullDecimal `json:"price"`
	OrderDate     string              `json:"orderDate"`
	Type          int                 `json:"type"`
	PaymentMethod string              `json:"paymentMethod"`
	Expedition    string              `json:"expedition"`
	Status        string              `json:"status"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == nil || req.Password == nil {
		writeFailure(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := s.store.Authenticate(*req.Username, *req.Password)
	if err != nil {
		s.logger.Info("login rejected", zap.String("username", *req.Username))
		writeFailure(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("issue token", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "Login failed")
		return
	}

	s.logger.Info("login", zap.String("username", user.Username), zap.String("role", user.Role))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if claims := claimsFrom(r.Context()); claims != nil {
		s.tokens.Revoke(claims)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logout successful",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	if claims == nil {
		writeFailure(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	user, err := s.store.UserByName(claims.Subject)
	if err != nil {
		writeFailure(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

func (s *Server) handleListClients(w http.ResponseWriter, _ *http.Request) {
	clients := s.store.Clients()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Clients retrieved successfully",
		"clients": clients,
		"count":   len(clients),
	})
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	client, err := s.store.Client(id)
	if err != nil {
		writeFailure(w, http.StatusNotFound, "Client not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Client retrieved successfully",
		"client":  client,
	})
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeClient(w, r)
	if !ok {
		return
	}
	client, err := s.store.CreateClient(input)
	if err != nil {
		s.writeStoreError(w, err, "Client not found")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Client created successfully",
		"client":  client,
	})
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := s.store.Client(id); err != nil {
		writeFailure(w, http.StatusNotFound, "Client not found")
		return
	}
	input, ok := decodeClient(w, r)
	if !ok {
		return
	}
	client, err := s.store.UpdateClient(id, input)
	if err != nil {
		s.writeStoreError(w, err, "Client not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Client updated successfully",
		"client":  client,
	})
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteClient(id); err != nil {
		s.writeStoreError(w, err, "Client not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), defaultPage)
	if err != nil || page < 0 {
		writeFailure(w, http.StatusBadRequest, "Invalid page parameter")
		return
	}
	size, err := intParam(q.Get("size"), defaultSize)
	if err != nil || size < 1 || size > maxPageSize {
		writeFailure(w, http.StatusBadRequest, "Invalid size parameter")
		return
	}
	filter, msg := parseOrderFilter(q.Get)
	if msg != "" {
		writeFailure(w, http.StatusBadRequest, msg)
		return
	}

	orders, total := s.store.Orders(filter, page, size)
	totalPages := (total + size - 1) / size

	if s.envelope == EnvelopeContent {
		writeJSON(w, http.StatusOK, map[string]any{
			"content":       orders,
			"totalElements": total,
			"totalPages":    totalPages,
			"number":        page,
			"size":          size,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Orders retrieved successfully",
		"orders":        orders,
		"totalElements": total,
		"totalPages":    totalPages,
		"currentPage":   page,
		"pageSize":      size,
		"hasNext":       page+1 < totalPages,
		"hasPrevious":   page > 0,
	})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := s.store.Order(id)
	if err != nil {
		writeFailure(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Order retrieved successfully",
		"order":   order,
	})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeOrder(w, r)
	if !ok {
		return
	}
	order, err := s.store.CreateOrder(input)
	if err != nil {
		s.writeStoreError(w, err, "Client not found")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Order created successfully",
		"order":   order,
	})
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := s.store.Order(id); err != nil {
		writeFailure(w, http.StatusNotFound, "Order not found")
		return
	}
	input, ok := decodeOrder(w, r)
	if !ok {
		return
	}
	order, err := s.store.UpdateOrder(id, input)
	if err != nil {
		s.writeStoreError(w, err, "Client not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Order updated successfully",
		"order":   order,
	})
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteOrder(id); err != nil {
		s.writeStoreError(w, err, "Order not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeFailure(w, http.StatusNotFound, notFound)
	case errors.Is(err, ErrDuplicateCode):
		writeFailure(w, http.StatusBadRequest, "Client code already exists")
	default:
		s.logger.Error("store", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeClient(w http.ResponseWriter, r *http.Request) (Client, bool) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return Client{}, false
	}
	c := Client{
		Name: strings.TrimSpace(req.Name),
		Code: strings.TrimSpace(req.Code),
		City: strings.TrimSpace(req.City),
	}
	switch {
	case c.Name == "":
		writeFailure(w, http.StatusBadRequest, "Client name is required")
	case c.Code == "":
		writeFailure(w, http.StatusBadRequest, "Client code is required")
	case c.City == "":
		writeFailure(w, http.StatusBadRequest, "Client city is required")
	default:
		return c, true
	}
	return Client{}, false
}

func decodeOrder(w http.ResponseWriter, r *http.Request) (Order, bool) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return Order{}, false
	}

	switch {
	case req.Client == nil || req.Client.ID == nil:
		writeFailure(w, http.StatusBadRequest, "Client is required")
	case strings.TrimSpace(req.ProductName) == "":
		writeFailure(w, http.StatusBadRequest, "Product name is required")
	case req.Quantity == nil || *req.Quantity <= 0:
		writeFailure(w, http.StatusBadRequest, "Valid quantity is required")
	case !req.Price.Valid || !req.Price.Decimal.IsPositive():
		writeFailure(w, http.StatusBadRequest, "Valid price is required")
	case req.OrderDate != "" && !validDate(req.OrderDate):
		writeFailure(w, http.StatusBadRequest, "Invalid order date")
	default:
		return Order{
			ClientID:      *req.Client.ID,
			ProductName:   strings.TrimSpace(req.ProductName),
			Quantity:      *req.Quantity,
			Price:         Amount{req.Price.Decimal},
			OrderDate:     req.OrderDate,
			Type:          req.Type,
			PaymentMethod: strings.ToUpper(strings.TrimSpace(req.PaymentMethod)),
			Expedition:    strings.ToUpper(strings.TrimSpace(req.Expedition)),
			Status:        strings.ToUpper(strings.TrimSpace(req.Status)),
		}, true
	}
	return Order{}, false
}

// parseOrderFilter returns the filter or the message of the first invalid
// parameter.
func parseOrderFilter(get func(string) string) (OrderFilter, string) {
	var f OrderFilter
	if raw := strings.TrimSpace(get("clientId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return OrderFilter{}, "Invalid clientId parameter"
		}
		f.ClientID = id
	}
	f.Expedition = strings.TrimSpace(get("expedition"))
	f.PaymentMethod = strings.TrimSpace(get("paymentMethod"))
	f.Status = strings.TrimSpace(get("status"))

	for _, p := range []struct {
		name string
		dst  *decimal.NullDecimal
	}{
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
	} {
		raw := strings.TrimSpace(get(p.name))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return OrderFilter{}, "Invalid " + p.name + " parameter"
		}
		*p.dst = decimal.NewNullDecimal(d)
	}
	return f, ""
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func intParam(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func validDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}
