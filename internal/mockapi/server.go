package mockapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"orders_console/internal/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	EnvelopeLegacy  = "legacy"
	EnvelopeContent = "content"

	tokenTTL = 24 * time.Hour
)

// Server serves the orders REST contract under /api.
type Server struct {
	store    *Store
	tokens   *Tokens
	envelope string
	logger   *zap.Logger
}

func NewServer(cfg config.Config, store *Store, logger *zap.Logger) *Server {
	envelope := EnvelopeLegacy
	if strings.EqualFold(strings.TrimSpace(cfg.MockEnvelope), EnvelopeContent) {
		envelope = EnvelopeContent
	}
	return &Server{
		store:    store,
		tokens:   NewTokens(cfg.MockJWTSecret, tokenTTL),
		envelope: envelope,
		logger:   logger.Named("mockapi"),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(requestLogger(s.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/me", s.handleMe)

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", s.handleListClients)
				r.Post("/", s.handleCreateClient)
				r.Get("/{id}", s.handleGetClient)
				r.Put("/{id}", s.handleUpdateClient)
				r.Delete("/{id}", s.handleDeleteClient)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", s.handleListOrders)
				r.Post("/", s.handleCreateOrder)
				r.Get("/{id}", s.handleGetOrder)
				r.Put("/{id}", s.handleUpdateOrder)
				r.Delete("/{id}", s.handleDeleteOrder)
			})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}
