package api

import (
	"orders_console/internal/config"
	"orders_console/internal/session"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"api",
		fx.Provide(func(cfg config.Config, sessions *session.Manager, logger *zap.Logger) *Client {
			return NewClient(cfg, sessions, logger)
		}),
	)
}
