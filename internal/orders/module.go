package orders

import (
	"orders_console/internal/api"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"orders",
		fx.Provide(func(client *api.Client, logger *zap.Logger) *Loader {
			return NewLoader(client, logger)
		}),
	)
}
