package session

import (
	"orders_console/internal/config"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"session",
		fx.Provide(
			func(cfg config.Config) Store {
				return NewFileStore(cfg.SessionFile)
			},
			NewManager,
		),
	)
}
