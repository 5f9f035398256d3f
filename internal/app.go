package internal

import (
	"context"

	"orders_console/internal/api"
	"orders_console/internal/cli"
	"orders_console/internal/config"
	"orders_console/internal/logging"
	"orders_console/internal/mockapi"
	"orders_console/internal/orders"
	"orders_console/internal/session"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Run() error {
	var runner *cli.Runner

	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		logging.Module(),
		session.Module(),
		api.Module(),
		orders.Module(),
		cli.Module(),
		fx.Populate(&runner),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(ctx)
	}()

	return runner.Execute()
}

// RunMock serves the mock orders API until the process is signalled.
func RunMock() error {
	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		fx.Decorate(func(cfg config.Config) config.Config {
			cfg.LogFileOnly = false
			return cfg
		}),
		logging.Module(),
		mockapi.Module(),
	)
	if err := app.Err(); err != nil {
		return err
	}

	app.Run()
	return nil
}
