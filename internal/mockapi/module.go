package mockapi

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"orders_console/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"mockapi",
		fx.Provide(
			func(cfg config.Config) (*Store, error) {
				store := NewStore()
				seed := uint64(time.Now().UnixNano())
				if err := store.Seed(cfg.MockOrders, rand.New(rand.NewPCG(seed, seed>>1))); err != nil {
					return nil, fmt.Errorf("seed store: %w", err)
				}
				return store, nil
			},
			NewServer,
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg config.Config, server *Server, logger *zap.Logger) {
			srv := &http.Server{
				Addr:              cfg.MockAddr,
				Handler:           server.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			logger = logger.Named("mockapi")

			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					ln, err := net.Listen("tcp", srv.Addr)
					if err != nil {
						return fmt.Errorf("listen %s: %w", srv.Addr, err)
					}
					logger.Info("mock api listening",
						zap.String("addr", ln.Addr().String()),
						zap.String("envelope", server.envelope),
						zap.Int("orders", cfg.MockOrders),
					)
					go func() {
						if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
							logger.Error("mock api stopped", zap.Error(err))
						}
					}()
					return nil
				},
				OnStop: func(ctx context.Context) error {
					return srv.Shutdown(ctx)
				},
			})
		}),
	)
}
