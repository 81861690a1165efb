package postgres

import (
	"context"
	"fmt"

	"rebalance_bot/internal/modules/config"
	"rebalance_bot/internal/state"
	"rebalance_bot/pkg/db"

	"go.uber.org/fx"
)

// Module wires the connection pool and the durable run-marker store.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				err = poolMaster.Ping(ctx)
				if err != nil {
					return nil, err
				}

				return db.NewPgTxManager(poolMaster), nil
			},
			func(txm *db.PgTxManager) state.Store {
				return state.NewPostgres(txm)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, s state.Store) {
			pg, ok := s.(*state.Postgres)
			if !ok {
				return
			}
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return pg.EnsureSchema(ctx)
				},
			})
		}),
	)
}
