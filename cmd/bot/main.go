package main

import (
	"context"

	"go.uber.org/fx"

	"rebalance_bot/internal/modules/config"
	"rebalance_bot/internal/modules/health"
	"rebalance_bot/internal/modules/postgres"
	"rebalance_bot/internal/runner"
	"rebalance_bot/pkg/logger"
	"rebalance_bot/pkg/tracing"
)

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		health.Module(),
		runner.Module(),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			if err := logger.Init("rebalance_bot"); err != nil {
				return err
			}
			if cfg.Jaeger.Host == "" {
				return nil
			}
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			})
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					closeTracer()
					return nil
				},
			})
			return nil
		}),
	)
	app.Run()
}
