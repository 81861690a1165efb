package runner

import (
	"context"

	"go.uber.org/fx"

	"rebalance_bot/internal/broker"
	"rebalance_bot/internal/marketdata"
	"rebalance_bot/internal/modules/config"
	"rebalance_bot/internal/notify"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			func(cfg *config.Config) broker.Broker {
				return broker.NewAlpaca(cfg.Broker.BaseURL, cfg.Broker.Key, cfg.Broker.Secret)
			},
			func(cfg *config.Config) *marketdata.Client {
				return marketdata.NewClient(cfg.Data.BaseURL, cfg.Broker.Key, cfg.Broker.Secret)
			},
			func(cfg *config.Config, b broker.Broker) notify.Notifier {
				if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
					if tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, b); err == nil {
						return tg
					}
				}
				return notify.NewStdout()
			},
			New,
		),
		fx.Invoke(func(lc fx.Lifecycle, r *Runner, n notify.Notifier, b broker.Broker, cfg *config.Config, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					if tg, ok := n.(*notify.Telegram); ok {
						if err := tg.Start(ctx); err != nil {
							return err
						}
					}
					if a, ok := b.(*broker.Alpaca); ok && cfg.Broker.WSURL != "" {
						go func() {
							for upd := range a.StreamTradeUpdates(ctx, cfg.Broker.WSURL) {
								if upd.Event == "fill" {
									n.Sendf("fill: %s qty=%v @ %.2f", upd.Symbol, upd.Qty, upd.Price)
								}
							}
						}()
					}
					go r.Start(ctx)
					return nil
				},
				OnStop: func(context.Context) error {
					if tg, ok := n.(*notify.Telegram); ok {
						tg.Stop()
					}
					return nil
				},
			})
		}),
	)
}
