package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/opentracing/opentracing-go"

	"rebalance_bot/internal/broker"
	"rebalance_bot/internal/executor"
	"rebalance_bot/internal/marketdata"
	"rebalance_bot/internal/modules/config"
	healthstate "rebalance_bot/internal/modules/health/service"
	"rebalance_bot/internal/notify"
	"rebalance_bot/internal/rebalancer"
	"rebalance_bot/internal/scorer"
	"rebalance_bot/internal/state"
	"rebalance_bot/internal/universe"
)

// Runner drives the live daily cycle: poll the broker clock, and once per
// open trading day fetch history, rank, plan the transition and execute
// it. The last processed day lives in a durable store, so a restart
// mid-day does not trade twice.
type Runner struct {
	cfg    *config.Config
	b      broker.Broker
	data   *marketdata.Client
	marker state.Store
	n      notify.Notifier
	health *healthstate.State

	sc   *scorer.Scorer
	rb   *rebalancer.Rebalancer
	exec *executor.Executor
}

func New(
	cfg *config.Config,
	b broker.Broker,
	data *marketdata.Client,
	marker state.Store,
	n notify.Notifier,
	health *healthstate.State,
) *Runner {
	return &Runner{
		cfg:    cfg,
		b:      b,
		data:   data,
		marker: marker,
		n:      n,
		health: health,
		sc:     scorer.New(cfg.ScoreWindow),
		rb:     rebalancer.New(cfg.PositionSize, cfg.MaxPositions),
		exec:   executor.New(b, cfg.WaitTicks),
	}
}

func (r *Runner) Start(ctx context.Context) {
	log.Printf("[RUNNER] start, poll=%s", r.cfg.PollInterval)
	r.health.SetReady(true)

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	clock, err := r.b.GetClock(ctx)
	if err != nil {
		log.Printf("[RUNNER] clock: %v", err)
		return
	}
	if !clock.IsOpen {
		return
	}

	day := clock.Timestamp.Format("2006-01-02")
	last, err := r.marker.LastRun(ctx)
	if err != nil {
		log.Printf("[RUNNER] run marker: %v", err)
		return
	}
	if last == day {
		return
	}

	if err := r.runCycle(ctx, day, clock.Timestamp); err != nil {
		// marker stays unset: the cycle is retried on the next tick
		log.Printf("[RUNNER] cycle %s: %v", day, err)
		return
	}
	if err := r.marker.SetLastRun(ctx, day); err != nil {
		log.Printf("[RUNNER] set run marker: %v", err)
	}
	r.health.TouchCycle(clock.Timestamp)
	log.Printf("[RUNNER] done for %s", day)
}

func (r *Runner) runCycle(ctx context.Context, day string, now time.Time) error {
	span := opentracing.StartSpan("rebalance_cycle")
	span.SetTag("day", day)
	defer span.Finish()

	symbols := r.cfg.Universe
	if len(symbols) == 0 {
		symbols = universe.Default
	}

	prices, failed := r.data.History(ctx, symbols, r.cfg.LookbackDays, now)
	if len(failed) > 0 {
		log.Printf("[RUNNER] %d symbols without history: %v", len(failed), failed)
	}

	ranked := r.sc.Score(prices, -1)

	acct, err := r.b.GetAccount(ctx)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}
	positions, err := r.b.ListPositions(ctx)
	if err != nil {
		return fmt.Errorf("list positions: %w", err)
	}
	holdings := make(map[string]float64, len(positions))
	for _, p := range positions {
		holdings[p.Symbol] = p.Qty
	}

	orders := r.rb.Plan(ranked, holdings, acct.Cash, func(sym string) float64 {
		return prices[sym].LastClose()
	})
	span.SetTag("orders", len(orders))

	rep := r.exec.Execute(ctx, orders)
	if rep.SellTimeout || rep.BuyTimeout {
		span.SetTag("settlement_timeout", true)
	}

	r.n.Sendf("rebalance %s: %d orders (%d submitted, %d failed), cash %.2f",
		day, len(orders), rep.Submitted, rep.Failed, acct.Cash)
	return nil
}
