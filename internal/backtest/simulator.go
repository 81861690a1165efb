package backtest

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"rebalance_bot/internal/account"
	"rebalance_bot/internal/broker"
	"rebalance_bot/internal/executor"
	"rebalance_bot/internal/models"
	"rebalance_bot/internal/rebalancer"
	"rebalance_bot/internal/scorer"
)

// Bars older than this at a decision point are stale and the symbol sits
// out that day.
const staleAfter = 48 * time.Hour

type Params struct {
	Days         int
	Cash         float64
	PositionSize float64
	MaxPositions int
	ScoreWindow  int
	Benchmark    string
}

// Simulator replays the daily cycle against historical bars: decide
// before the open on data strictly before the day, fill at the open,
// mark to market at the close.
type Simulator struct {
	params Params
	prices models.PriceMap
}

func New(params Params, prices models.PriceMap) *Simulator {
	return &Simulator{params: params, prices: prices}
}

func (s *Simulator) Run(ctx context.Context) (*account.Account, error) {
	timeline := s.timeline()
	if len(timeline) == 0 {
		return nil, fmt.Errorf("no price history to simulate")
	}
	days := s.params.Days
	if days <= 0 || days >= len(timeline) {
		days = len(timeline) - 1
	}

	acct := account.New(s.params.Cash)
	if bench, ok := s.prices[s.params.Benchmark]; ok {
		acct.SetBenchmark(bench)
	} else if s.params.Benchmark != "" {
		log.Printf("[SIM] benchmark %s has no history, reporting without it", s.params.Benchmark)
	}

	sim := broker.NewSim(acct)
	sc := scorer.New(s.params.ScoreWindow)
	rb := rebalancer.New(s.params.PositionSize, s.params.MaxPositions)
	ex := executor.New(sim, 1)

	// starting equity point, the day before the window
	acct.MarkToMarket(models.PriceMap{}, timeline[len(timeline)-days-1])

	for _, t := range timeline[len(timeline)-days:] {
		snapshot := s.snapshotBefore(t)

		// before the market opens
		ranked := sc.Score(snapshot, -1)
		orders := rb.Plan(ranked, acct.Holdings(), acct.Cash(), func(sym string) float64 {
			return snapshot[sym].LastClose()
		})

		// right after the open
		sim.SetSession(func(sym string) float64 { return s.openAt(sym, t) }, t)
		ex.Execute(ctx, orders)

		acct.MarkToMarket(snapshot, t)
	}
	return acct, nil
}

// timeline is the bar index of the longest available series; ties go to
// the lexically first symbol so runs are reproducible.
func (s *Simulator) timeline() []time.Time {
	var anchor string
	for sym, series := range s.prices {
		if anchor == "" || len(series) > len(s.prices[anchor]) ||
			(len(series) == len(s.prices[anchor]) && sym < anchor) {
			anchor = sym
		}
	}
	if anchor == "" {
		return nil
	}
	out := make([]time.Time, 0, len(s.prices[anchor]))
	for _, bar := range s.prices[anchor] {
		out = append(out, bar.Time)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// snapshotBefore cuts every series to bars strictly before t, dropping
// symbols whose freshest bar is stale. No lookahead.
func (s *Simulator) snapshotBefore(t time.Time) models.PriceMap {
	snapshot := make(models.PriceMap, len(s.prices))
	for sym, series := range s.prices {
		cut := series.Before(t)
		if len(cut) == 0 {
			continue
		}
		if t.Sub(cut[len(cut)-1].Time) >= staleAfter {
			continue
		}
		snapshot[sym] = cut
	}
	return snapshot
}

func (s *Simulator) openAt(sym string, t time.Time) float64 {
	for _, bar := range s.prices[sym] {
		if bar.Time.Equal(t) {
			return bar.Open
		}
	}
	return 0
}
