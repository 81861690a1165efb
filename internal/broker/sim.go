package broker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"rebalance_bot/internal/account"
	"rebalance_bot/internal/models"
)

// Sim adapts the backtest account ledger to the Broker interface. Orders
// fill instantly at the session fill price, so there is never a pending
// order and the sequencer's settlement barrier degenerates to a no-op.
type Sim struct {
	acct    *account.Account
	priceOf func(symbol string) float64
	now     time.Time
}

func NewSim(acct *account.Account) *Sim {
	return &Sim{acct: acct, priceOf: func(string) float64 { return 0 }}
}

// SetSession fixes the fill-price source and timestamp for one simulated
// trading day.
func (s *Sim) SetSession(priceOf func(symbol string) float64, now time.Time) {
	s.priceOf = priceOf
	s.now = now
}

func (s *Sim) SubmitOrder(ctx context.Context, o models.Order, typ OrderType, tif TimeInForce) error {
	px := s.priceOf(o.Symbol)
	if px <= 0 {
		return fmt.Errorf("no fill price for %s", o.Symbol)
	}
	s.acct.FillOrder(o, px, s.now)
	return nil
}

func (s *Sim) CountOpenOrders(ctx context.Context) (int, error) { return 0, nil }

func (s *Sim) GetAccount(ctx context.Context) (AccountInfo, error) {
	return AccountInfo{Cash: s.acct.Cash()}, nil
}

func (s *Sim) ListPositions(ctx context.Context) ([]models.BrokerPosition, error) {
	holdings := s.acct.Holdings()
	syms := make([]string, 0, len(holdings))
	for sym := range holdings {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	out := make([]models.BrokerPosition, 0, len(syms))
	for _, sym := range syms {
		out = append(out, models.BrokerPosition{Symbol: sym, Qty: holdings[sym]})
	}
	return out, nil
}

func (s *Sim) GetClock(ctx context.Context) (Clock, error) {
	return Clock{Timestamp: s.now, IsOpen: true}, nil
}
