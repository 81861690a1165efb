package account

import (
	"log"
	"sort"
	"time"

	"rebalance_bot/internal/models"
)

// FillStatus is the outcome of applying an order to the ledger.
type FillStatus string

const (
	Filled                   FillStatus = "filled"
	RejectedInsufficientCash FillStatus = "rejected_insufficient_cash"
	// RejectedNoPosition means a sell arrived for a symbol we do not hold.
	// The rebalancer only emits sells for held symbols, so this is a
	// rebalancer/ledger desync, not a market condition.
	RejectedNoPosition FillStatus = "rejected_no_position"
)

// Account is the simulation ledger: cash, open positions, closed-trade
// history and a daily equity series. Cash never goes negative: a buy that
// would overdraw is rejected whole, never partially filled.
type Account struct {
	cash      float64
	positions map[string]models.Position
	trades    []models.ClosedTrade
	equities  map[time.Time]float64
	benchmark models.Series
}

func New(cash float64) *Account {
	return &Account{
		cash:      cash,
		positions: make(map[string]models.Position),
		equities:  make(map[time.Time]float64),
	}
}

func (a *Account) Cash() float64 { return a.cash }

// Holdings returns symbol -> share count for every open position.
func (a *Account) Holdings() map[string]float64 {
	out := make(map[string]float64, len(a.positions))
	for sym, pos := range a.positions {
		out[sym] = pos.Shares
	}
	return out
}

func (a *Account) Position(symbol string) (models.Position, bool) {
	pos, ok := a.positions[symbol]
	return pos, ok
}

func (a *Account) OpenPositions() []models.Position {
	syms := make([]string, 0, len(a.positions))
	for sym := range a.positions {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	out := make([]models.Position, 0, len(syms))
	for _, sym := range syms {
		out = append(out, a.positions[sym])
	}
	return out
}

func (a *Account) Trades() []models.ClosedTrade { return a.trades }

// FillOrder applies one fill at a concrete price and timestamp.
func (a *Account) FillOrder(o models.Order, price float64, ts time.Time) FillStatus {
	switch o.Side {
	case models.SideBuy:
		cost := price * o.Qty
		if cost > a.cash {
			log.Printf("[LEDGER] %s: no cash available for %s (need %.2f, have %.2f)", ts.Format("2006-01-02"), o.Symbol, cost, a.cash)
			return RejectedInsufficientCash
		}
		a.positions[o.Symbol] = models.Position{
			Symbol:     o.Symbol,
			EntryTime:  ts,
			EntryPrice: price,
			Shares:     o.Qty,
			LastPrice:  price,
		}
		a.cash -= cost
		return Filled

	default:
		pos, ok := a.positions[o.Symbol]
		if !ok {
			log.Printf("[LEDGER] sell without position: %s, rebalancer desync", o.Symbol)
			return RejectedNoPosition
		}
		delete(a.positions, o.Symbol)
		profit := price - pos.EntryPrice
		a.trades = append(a.trades, models.ClosedTrade{
			Symbol:     pos.Symbol,
			EntryTime:  pos.EntryTime,
			EntryPrice: pos.EntryPrice,
			ExitTime:   ts,
			ExitPrice:  price,
			Shares:     pos.Shares,
			Profit:     profit,
			ProfitPct:  profit / pos.EntryPrice * 100,
		})
		a.cash += price * pos.Shares
		return Filled
	}
}

// MarkToMarket values open positions at the latest close and records the
// equity snapshot for the day. Called once per simulated trading day,
// after that day's fills. A held symbol missing from the day's prices is
// valued at its last known mark, never at zero.
func (a *Account) MarkToMarket(prices models.PriceMap, ts time.Time) {
	equity := a.cash
	for sym, pos := range a.positions {
		if px := prices[sym].LastClose(); px > 0 {
			pos.LastPrice = px
			a.positions[sym] = pos
		}
		equity += pos.Shares * pos.LastPrice
	}
	a.equities[ts] = equity
}

func (a *Account) SetBenchmark(series models.Series) { a.benchmark = series }
