package models

import "time"

// Position is an open holding, owned exclusively by the account ledger.
// At most one open position per symbol.
type Position struct {
	Symbol     string
	EntryTime  time.Time
	EntryPrice float64
	Shares     float64

	// LastPrice is the most recent price the position was valued at. It
	// starts at the entry price and follows every mark-to-market close,
	// so a symbol that stops printing bars keeps its last known value.
	LastPrice float64
}

// ClosedTrade is the append-only record produced when a sell fills.
type ClosedTrade struct {
	Symbol     string
	EntryTime  time.Time
	EntryPrice float64
	ExitTime   time.Time
	ExitPrice  float64
	Shares     float64
	Profit     float64 // per share, exit - entry
	ProfitPct  float64 // profit / entry * 100
}

// BrokerPosition is the simplified holding shape returned by a broker,
// live or simulated.
type BrokerPosition struct {
	Symbol string
	Qty    float64
}
