package models

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Order is a portfolio transition emitted by the rebalancer and consumed
// by the execution sequencer. Immutable.
type Order struct {
	Symbol string
	Qty    float64
	Side   Side
}

type Score struct {
	Symbol string
	Value  float64
}
