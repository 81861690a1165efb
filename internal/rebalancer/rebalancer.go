package rebalancer

import (
	"log"
	"math"
	"sort"

	"rebalance_bot/internal/models"
)

// PriceLookup returns the latest known price for a symbol, 0 if unknown.
type PriceLookup func(symbol string) float64

// Rebalancer turns a momentum ranking plus the current holdings into the
// minimal set of transitions towards the target portfolio.
type Rebalancer struct {
	PositionSize float64 // dollar amount to spend per new position
	MaxPositions int     // cap on open positions after the cycle
}

func New(positionSize float64, maxPositions int) *Rebalancer {
	return &Rebalancer{PositionSize: positionSize, MaxPositions: maxPositions}
}

// Plan emits all sell orders first, then buy orders. The sequencer relies
// on that ordering: sell proceeds must settle before buys are submitted.
//
// Target portfolio = the lowest-scoring twentieth of the ranking, minus
// symbols too expensive to buy a single share. Symbols both held and
// targeted are left untouched.
func (r *Rebalancer) Plan(ranked []models.Score, holdings map[string]float64, cash float64, lastPrice PriceLookup) []models.Order {
	if len(ranked) == 0 {
		return nil
	}

	// Lowest twentieth of the ranking, but never less than one candidate:
	// tiny universes would otherwise never trade. A symbol trading above
	// its own trend (score >= 0) is not oversold and never a candidate,
	// cut or not.
	cut := len(ranked) / 20
	if cut == 0 {
		cut = 1
	}
	target := make(map[string]bool)
	for _, sc := range ranked[:cut] {
		if sc.Value >= 0 {
			break
		}
		px := lastPrice(sc.Symbol)
		if px <= 0 || px > cash {
			continue
		}
		target[sc.Symbol] = true
	}

	held := make([]string, 0, len(holdings))
	for sym := range holdings {
		held = append(held, sym)
	}
	sort.Strings(held)

	var orders []models.Order
	kept := 0
	for _, sym := range held {
		if target[sym] {
			kept++
			continue
		}
		orders = append(orders, models.Order{Symbol: sym, Qty: holdings[sym], Side: models.SideSell})
		log.Printf("[REBAL] order(sell): %s for %v", sym, holdings[sym])
	}

	// Positions still open once the sells are done. New buys may not push
	// the portfolio past MaxPositions.
	maxToBuy := r.MaxPositions - kept
	for _, sc := range ranked[:cut] {
		if maxToBuy <= 0 {
			break
		}
		sym := sc.Symbol
		if !target[sym] {
			continue
		}
		if _, ok := holdings[sym]; ok {
			continue
		}
		px := lastPrice(sym)
		qty := math.Floor(r.PositionSize / px)
		if qty == 0 {
			continue
		}
		orders = append(orders, models.Order{Symbol: sym, Qty: qty, Side: models.SideBuy})
		log.Printf("[REBAL] order(buy): %s for %v", sym, qty)
		maxToBuy--
	}
	return orders
}
