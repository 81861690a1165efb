package executor

import (
	"context"
	"log"
	"time"

	"rebalance_bot/internal/broker"
	"rebalance_bot/internal/models"
)

const DefaultWaitTicks = 30

// Report is what a batch execution looked like. Settlement timeouts are
// degraded-confidence conditions, not failures.
type Report struct {
	Submitted   int
	Failed      int
	SellTimeout bool
	BuyTimeout  bool
}

// Executor submits an order batch in two strictly ordered phases: all
// sells, a settlement barrier, then all buys. Buys submitted before sell
// proceeds are realized get bounced for insufficient cash, so the barrier
// polls the broker until no orders are pending or the tick budget runs out.
type Executor struct {
	b         broker.Broker
	waitTicks int

	// Sleep is called once per wait tick. Tests swap in a fake.
	Sleep func(time.Duration)
}

func New(b broker.Broker, waitTicks int) *Executor {
	if waitTicks <= 0 {
		waitTicks = DefaultWaitTicks
	}
	return &Executor{b: b, waitTicks: waitTicks, Sleep: time.Sleep}
}

func (e *Executor) Execute(ctx context.Context, orders []models.Order) Report {
	var rep Report

	sells := filter(orders, models.SideSell)
	buys := filter(orders, models.SideBuy)

	e.submitPhase(ctx, sells, &rep)
	if len(sells) > 0 {
		rep.SellTimeout = !e.waitSettled(ctx, "sell")
	}

	e.submitPhase(ctx, buys, &rep)
	if len(buys) > 0 {
		rep.BuyTimeout = !e.waitSettled(ctx, "buy")
	}
	return rep
}

// submitPhase is fault-isolated per order: one broker error does not stop
// the rest of the phase, and failed orders are never retried.
func (e *Executor) submitPhase(ctx context.Context, orders []models.Order, rep *Report) {
	for _, o := range orders {
		log.Printf("[EXEC] submit(%s): %s qty=%v", o.Side, o.Symbol, o.Qty)
		if err := e.b.SubmitOrder(ctx, o, broker.TypeMarket, broker.TIFDay); err != nil {
			log.Printf("[EXEC] submit %s %s failed: %v", o.Side, o.Symbol, err)
			rep.Failed++
			continue
		}
		rep.Submitted++
	}
}

// waitSettled polls once per tick until the broker reports no pending
// orders. Returns false when the budget is exhausted with orders still
// open; the caller proceeds anyway.
func (e *Executor) waitSettled(ctx context.Context, phase string) bool {
	for count := e.waitTicks; count > 0; count-- {
		pending, err := e.b.CountOpenOrders(ctx)
		if err != nil {
			log.Printf("[EXEC] list open orders: %v", err)
		} else if pending == 0 {
			log.Printf("[EXEC] all %s orders done", phase)
			return true
		} else {
			log.Printf("[EXEC] %d %s orders pending...", pending, phase)
		}
		e.Sleep(time.Second)
	}
	log.Printf("[EXEC] %s settlement wait exhausted, proceeding", phase)
	return false
}

func filter(orders []models.Order, side models.Side) []models.Order {
	var out []models.Order
	for _, o := range orders {
		if o.Side == side {
			out = append(out, o)
		}
	}
	return out
}
