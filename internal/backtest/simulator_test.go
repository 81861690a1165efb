package backtest

import (
	"context"
	"math"
	"testing"
	"time"

	"rebalance_bot/internal/models"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func bar(n int, open, close float64) models.PriceBar {
	return models.PriceBar{Time: day(n), Open: open, High: close, Low: open, Close: close}
}

func flatUntil(n int, price float64) models.Series {
	out := make(models.Series, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, bar(i, price, price))
	}
	return out
}

// A trades flat, drops 20% at the day-12 open, recovers at day 13, and
// stays flat after. B never moves.
func dipAndRecover() models.PriceMap {
	a := flatUntil(12, 10)
	a = append(a, bar(12, 8, 8), bar(13, 8, 10), bar(14, 10, 10))
	return models.PriceMap{
		"AAA": a,
		"BBB": flatUntil(15, 10),
	}
}

func TestSimulateBuysTheDip(t *testing.T) {
	sim := New(Params{
		Days:         3,
		Cash:         500,
		PositionSize: 100,
		MaxPositions: 5,
		ScoreWindow:  10,
	}, dipAndRecover())

	acct, err := sim.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// day 12: pre-open data is flat, nothing is oversold, no orders.
	// day 13: the day-12 close 8 is visible, AAA is bought at the open 8
	//         for floor(100/8) = 12 shares, cash 500 - 96 = 404.
	// day 14: AAA closed back at 10 and scores above trend, sold at the
	//         open 10, cash 404 + 120 = 524.
	if math.Abs(acct.Cash()-524) > 1e-9 {
		t.Errorf("final cash = %v, want 524", acct.Cash())
	}
	if _, open := acct.Position("AAA"); open {
		t.Error("AAA still open at the end")
	}

	trades := acct.Trades()
	if len(trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(trades))
	}
	tr := trades[0]
	if tr.Symbol != "AAA" || tr.Shares != 12 {
		t.Errorf("trade = %+v, want 12 shares of AAA", tr)
	}
	if tr.EntryPrice != 8 || tr.ExitPrice != 10 {
		t.Errorf("entry/exit = %v/%v, want 8/10", tr.EntryPrice, tr.ExitPrice)
	}
	if tr.Profit != 2 || tr.ProfitPct != 25 {
		t.Errorf("profit = %v (%v%%), want 2 (25%%)", tr.Profit, tr.ProfitPct)
	}
	// BBB never became a candidate
	for _, got := range trades {
		if got.Symbol == "BBB" {
			t.Error("flat symbol was traded")
		}
	}
}

func TestSimulateEquityCurve(t *testing.T) {
	sim := New(Params{
		Days:         3,
		Cash:         500,
		PositionSize: 100,
		MaxPositions: 5,
		ScoreWindow:  10,
		Benchmark:    "BBB",
	}, dipAndRecover())

	acct, err := sim.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	table := acct.Performance()
	if !table.HasBenchmark {
		t.Fatal("benchmark series not attached")
	}
	// starting point plus the three simulated days
	if len(table.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(table.Rows))
	}

	// equity: 500 start, 500 after the quiet day, 500 after the buy
	// (12 shares marked at the stale close 8), 524 after the sell
	want := []float64{500, 500, 500, 524}
	for i, row := range table.Rows {
		if math.Abs(row.Equity-want[i]) > 1e-9 {
			t.Errorf("row %d equity = %v, want %v", i, row.Equity, want[i])
		}
	}
	// flat benchmark shows zero performance throughout
	for i, row := range table.Rows {
		if math.Abs(row.BenchPerf) > 1e-9 {
			t.Errorf("row %d bench perf = %v, want 0", i, row.BenchPerf)
		}
	}
}

func TestSimulateStaleSymbolSitsOut(t *testing.T) {
	prices := dipAndRecover()
	// CCC stops printing bars long before the window and is deeply
	// oversold in its stale tail; it must never be traded
	ccc := flatUntil(11, 10)
	ccc = append(ccc, bar(11, 1, 1))
	prices["CCC"] = ccc

	sim := New(Params{
		Days:         2,
		Cash:         500,
		PositionSize: 100,
		MaxPositions: 5,
		ScoreWindow:  10,
	}, prices)

	acct, err := sim.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, open := acct.Position("CCC"); open {
		t.Error("stale symbol was bought")
	}
	for _, tr := range acct.Trades() {
		if tr.Symbol == "CCC" {
			t.Error("stale symbol was traded")
		}
	}
}

// A symbol bought while fresh and then delisted mid-run: the sell has no
// fill price and fails, the position stays open, and equity must carry it
// at the last known close instead of zero.
func TestSimulateStaleHeldPositionHoldsValue(t *testing.T) {
	a := flatUntil(12, 10)
	a = append(a, bar(12, 8, 8), bar(13, 8, 8))
	prices := models.PriceMap{
		"AAA": a, // last bar day 13
		"BBB": flatUntil(16, 10),
	}

	sim := New(Params{
		Days:         3,
		Cash:         500,
		PositionSize: 100,
		MaxPositions: 5,
		ScoreWindow:  10,
	}, prices)

	acct, err := sim.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// day 13: AAA oversold, bought 12 shares at the open 8, cash 404.
	// day 15: AAA is stale, the liquidation sell cannot fill.
	pos, open := acct.Position("AAA")
	if !open {
		t.Fatal("stale position was closed without a fill")
	}
	if math.Abs(acct.Cash()-404) > 1e-9 {
		t.Errorf("cash = %v, want 404", acct.Cash())
	}
	if len(acct.Trades()) != 0 {
		t.Errorf("trades = %v, want none", acct.Trades())
	}

	table := acct.Performance()
	for i, row := range table.Rows {
		if math.Abs(row.Equity-500) > 1e-9 {
			t.Errorf("row %d equity = %v, want 500 (12 shares of AAA at %v)", i, row.Equity, pos.LastPrice)
		}
	}
}

func TestSimulateEmptyHistory(t *testing.T) {
	if _, err := New(Params{Days: 5, Cash: 500}, models.PriceMap{}).Run(context.Background()); err == nil {
		t.Fatal("expected error on empty history")
	}
}
