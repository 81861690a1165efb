package account

import (
	"math"
	"strings"
	"testing"

	"rebalance_bot/internal/models"
)

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestPerformanceAgainstBenchmark(t *testing.T) {
	acct := New(500)
	acct.SetBenchmark(models.Series{
		{Time: day(0), Close: 100},
		{Time: day(1), Close: 95},
		{Time: day(2), Close: 105},
	})

	// equity series 500, 450, 525 on the same three days
	acct.MarkToMarket(models.PriceMap{}, day(0))
	acct.FillOrder(models.Order{Symbol: "AAA", Qty: 10, Side: models.SideBuy}, 8, day(1))
	acct.MarkToMarket(models.PriceMap{"AAA": {{Time: day(1), Close: 3}}}, day(1))
	acct.FillOrder(models.Order{Symbol: "AAA", Qty: 10, Side: models.SideSell}, 10.5, day(2))
	acct.MarkToMarket(models.PriceMap{}, day(2))

	table := acct.Performance()
	if !table.HasBenchmark {
		t.Fatal("benchmark missing from table")
	}
	if len(table.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(table.Rows))
	}

	wantEquityPerf := []float64{0, -0.10, 0.05}
	wantBenchPerf := []float64{0, -0.05, 0.05}
	for i, row := range table.Rows {
		if !approx(row.EquityPerf, wantEquityPerf[i]) {
			t.Errorf("row %d equity perf = %v, want %v", i, row.EquityPerf, wantEquityPerf[i])
		}
		if !approx(row.BenchPerf, wantBenchPerf[i]) {
			t.Errorf("row %d bench perf = %v, want %v", i, row.BenchPerf, wantBenchPerf[i])
		}
	}
}

func TestPerformanceWithoutBenchmark(t *testing.T) {
	acct := New(500)
	acct.MarkToMarket(models.PriceMap{}, day(0))

	table := acct.Performance()
	if table.HasBenchmark {
		t.Error("benchmark reported without one attached")
	}
	if !approx(table.Rows[0].EquityPerf, 0) {
		t.Errorf("first row perf = %v, want 0", table.Rows[0].EquityPerf)
	}
}

func TestPerformanceCSV(t *testing.T) {
	acct := New(500)
	acct.SetBenchmark(models.Series{{Time: day(0), Close: 100}})
	acct.MarkToMarket(models.PriceMap{}, day(0))

	var b strings.Builder
	if err := acct.Performance().WriteCSV(&b); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d, want header + 1 row", len(lines))
	}
	if lines[0] != "date,equity,equity_perf,bench,bench_perf" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2025-01-01,500.00,") {
		t.Errorf("row = %q", lines[1])
	}
}
