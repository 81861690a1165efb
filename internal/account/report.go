package account

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"rebalance_bot/internal/models"
)

// PerformanceRow is one day of the equity-vs-benchmark comparison.
// Perf columns are ratios relative to the first row (0 on day one).
type PerformanceRow struct {
	Time       time.Time
	Equity     float64
	EquityPerf float64
	Bench      float64
	BenchPerf  float64
}

type PerformanceTable struct {
	Rows         []PerformanceRow
	HasBenchmark bool
}

// Performance builds the timestamp-aligned comparison table from the
// recorded equity snapshots and the attached benchmark series, both
// normalized to start at 0 (value/value[0] - 1).
func (a *Account) Performance() PerformanceTable {
	times := make([]time.Time, 0, len(a.equities))
	for t := range a.equities {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	table := PerformanceTable{HasBenchmark: len(a.benchmark) > 0}
	if len(times) == 0 {
		return table
	}

	base := a.equities[times[0]]
	benchBase := benchAt(a.benchmark, times[0])
	for _, t := range times {
		row := PerformanceRow{Time: t, Equity: a.equities[t]}
		if base != 0 {
			row.EquityPerf = row.Equity/base - 1
		}
		if table.HasBenchmark {
			row.Bench = benchAt(a.benchmark, t)
			if benchBase != 0 {
				row.BenchPerf = row.Bench/benchBase - 1
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// benchAt picks the benchmark close on t, falling back to the last bar
// before t when the exact day is missing.
func benchAt(series models.Series, t time.Time) float64 {
	var px float64
	for _, bar := range series {
		if bar.Time.After(t) {
			break
		}
		px = bar.Close
	}
	return px
}

func (t PerformanceTable) String() string {
	var b strings.Builder
	if t.HasBenchmark {
		fmt.Fprintf(&b, "%-12s %12s %10s %12s %10s\n", "date", "equity", "perf", "bench", "perf")
	} else {
		fmt.Fprintf(&b, "%-12s %12s %10s\n", "date", "equity", "perf")
	}
	for _, r := range t.Rows {
		if t.HasBenchmark {
			fmt.Fprintf(&b, "%-12s %12.2f %9.2f%% %12.2f %9.2f%%\n",
				r.Time.Format("2006-01-02"), r.Equity, r.EquityPerf*100, r.Bench, r.BenchPerf*100)
		} else {
			fmt.Fprintf(&b, "%-12s %12.2f %9.2f%%\n",
				r.Time.Format("2006-01-02"), r.Equity, r.EquityPerf*100)
		}
	}
	return b.String()
}

// WriteCSV serializes the table for spreadsheet import.
func (t PerformanceTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"date", "equity", "equity_perf"}
	if t.HasBenchmark {
		header = append(header, "bench", "bench_perf")
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range t.Rows {
		rec := []string{
			r.Time.Format("2006-01-02"),
			strconv.FormatFloat(r.Equity, 'f', 2, 64),
			strconv.FormatFloat(r.EquityPerf, 'f', 6, 64),
		}
		if t.HasBenchmark {
			rec = append(rec,
				strconv.FormatFloat(r.Bench, 'f', 2, 64),
				strconv.FormatFloat(r.BenchPerf, 'f', 6, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
