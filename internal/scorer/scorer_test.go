package scorer

import (
	"math"
	"reflect"
	"testing"
	"time"

	"rebalance_bot/internal/models"
)

func series(closes ...float64) models.Series {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make(models.Series, 0, len(closes))
	for i, c := range closes {
		out = append(out, models.PriceBar{
			Time:  start.AddDate(0, 0, i),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		})
	}
	return out
}

func flat(price float64, n int) models.Series {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return series(closes...)
}

func TestScoreExcludesShortSeries(t *testing.T) {
	testCases := []struct {
		name string
		bars int
		want bool // appears in ranking
	}{
		{name: "well below window", bars: 3, want: false},
		{name: "exactly window", bars: 10, want: false},
		{name: "one above window", bars: 11, want: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prices := models.PriceMap{"X": flat(10, tc.bars)}
			ranked := New(10).Score(prices, -1)
			got := len(ranked) == 1
			if got != tc.want {
				t.Errorf("bars=%d: in ranking = %v, want %v", tc.bars, got, tc.want)
			}
		})
	}
}

func TestScoreOversoldRanksFirst(t *testing.T) {
	prices := models.PriceMap{
		"AAA": append(flat(10, 11), models.PriceBar{
			Time: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), Close: 8,
		}),
		"BBB": flat(10, 12),
	}
	ranked := New(10).Score(prices, -1)
	if len(ranked) != 2 {
		t.Fatalf("ranked size = %d, want 2", len(ranked))
	}
	if ranked[0].Symbol != "AAA" {
		t.Errorf("lowest score = %s, want AAA", ranked[0].Symbol)
	}
	if ranked[0].Value >= 0 {
		t.Errorf("dropped symbol score = %v, want < 0", ranked[0].Value)
	}
	if math.Abs(ranked[1].Value) > 1e-12 {
		t.Errorf("flat symbol score = %v, want 0", ranked[1].Value)
	}
	if ranked[0].Value >= ranked[1].Value {
		t.Errorf("ranking not ascending: %v >= %v", ranked[0].Value, ranked[1].Value)
	}
}

func TestScoreDeterministic(t *testing.T) {
	// three flat symbols tie at score 0; order must be lexical and stable
	prices := models.PriceMap{
		"CCC": flat(10, 12),
		"AAA": flat(10, 12),
		"BBB": flat(10, 12),
	}
	sc := New(10)
	first := sc.Score(prices, -1)
	second := sc.Score(prices, -1)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-run differs:\n%v\n%v", first, second)
	}
	want := []string{"AAA", "BBB", "CCC"}
	for i, sym := range want {
		if first[i].Symbol != sym {
			t.Errorf("position %d = %s, want %s", i, first[i].Symbol, sym)
		}
	}
}

func TestScoreNegativeIndex(t *testing.T) {
	prices := models.PriceMap{
		"AAA": append(flat(10, 11), models.PriceBar{
			Time: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), Close: 8,
		}),
	}
	sc := New(10)
	byNegative := sc.Score(prices, -1)
	byAbsolute := sc.Score(prices, 11)
	if !reflect.DeepEqual(byNegative, byAbsolute) {
		t.Errorf("index -1 and 11 disagree: %v vs %v", byNegative, byAbsolute)
	}
}

func TestScoreEmptyInput(t *testing.T) {
	if got := New(10).Score(models.PriceMap{}, -1); len(got) != 0 {
		t.Errorf("empty input produced %v", got)
	}
}
