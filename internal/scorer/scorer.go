package scorer

import (
	"sort"

	"rebalance_bot/internal/models"
)

const DefaultWindow = 10

// Scorer ranks symbols by how far the last close sits below its EMA.
// The most oversold symbols (lowest score) are the buy candidates.
type Scorer struct {
	window int
}

func New(window int) *Scorer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Scorer{window: window}
}

// Score computes (last - ema) / last per symbol at the given bar index
// (negative counts from the end, -1 = most recent) and returns the ranking
// sorted ascending by score. Symbols with at most window bars are dropped,
// not an error. Ties keep lexical symbol order, so the ranking is
// deterministic for identical input.
func (s *Scorer) Score(prices models.PriceMap, index int) []models.Score {
	symbols := make([]string, 0, len(prices))
	for sym := range prices {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	ranked := make([]models.Score, 0, len(symbols))
	for _, sym := range symbols {
		series := prices[sym]
		if len(series) <= s.window {
			continue
		}
		last, ok := series.At(index)
		if !ok || last.Close == 0 {
			continue
		}
		upTo := index
		if upTo < 0 {
			upTo += len(series)
		}

		ema := newEMA(s.window)
		for i := 0; i <= upTo; i++ {
			ema.Update(series[i].Close)
		}
		ranked = append(ranked, models.Score{
			Symbol: sym,
			Value:  (last.Close - ema.Value()) / last.Close,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value < ranked[j].Value
	})
	return ranked
}
