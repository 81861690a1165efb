package models

import "time"

// PriceBar is one daily OHLCV candle for a single symbol.
// Immutable once produced by the market data source.
type PriceBar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is a chronologically ordered run of daily bars for one symbol,
// ascending by Time, no duplicate timestamps.
type Series []PriceBar

// At resolves an index that may be negative, counting from the end,
// -1 being the most recent bar.
func (s Series) At(index int) (PriceBar, bool) {
	if index < 0 {
		index += len(s)
	}
	if index < 0 || index >= len(s) {
		return PriceBar{}, false
	}
	return s[index], true
}

// LastClose returns the most recent close, or 0 for an empty series.
func (s Series) LastClose() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Close
}

// Before returns the prefix of the series strictly older than t.
func (s Series) Before(t time.Time) Series {
	i := len(s)
	for i > 0 && !s[i-1].Time.Before(t) {
		i--
	}
	return s[:i]
}

// PriceMap is the merged fetch result: symbol -> daily series.
type PriceMap map[string]Series
