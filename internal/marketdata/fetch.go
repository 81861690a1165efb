package marketdata

import (
	"context"
	"log"
	"sync"
	"time"

	"rebalance_bot/internal/models"
)

const DefaultLookbackDays = 50

// History fetches the daily lookback window for a symbol universe,
// chunked to the request-breadth cap and fanned out concurrently. A chunk
// that fails only costs its own symbols: they are reported in failed and
// absent from the price map, which the scorer treats as insufficient
// history.
func (c *Client) History(ctx context.Context, symbols []string, lookbackDays int, end time.Time) (models.PriceMap, []string) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	start := end.AddDate(0, 0, -lookbackDays)

	merged := make(models.PriceMap, len(symbols))
	var failed []string
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, chunk := range chunkSymbols(symbols, maxSymbolsPerRequest) {
		chunk := chunk
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.sem <- struct{}{}
			defer func() { <-c.sem }()

			prices, err := c.getBars(ctx, chunk, start, end)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[DATA] bars chunk (%d symbols) failed: %v", len(chunk), err)
				failed = append(failed, chunk...)
				return
			}
			// last-write-wins on duplicate keys; should not occur with
			// disjoint chunks
			for sym, series := range prices {
				merged[sym] = series
			}
		}()
	}
	wg.Wait()

	return merged, failed
}

func chunkSymbols(symbols []string, size int) [][]string {
	var chunks [][]string
	for len(symbols) > size {
		chunks = append(chunks, symbols[:size])
		symbols = symbols[size:]
	}
	if len(symbols) > 0 {
		chunks = append(chunks, symbols)
	}
	return chunks
}
