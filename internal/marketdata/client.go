package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"rebalance_bot/internal/models"
)

// The data API caps request breadth; wider universes are chunked by the
// caller and merged.
const maxSymbolsPerRequest = 200

type Client struct {
	http    *http.Client
	baseURL string
	key     string
	secret  string

	// rate-limit guard for concurrent chunk fetches
	sem chan struct{}
}

func NewClient(baseURL, key, secret string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		key:     key,
		secret:  secret,
		sem:     make(chan struct{}, 8),
	}
}

type barPayload struct {
	Time   time.Time `json:"t"`
	Open   float64   `json:"o"`
	High   float64   `json:"h"`
	Low    float64   `json:"l"`
	Close  float64   `json:"c"`
	Volume float64   `json:"v"`
}

// getBars fetches daily bars for at most maxSymbolsPerRequest symbols.
func (c *Client) getBars(ctx context.Context, symbols []string, start, end time.Time) (models.PriceMap, error) {
	q := url.Values{}
	q.Set("symbols", strings.Join(symbols, ","))
	q.Set("timeframe", "1Day")
	q.Set("start", start.Format("2006-01-02"))
	q.Set("end", end.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/stocks/bars?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("APCA-API-KEY-ID", c.key)
	req.Header.Set("APCA-API-SECRET-KEY", c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	rb, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(rb))
	}

	var payload struct {
		Bars map[string][]barPayload `json:"bars"`
	}
	if err := json.Unmarshal(rb, &payload); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	out := make(models.PriceMap, len(payload.Bars))
	for sym, raw := range payload.Bars {
		series := make(models.Series, 0, len(raw))
		for _, b := range raw {
			series = append(series, models.PriceBar{
				Time:   b.Time,
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: b.Volume,
			})
		}
		sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
		out[sym] = series
	}
	return out, nil
}
