package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"rebalance_bot/internal/models"
)

// Alpaca is the live brokerage client. Paper and real accounts differ only
// in the base URL.
type Alpaca struct {
	http    *http.Client
	baseURL string
	key     string
	secret  string
}

func NewAlpaca(baseURL, key, secret string) *Alpaca {
	return &Alpaca{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		key:     key,
		secret:  secret,
	}
}

func (c *Alpaca) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("APCA-API-KEY-ID", c.key)
	req.Header.Set("APCA-API-SECRET-KEY", c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	rb, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(rb))
	}
	return rb, nil
}

func (c *Alpaca) SubmitOrder(ctx context.Context, o models.Order, typ OrderType, tif TimeInForce) error {
	payload, err := sonic.Marshal(map[string]string{
		"symbol":        o.Symbol,
		"qty":           strconv.FormatFloat(o.Qty, 'f', -1, 64),
		"side":          string(o.Side),
		"type":          string(typ),
		"time_in_force": string(tif),
	})
	if err != nil {
		return fmt.Errorf("submit order marshal: %w", err)
	}

	rb, err := c.do(ctx, http.MethodPost, "/v2/orders", payload)
	if err != nil {
		return fmt.Errorf("submit order: %w", err)
	}

	var r struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rb, &r); err != nil {
		return fmt.Errorf("submit order decode: %w; body=%s", err, string(rb))
	}
	if r.ID == "" {
		return fmt.Errorf("submit order: empty order id, body=%s", string(rb))
	}
	return nil
}

func (c *Alpaca) CountOpenOrders(ctx context.Context) (int, error) {
	rb, err := c.do(ctx, http.MethodGet, "/v2/orders?status=open", nil)
	if err != nil {
		return 0, fmt.Errorf("list orders: %w", err)
	}
	var orders []json.RawMessage
	if err := json.Unmarshal(rb, &orders); err != nil {
		return 0, fmt.Errorf("list orders decode: %w", err)
	}
	return len(orders), nil
}

func (c *Alpaca) GetAccount(ctx context.Context) (AccountInfo, error) {
	rb, err := c.do(ctx, http.MethodGet, "/v2/account", nil)
	if err != nil {
		return AccountInfo{}, fmt.Errorf("get account: %w", err)
	}
	var r struct {
		Cash string `json:"cash"`
	}
	if err := json.Unmarshal(rb, &r); err != nil {
		return AccountInfo{}, fmt.Errorf("get account decode: %w", err)
	}
	cash, err := strconv.ParseFloat(r.Cash, 64)
	if err != nil {
		return AccountInfo{}, fmt.Errorf("get account cash parse: %v (%q)", err, r.Cash)
	}
	return AccountInfo{Cash: cash}, nil
}

func (c *Alpaca) ListPositions(ctx context.Context) ([]models.BrokerPosition, error) {
	rb, err := c.do(ctx, http.MethodGet, "/v2/positions", nil)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	var raw []struct {
		Symbol string `json:"symbol"`
		Qty    string `json:"qty"`
	}
	if err := json.Unmarshal(rb, &raw); err != nil {
		return nil, fmt.Errorf("list positions decode: %w", err)
	}
	out := make([]models.BrokerPosition, 0, len(raw))
	for _, p := range raw {
		qty, _ := strconv.ParseFloat(p.Qty, 64)
		out = append(out, models.BrokerPosition{Symbol: p.Symbol, Qty: qty})
	}
	return out, nil
}

func (c *Alpaca) GetClock(ctx context.Context) (Clock, error) {
	rb, err := c.do(ctx, http.MethodGet, "/v2/clock", nil)
	if err != nil {
		return Clock{}, fmt.Errorf("get clock: %w", err)
	}
	var r struct {
		Timestamp time.Time `json:"timestamp"`
		IsOpen    bool      `json:"is_open"`
	}
	if err := json.Unmarshal(rb, &r); err != nil {
		return Clock{}, fmt.Errorf("get clock decode: %w", err)
	}
	return Clock{Timestamp: r.Timestamp, IsOpen: r.IsOpen}, nil
}
