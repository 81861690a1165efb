package broker

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// TradeUpdate is one fill/cancel event pushed over the broker stream.
type TradeUpdate struct {
	Event  string
	Symbol string
	Qty    float64
	Price  float64
}

// StreamTradeUpdates subscribes to the broker's order-event stream and
// reconnects with backoff until the context ends. The channel closes when
// reconnection gives up or the context is done.
func (c *Alpaca) StreamTradeUpdates(ctx context.Context, wsURL string) <-chan TradeUpdate {
	ch := make(chan TradeUpdate)
	go func() {
		defer close(ch)
		dialer := &websocket.Dialer{}
		retry := 0
		for {
			conn, _, err := dialer.DialContext(ctx, wsURL, nil)
			if err != nil {
				retry++
				if retry > 8 {
					return
				}
				time.Sleep(time.Duration(300*retry) * time.Millisecond)
				continue
			}
			retry = 0
			_ = conn.WriteJSON(map[string]any{
				"action": "auth",
				"key":    c.key,
				"secret": c.secret,
			})
			_ = conn.WriteJSON(map[string]any{
				"action": "listen",
				"data":   map[string][]string{"streams": {"trade_updates"}},
			})

			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					_ = conn.Close()
					break
				}
				var frame struct {
					Stream string `json:"stream"`
					Data   struct {
						Event string `json:"event"`
						Order struct {
							Symbol      string `json:"symbol"`
							FilledQty   string `json:"filled_qty"`
							FilledPrice string `json:"filled_avg_price"`
						} `json:"order"`
					} `json:"data"`
				}
				if err := json.Unmarshal(msg, &frame); err != nil || frame.Stream != "trade_updates" {
					continue
				}
				upd := TradeUpdate{
					Event:  frame.Data.Event,
					Symbol: frame.Data.Order.Symbol,
					Qty:    parseFloat(frame.Data.Order.FilledQty),
					Price:  parseFloat(frame.Data.Order.FilledPrice),
				}
				select {
				case ch <- upd:
				case <-ctx.Done():
					_ = conn.Close()
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			default:
				time.Sleep(1 * time.Second)
			}
		}
	}()
	return ch
}
