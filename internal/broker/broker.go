package broker

import (
	"context"
	"time"

	"rebalance_bot/internal/models"
)

type OrderType string

type TimeInForce string

const (
	TypeMarket OrderType   = "market"
	TIFDay     TimeInForce = "day"
)

type AccountInfo struct {
	Cash float64
}

// Clock is the broker's notion of market time.
type Clock struct {
	Timestamp time.Time
	IsOpen    bool
}

// Broker is the only surface the core touches to reach an exchange.
// Live and simulated implementations are interchangeable.
type Broker interface {
	SubmitOrder(ctx context.Context, o models.Order, typ OrderType, tif TimeInForce) error
	CountOpenOrders(ctx context.Context) (int, error)
	GetAccount(ctx context.Context) (AccountInfo, error)
	ListPositions(ctx context.Context) ([]models.BrokerPosition, error)
	GetClock(ctx context.Context) (Clock, error)
}
