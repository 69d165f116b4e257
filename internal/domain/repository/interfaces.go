package repository

import (
	"context"
	"time"

	"TradeSim/internal/domain/models"
)

// MarketStore persists the three time series (prices, signals, trade actions)
// and answers the point/range queries the engines need. Every call is one
// atomic statement; there is no multi-statement transaction anywhere.
type MarketStore interface {
	Init(ctx context.Context) error

	// UpsertPrice inserts a price point, replacing any earlier row with the
	// same (asset, timestamp).
	UpsertPrice(ctx context.Context, p *models.PricePoint) error
	// LatestPrices returns up to limit most recent points, newest-first.
	LatestPrices(ctx context.Context, asset string, limit int) ([]models.PricePoint, error)
	// PricesInRange returns points in [from, to], oldest-first, up to limit.
	PricesInRange(ctx context.Context, asset string, from, to time.Time, limit int) ([]models.PricePoint, error)
	// LatestPrice returns the newest point, or nil when none exists.
	LatestPrice(ctx context.Context, asset string) (*models.PricePoint, error)

	InsertSignal(ctx context.Context, s *models.Signal) error
	// LatestSignal returns the newest signal, or nil when none exists.
	LatestSignal(ctx context.Context, asset string) (*models.Signal, error)

	InsertTrade(ctx context.Context, t *models.TradeAction) error
	// RecentTrades returns up to limit trades, newest-first.
	RecentTrades(ctx context.Context, asset string, limit int) ([]models.TradeAction, error)

	Health(ctx context.Context) error
	Close() error
}

// PriceSource produces the next observation for one asset. The mock source
// advances a per-asset random walk; stream-backed sources report the last
// price seen upstream.
type PriceSource interface {
	Next(ctx context.Context, asset string) (float64, error)
	Close() error
}

// TradePublisher fans executed trade actions out to an event stream.
type TradePublisher interface {
	Publish(ctx context.Context, t *models.TradeAction) error
	Close() error
}

// Metrics records operational counters for the simulator.
type Metrics interface {
	RecordTickStored(asset string)
	RecordSignal(asset string)
	RecordSignalSkip(asset string)
	RecordDecision(asset, action string)
	RecordError(kind string)
	RecordLastPrice(asset string, price float64)
	RecordLatency(op string, seconds float64)
}
