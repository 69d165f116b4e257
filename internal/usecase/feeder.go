package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
	"TradeSim/internal/services/indicators"
	applogger "TradeSim/pkg/logger"
)

// Feeder writes one price observation per configured asset per tick. Prices
// come from the injected PriceSource (mock random walk or an upstream
// stream); each observation is rounded to 4 decimals and upserted so a
// colliding (asset, timestamp) replaces the earlier row.
type Feeder struct {
	source  domrepo.PriceSource
	store   domrepo.MarketStore
	metrics domrepo.Metrics
	l       *applogger.Logger
	assets  []models.AssetSpec

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

func NewFeeder(
	source domrepo.PriceSource,
	store domrepo.MarketStore,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	assets []models.AssetSpec,
) *Feeder {
	return &Feeder{
		source:  source,
		store:   store,
		metrics: metrics,
		l:       l,
		assets:  assets,
		now:     time.Now,
	}
}

// Run executes one feed tick. Every asset is attempted; per-asset failures
// are joined and propagated so the scheduler records a failed tick. There is
// no retry; the next tick is the retry.
func (f *Feeder) Run(ctx context.Context) error {
	ts := f.now().Unix()
	var errs []error

	for _, a := range f.assets {
		price, err := f.source.Next(ctx, a.Symbol)
		if err != nil {
			f.metrics.RecordError("feed_source")
			f.l.Warn("feeder: no observation",
				applogger.String("asset", a.Symbol),
				applogger.Error(err),
			)
			errs = append(errs, fmt.Errorf("next %s: %w", a.Symbol, err))
			continue
		}

		p := &models.PricePoint{
			Asset:     a.Symbol,
			Timestamp: ts,
			Price:     indicators.Round4(price),
		}
		if err := f.store.UpsertPrice(ctx, p); err != nil {
			f.metrics.RecordError("feed_store")
			f.l.Error("feeder: store write failed",
				applogger.String("asset", a.Symbol),
				applogger.Error(err),
			)
			errs = append(errs, fmt.Errorf("store %s: %w", a.Symbol, err))
			continue
		}

		f.metrics.RecordTickStored(a.Symbol)
		f.metrics.RecordLastPrice(a.Symbol, p.Price)
		f.l.Debug("feeder: stored observation",
			applogger.String("asset", a.Symbol),
			applogger.Float64("price", p.Price),
			applogger.Int64("ts", ts),
		)
	}

	return errors.Join(errs...)
}
