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

// fetchMargin is how many points beyond the long window the engine asks the
// store for, so a late-arriving tick cannot starve the window.
const fetchMargin = 5

// SignalConfig holds the crossover parameters.
type SignalConfig struct {
	ShortWindow int
	LongWindow  int
	// MaxDiff is the SMA spread, as a fraction of the latest price, that
	// saturates the signal (0.01 maps a +/-1% spread to the full [0,1]).
	MaxDiff float64
}

// SignalEngine derives a normalized conviction value in [0,1] from the spread
// between a short and a long simple moving average. It is stateless between
// invocations; every tick re-reads the price history from the store.
type SignalEngine struct {
	store   domrepo.MarketStore
	metrics domrepo.Metrics
	l       *applogger.Logger
	cfg     SignalConfig
	assets  []models.AssetSpec

	now func() time.Time
}

func NewSignalEngine(
	store domrepo.MarketStore,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	cfg SignalConfig,
	assets []models.AssetSpec,
) *SignalEngine {
	return &SignalEngine{
		store:   store,
		metrics: metrics,
		l:       l,
		cfg:     cfg,
		assets:  assets,
		now:     time.Now,
	}
}

// Run computes and stores one signal per configured asset, sequentially.
// Per-asset storage failures are joined and propagated; a skipped asset
// (not enough history) is not an error.
func (e *SignalEngine) Run(ctx context.Context) error {
	var errs []error
	for _, a := range e.assets {
		if err := e.Generate(ctx, a.Symbol); err != nil {
			errs = append(errs, fmt.Errorf("signal %s: %w", a.Symbol, err))
		}
	}
	return errors.Join(errs...)
}

// Generate computes the signal for one asset and writes one Signal row.
//
// Fewer than LongWindow points is a skip, not an error. When either average
// is undefined at the head of the series the signal is neutral (0.5) with
// absent SMAs. Otherwise the SMA spread is taken as a fraction of the latest
// price, scaled by MaxDiff, clamped to [-1,1] and shifted into [0,1].
func (e *SignalEngine) Generate(ctx context.Context, asset string) error {
	points, err := e.store.LatestPrices(ctx, asset, e.cfg.LongWindow+fetchMargin)
	if err != nil {
		e.metrics.RecordError("signal_fetch")
		return fmt.Errorf("fetch prices: %w", err)
	}

	if len(points) < e.cfg.LongWindow {
		e.metrics.RecordSignalSkip(asset)
		e.l.Info("signal engine: not enough data, skipping",
			applogger.String("asset", asset),
			applogger.Int("need", e.cfg.LongWindow),
			applogger.Int("found", len(points)),
		)
		return nil
	}

	// store returns newest-first; compute on ascending series
	series := make([]float64, len(points))
	for i, p := range points {
		series[len(points)-1-i] = p.Price
	}
	latestPrice := series[len(series)-1]

	smaShort, okShort := indicators.SMA(series, e.cfg.ShortWindow)
	smaLong, okLong := indicators.SMA(series, e.cfg.LongWindow)

	sig := &models.Signal{
		Asset:     asset,
		Timestamp: e.now().Unix(),
		Value:     0.5,
	}
	if okShort && okLong {
		diffPct := (smaShort - smaLong) / latestPrice
		normalized := indicators.Clamp(diffPct/e.cfg.MaxDiff, -1.0, 1.0)
		sig.Value = indicators.Round4((normalized + 1.0) / 2.0)

		short := indicators.Round4(smaShort)
		long := indicators.Round4(smaLong)
		sig.SMAShort = &short
		sig.SMALong = &long
	}

	if err := e.store.InsertSignal(ctx, sig); err != nil {
		e.metrics.RecordError("signal_store")
		return fmt.Errorf("insert signal: %w", err)
	}

	e.metrics.RecordSignal(asset)
	e.l.Info("signal engine: signal written",
		applogger.String("asset", asset),
		applogger.Float64("signal", sig.Value),
	)
	return nil
}
