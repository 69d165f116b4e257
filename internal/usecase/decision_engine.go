package usecase

import (
	"context"
	"fmt"
	"time"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
	applogger "TradeSim/pkg/logger"
)

// DecisionConfig holds the thresholds and trade size for one asset class.
type DecisionConfig struct {
	Class         models.AssetClass
	BuyThreshold  float64
	SellThreshold float64
	Quantity      float64
}

// DecisionEngine turns the latest signal into a simulated trade for the
// assets of one class. One instance runs per class on its own timer.
//
// Failure policy is asymmetric: a failed signal lookup degrades to neutral
// (0.5) and the tick proceeds, while a failed trade insert propagates.
type DecisionEngine struct {
	store   domrepo.MarketStore
	pub     domrepo.TradePublisher // optional
	metrics domrepo.Metrics
	l       *applogger.Logger
	cfg     DecisionConfig
	assets  []models.AssetSpec

	now func() time.Time
}

func NewDecisionEngine(
	store domrepo.MarketStore,
	pub domrepo.TradePublisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	cfg DecisionConfig,
	assets []models.AssetSpec,
) *DecisionEngine {
	engineAssets := make([]models.AssetSpec, 0, len(assets))
	for _, a := range assets {
		if a.Class == cfg.Class {
			engineAssets = append(engineAssets, a)
		}
	}
	return &DecisionEngine{
		store:   store,
		pub:     pub,
		metrics: metrics,
		l:       l,
		cfg:     cfg,
		assets:  engineAssets,
		now:     time.Now,
	}
}

// Class reports which asset class this engine trades.
func (e *DecisionEngine) Class() models.AssetClass { return e.cfg.Class }

// Run decides once for every asset of this engine's class.
func (e *DecisionEngine) Run(ctx context.Context) error {
	for _, a := range e.assets {
		if err := e.Decide(ctx, a.Symbol); err != nil {
			return err
		}
	}
	return nil
}

// Decide fetches the latest price and signal for asset, applies the
// thresholds (inclusive on both sides) and persists a non-HOLD action.
// No price data at all skips the tick entirely; not even HOLD is recorded.
func (e *DecisionEngine) Decide(ctx context.Context, asset string) error {
	price, err := e.store.LatestPrice(ctx, asset)
	if err != nil {
		e.metrics.RecordError("decision_price")
		return fmt.Errorf("latest price: %w", err)
	}
	if price == nil {
		e.l.Info("decision engine: no price data, skipping",
			applogger.String("asset", asset),
		)
		return nil
	}

	signalValue := 0.5
	sig, err := e.store.LatestSignal(ctx, asset)
	if err != nil {
		// degrade to neutral rather than abort; see type comment
		e.metrics.RecordError("decision_signal")
		e.l.Warn("decision engine: signal lookup failed, defaulting to neutral",
			applogger.String("asset", asset),
			applogger.Error(err),
		)
	} else if sig != nil {
		signalValue = sig.Value
	}

	action := models.ActionHold
	switch {
	case signalValue >= e.cfg.BuyThreshold:
		action = models.ActionBuy
	case signalValue <= e.cfg.SellThreshold:
		action = models.ActionSell
	}
	e.metrics.RecordDecision(asset, string(action))

	if action == models.ActionHold {
		e.l.Info("decision engine: holding",
			applogger.String("asset", asset),
			applogger.Float64("signal", signalValue),
		)
		return nil
	}

	trade := &models.TradeAction{
		Asset:     asset,
		Timestamp: e.now().Unix(),
		Action:    action,
		Quantity:  e.cfg.Quantity,
		Price:     price.Price,
	}
	if err := e.store.InsertTrade(ctx, trade); err != nil {
		e.metrics.RecordError("decision_store")
		return fmt.Errorf("insert trade: %w", err)
	}

	if e.pub != nil {
		// event stream is best-effort; the store row is the record
		if err := e.pub.Publish(ctx, trade); err != nil {
			e.metrics.RecordError("decision_publish")
			e.l.Warn("decision engine: trade publish failed",
				applogger.String("asset", asset),
				applogger.Error(err),
			)
		}
	}

	e.l.Info("decision engine: trade executed",
		applogger.String("asset", asset),
		applogger.String("action", string(action)),
		applogger.Float64("quantity", trade.Quantity),
		applogger.Float64("price", trade.Price),
		applogger.Float64("signal", signalValue),
	)
	return nil
}
