package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
	icache "TradeSim/internal/service/cache"
	applogger "TradeSim/pkg/logger"

	"time"
)

// summaryTradeLimit caps the trade list on the dashboard.
const summaryTradeLimit = 5

const summaryCacheKey = "tradesim:summary"

// SummaryService assembles the per-asset dashboard view: latest price, latest
// signal and the last five trades, newest-first. Reads are uncoordinated
// snapshots; price, signal and trades may belong to different ticks.
type SummaryService struct {
	store  domrepo.MarketStore
	cache  icache.BytesCache
	ttl    time.Duration
	l      *applogger.Logger
	assets []models.AssetSpec
}

func NewSummaryService(
	store domrepo.MarketStore,
	cache icache.BytesCache,
	ttl time.Duration,
	l *applogger.Logger,
	assets []models.AssetSpec,
) *SummaryService {
	return &SummaryService{store: store, cache: cache, ttl: ttl, l: l, assets: assets}
}

// Summary returns one AssetSummary per configured asset, in configuration
// order. Results are cached for the configured TTL so dashboard refreshes do
// not hammer the store.
func (s *SummaryService) Summary(ctx context.Context) ([]models.AssetSummary, error) {
	if s.cache != nil {
		if b, ok, err := s.cache.GetBytes(summaryCacheKey); err == nil && ok {
			var cached []models.AssetSummary
			if err := json.Unmarshal(b, &cached); err == nil {
				return cached, nil
			}
		}
	}

	out := make([]models.AssetSummary, 0, len(s.assets))
	for _, a := range s.assets {
		sum, err := s.assetSummary(ctx, a.Symbol)
		if err != nil {
			return nil, fmt.Errorf("summary %s: %w", a.Symbol, err)
		}
		out = append(out, sum)
	}

	if s.cache != nil {
		if b, err := json.Marshal(out); err == nil {
			if err := s.cache.SetBytes(summaryCacheKey, b, s.ttl); err != nil {
				s.l.Warn("summary: cache write failed", applogger.Error(err))
			}
		}
	}
	return out, nil
}

func (s *SummaryService) assetSummary(ctx context.Context, asset string) (models.AssetSummary, error) {
	sum := models.AssetSummary{
		Asset:  asset,
		Signal: 0.5, // neutral until a signal exists
		Trades: []models.TradeAction{},
	}

	price, err := s.store.LatestPrice(ctx, asset)
	if err != nil {
		return sum, fmt.Errorf("latest price: %w", err)
	}
	if price != nil {
		sum.Price = price.Price
		sum.Timestamp = price.Timestamp
	}

	sig, err := s.store.LatestSignal(ctx, asset)
	if err != nil {
		return sum, fmt.Errorf("latest signal: %w", err)
	}
	if sig != nil {
		sum.Signal = sig.Value
		sum.SMAShort = sig.SMAShort
		sum.SMALong = sig.SMALong
	}

	trades, err := s.store.RecentTrades(ctx, asset, summaryTradeLimit)
	if err != nil {
		return sum, fmt.Errorf("recent trades: %w", err)
	}
	if trades != nil {
		sum.Trades = trades
	}

	return sum, nil
}
