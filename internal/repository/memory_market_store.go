package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
)

// MemoryMarketStore is an in-process MarketStore used by the `memory` storage
// backend and by tests. Semantics match the ClickHouse store: prices replace
// on (asset, timestamp) collision, signals and trades append.
type MemoryMarketStore struct {
	mu      sync.RWMutex
	prices  map[string]map[int64]float64 // asset -> ts -> price
	signals map[string][]models.Signal
	trades  map[string][]models.TradeAction
}

func NewMemoryMarketStore() *MemoryMarketStore {
	return &MemoryMarketStore{
		prices:  make(map[string]map[int64]float64),
		signals: make(map[string][]models.Signal),
		trades:  make(map[string][]models.TradeAction),
	}
}

func (s *MemoryMarketStore) Init(ctx context.Context) error { return nil }

func (s *MemoryMarketStore) UpsertPrice(ctx context.Context, p *models.PricePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byTS, ok := s.prices[p.Asset]
	if !ok {
		byTS = make(map[int64]float64)
		s.prices[p.Asset] = byTS
	}
	byTS[p.Timestamp] = p.Price
	return nil
}

func (s *MemoryMarketStore) LatestPrices(ctx context.Context, asset string, limit int) ([]models.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pts := s.sortedPricesLocked(asset)
	// newest-first
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
	if limit > 0 && len(pts) > limit {
		pts = pts[:limit]
	}
	return pts, nil
}

func (s *MemoryMarketStore) PricesInRange(ctx context.Context, asset string, from, to time.Time, limit int) ([]models.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.PricePoint
	for _, p := range s.sortedPricesLocked(asset) {
		if p.Timestamp < from.Unix() || p.Timestamp > to.Unix() {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryMarketStore) LatestPrice(ctx context.Context, asset string) (*models.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pts := s.sortedPricesLocked(asset)
	if len(pts) == 0 {
		return nil, nil
	}
	p := pts[len(pts)-1]
	return &p, nil
}

func (s *MemoryMarketStore) InsertSignal(ctx context.Context, sig *models.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals[sig.Asset] = append(s.signals[sig.Asset], *sig)
	return nil
}

func (s *MemoryMarketStore) LatestSignal(ctx context.Context, asset string) (*models.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sigs := s.signals[asset]
	if len(sigs) == 0 {
		return nil, nil
	}
	best := sigs[0]
	for _, sg := range sigs[1:] {
		if sg.Timestamp >= best.Timestamp {
			best = sg
		}
	}
	return &best, nil
}

func (s *MemoryMarketStore) InsertTrade(ctx context.Context, t *models.TradeAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades[t.Asset] = append(s.trades[t.Asset], *t)
	return nil
}

func (s *MemoryMarketStore) RecentTrades(ctx context.Context, asset string, limit int) ([]models.TradeAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.trades[asset]
	out := make([]models.TradeAction, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
	}
	// stable newest-first; ties keep most recent insertion first
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryMarketStore) Health(ctx context.Context) error { return nil }

func (s *MemoryMarketStore) Close() error { return nil }

func (s *MemoryMarketStore) sortedPricesLocked(asset string) []models.PricePoint {
	byTS := s.prices[asset]
	out := make([]models.PricePoint, 0, len(byTS))
	for ts, price := range byTS {
		out = append(out, models.PricePoint{Asset: asset, Timestamp: ts, Price: price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

var _ domrepo.MarketStore = (*MemoryMarketStore)(nil)
