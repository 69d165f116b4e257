package usecase

import (
	"context"
	"fmt"
	"time"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
	"TradeSim/internal/repository"
)

// fakeMetrics counts calls so tests can assert on instrumentation.
type fakeMetrics struct {
	ticks     int
	signals   int
	skips     int
	decisions []string // "asset/action"
	errors    []string
}

func (m *fakeMetrics) RecordTickStored(asset string)       { m.ticks++ }
func (m *fakeMetrics) RecordSignal(asset string)           { m.signals++ }
func (m *fakeMetrics) RecordSignalSkip(asset string)       { m.skips++ }
func (m *fakeMetrics) RecordDecision(asset, action string) { m.decisions = append(m.decisions, asset+"/"+action) }
func (m *fakeMetrics) RecordError(kind string)             { m.errors = append(m.errors, kind) }
func (m *fakeMetrics) RecordLastPrice(asset string, price float64) {}
func (m *fakeMetrics) RecordLatency(op string, seconds float64)    {}

// flakyStore wraps the in-memory store and lets a test force individual
// operations to fail.
type flakyStore struct {
	*repository.MemoryMarketStore

	failLatestSignal bool
	failInsertSignal bool
	failInsertTrade  bool
	failUpsert       bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryMarketStore: repository.NewMemoryMarketStore()}
}

func (s *flakyStore) UpsertPrice(ctx context.Context, p *models.PricePoint) error {
	if s.failUpsert {
		return fmt.Errorf("upsert unavailable")
	}
	return s.MemoryMarketStore.UpsertPrice(ctx, p)
}

func (s *flakyStore) LatestSignal(ctx context.Context, asset string) (*models.Signal, error) {
	if s.failLatestSignal {
		return nil, fmt.Errorf("signal table unavailable")
	}
	return s.MemoryMarketStore.LatestSignal(ctx, asset)
}

func (s *flakyStore) InsertSignal(ctx context.Context, sig *models.Signal) error {
	if s.failInsertSignal {
		return fmt.Errorf("insert rejected")
	}
	return s.MemoryMarketStore.InsertSignal(ctx, sig)
}

func (s *flakyStore) InsertTrade(ctx context.Context, t *models.TradeAction) error {
	if s.failInsertTrade {
		return fmt.Errorf("insert rejected")
	}
	return s.MemoryMarketStore.InsertTrade(ctx, t)
}

// fixedSource returns a preset price per asset, or an error for assets it
// does not know.
type fixedSource struct {
	prices map[string]float64
}

func (s *fixedSource) Next(ctx context.Context, asset string) (float64, error) {
	p, ok := s.prices[asset]
	if !ok {
		return 0, fmt.Errorf("no feed for %s", asset)
	}
	return p, nil
}

func (s *fixedSource) Close() error { return nil }

// capturingPublisher records published trades; optionally fails.
type capturingPublisher struct {
	published []models.TradeAction
	fail      bool
}

func (p *capturingPublisher) Publish(ctx context.Context, t *models.TradeAction) error {
	if p.fail {
		return fmt.Errorf("broker unavailable")
	}
	p.published = append(p.published, *t)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

// seedPrices writes a series of prices one second apart, ending at end.
func seedPrices(t interface{ Fatalf(string, ...interface{}) }, store domrepo.MarketStore, asset string, end time.Time, prices []float64) {
	ctx := context.Background()
	start := end.Add(-time.Duration(len(prices)-1) * time.Second)
	for i, p := range prices {
		pp := &models.PricePoint{
			Asset:     asset,
			Timestamp: start.Add(time.Duration(i) * time.Second).Unix(),
			Price:     p,
		}
		if err := store.UpsertPrice(ctx, pp); err != nil {
			t.Fatalf("seed price: %v", err)
		}
	}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

var _ domrepo.Metrics = (*fakeMetrics)(nil)
var _ domrepo.PriceSource = (*fixedSource)(nil)
var _ domrepo.TradePublisher = (*capturingPublisher)(nil)
