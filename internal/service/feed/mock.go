package feed

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
)

// MockSource simulates an upstream market by advancing a bounded random walk
// per asset. The retained last price is an explicit state record owned by the
// source instance, seeded from the configured initial prices; there is no
// package-level price state.
type MockSource struct {
	mu         sync.Mutex
	last       map[string]float64
	maxStepPct float64
	rng        *rand.Rand
}

// NewMockSource seeds the walk from asset initial prices. maxStepPct bounds
// each step as a fraction of the retained price (0.005 = +/-0.5%).
func NewMockSource(assets []models.AssetSpec, maxStepPct float64, rng *rand.Rand) *MockSource {
	last := make(map[string]float64, len(assets))
	for _, a := range assets {
		last[a.Symbol] = a.InitialPrice
	}
	return &MockSource{last: last, maxStepPct: maxStepPct, rng: rng}
}

// Next advances the walk for asset and returns the new price.
func (s *MockSource) Next(ctx context.Context, asset string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.last[asset]
	if !ok {
		return 0, fmt.Errorf("mock feed: unknown asset %s", asset)
	}

	// uniform in [-maxStepPct, +maxStepPct] of the retained price
	step := (s.rng.Float64()*2 - 1) * s.maxStepPct * price
	price += step
	s.last[asset] = price
	return price, nil
}

func (s *MockSource) Close() error { return nil }

var _ domrepo.PriceSource = (*MockSource)(nil)
