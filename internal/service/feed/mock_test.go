package feed

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"TradeSim/internal/domain/models"
)

func specs() []models.AssetSpec {
	return []models.AssetSpec{
		{Symbol: "AAPL", Class: models.ClassEquity, InitialPrice: 170.00},
		{Symbol: "BTC", Class: models.ClassCrypto, InitialPrice: 65000.00},
	}
}

func TestMockSourceBoundedStep(t *testing.T) {
	src := NewMockSource(specs(), 0.005, rand.New(rand.NewSource(1)))
	ctx := context.Background()

	prev := 170.00
	for i := 0; i < 1000; i++ {
		price, err := src.Next(ctx, "AAPL")
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if math.Abs(price-prev) > 0.005*prev+1e-9 {
			t.Fatalf("step %d exceeded bound: %v -> %v", i, prev, price)
		}
		prev = price
	}
}

func TestMockSourceStateAdvances(t *testing.T) {
	src := NewMockSource(specs(), 0.005, rand.New(rand.NewSource(42)))
	ctx := context.Background()

	p1, err := src.Next(ctx, "BTC")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	p2, err := src.Next(ctx, "BTC")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	// the second step walks from p1, not from the initial price
	if math.Abs(p2-p1) > 0.005*p1+1e-9 {
		t.Fatalf("second step did not start from retained state: %v -> %v", p1, p2)
	}
}

func TestMockSourceIndependentAssets(t *testing.T) {
	src := NewMockSource(specs(), 0.005, rand.New(rand.NewSource(7)))
	ctx := context.Background()

	if _, err := src.Next(ctx, "AAPL"); err != nil {
		t.Fatalf("next AAPL: %v", err)
	}
	price, err := src.Next(ctx, "BTC")
	if err != nil {
		t.Fatalf("next BTC: %v", err)
	}
	if math.Abs(price-65000.00) > 0.005*65000.00+1e-9 {
		t.Fatalf("BTC walk was disturbed by AAPL tick: %v", price)
	}
}

func TestMockSourceUnknownAsset(t *testing.T) {
	src := NewMockSource(specs(), 0.005, rand.New(rand.NewSource(3)))
	if _, err := src.Next(context.Background(), "DOGE"); err == nil {
		t.Fatalf("expected error for unconfigured asset")
	}
}
