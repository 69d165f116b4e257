package repository

import (
	"context"
	"testing"
	"time"

	"TradeSim/internal/domain/models"
)

func TestMemoryStorePriceRoundTrip(t *testing.T) {
	s := NewMemoryMarketStore()
	ctx := context.Background()

	if err := s.UpsertPrice(ctx, &models.PricePoint{Asset: "AAPL", Timestamp: 100, Price: 170.1234}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := s.LatestPrice(ctx, "AAPL")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got == nil || got.Price != 170.1234 {
		t.Fatalf("expected 170.1234, got %+v", got)
	}
}

func TestMemoryStoreReinsertReplaces(t *testing.T) {
	s := NewMemoryMarketStore()
	ctx := context.Background()

	_ = s.UpsertPrice(ctx, &models.PricePoint{Asset: "AAPL", Timestamp: 100, Price: 170.0})
	_ = s.UpsertPrice(ctx, &models.PricePoint{Asset: "AAPL", Timestamp: 100, Price: 171.0})

	pts, err := s.LatestPrices(ctx, "AAPL", 10)
	if err != nil {
		t.Fatalf("latest prices: %v", err)
	}
	if len(pts) != 1 {
		t.Fatalf("expected 1 row after replace, got %d", len(pts))
	}
	if pts[0].Price != 171.0 {
		t.Fatalf("expected replaced price 171.0, got %v", pts[0].Price)
	}
}

func TestMemoryStoreLatestPricesNewestFirst(t *testing.T) {
	s := NewMemoryMarketStore()
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		_ = s.UpsertPrice(ctx, &models.PricePoint{Asset: "BTC", Timestamp: i, Price: float64(i)})
	}

	pts, err := s.LatestPrices(ctx, "BTC", 3)
	if err != nil {
		t.Fatalf("latest prices: %v", err)
	}
	if len(pts) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(pts))
	}
	if pts[0].Timestamp != 5 || pts[1].Timestamp != 4 || pts[2].Timestamp != 3 {
		t.Fatalf("expected newest-first 5,4,3, got %v %v %v",
			pts[0].Timestamp, pts[1].Timestamp, pts[2].Timestamp)
	}
}

func TestMemoryStorePricesInRange(t *testing.T) {
	s := NewMemoryMarketStore()
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		_ = s.UpsertPrice(ctx, &models.PricePoint{Asset: "BTC", Timestamp: i, Price: float64(i)})
	}

	pts, err := s.PricesInRange(ctx, "BTC", time.Unix(2, 0), time.Unix(4, 0), 0)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(pts) != 3 {
		t.Fatalf("expected 3 rows in range, got %d", len(pts))
	}
	if pts[0].Timestamp != 2 || pts[2].Timestamp != 4 {
		t.Fatalf("expected oldest-first 2..4, got %v..%v", pts[0].Timestamp, pts[2].Timestamp)
	}
}

func TestMemoryStoreLatestSignalAndMissing(t *testing.T) {
	s := NewMemoryMarketStore()
	ctx := context.Background()

	if sig, err := s.LatestSignal(ctx, "AAPL"); err != nil || sig != nil {
		t.Fatalf("expected no signal, got %+v err=%v", sig, err)
	}

	_ = s.InsertSignal(ctx, &models.Signal{Asset: "AAPL", Timestamp: 10, Value: 0.4})
	_ = s.InsertSignal(ctx, &models.Signal{Asset: "AAPL", Timestamp: 20, Value: 0.8})

	sig, err := s.LatestSignal(ctx, "AAPL")
	if err != nil {
		t.Fatalf("latest signal: %v", err)
	}
	if sig == nil || sig.Value != 0.8 {
		t.Fatalf("expected newest signal 0.8, got %+v", sig)
	}
}

func TestMemoryStoreRecentTradesNewestFirst(t *testing.T) {
	s := NewMemoryMarketStore()
	ctx := context.Background()

	for i := int64(1); i <= 7; i++ {
		_ = s.InsertTrade(ctx, &models.TradeAction{
			Asset: "BTC", Timestamp: i, Action: models.ActionBuy, Quantity: 0.01, Price: float64(i),
		})
	}

	trades, err := s.RecentTrades(ctx, "BTC", 5)
	if err != nil {
		t.Fatalf("recent trades: %v", err)
	}
	if len(trades) != 5 {
		t.Fatalf("expected 5 trades, got %d", len(trades))
	}
	if trades[0].Timestamp != 7 || trades[4].Timestamp != 3 {
		t.Fatalf("expected newest-first 7..3, got %v..%v", trades[0].Timestamp, trades[4].Timestamp)
	}
}

func TestMemoryStoreDuplicateTradesKept(t *testing.T) {
	s := NewMemoryMarketStore()
	ctx := context.Background()

	tr := &models.TradeAction{Asset: "AAPL", Timestamp: 9, Action: models.ActionSell, Quantity: 10, Price: 150}
	_ = s.InsertTrade(ctx, tr)
	_ = s.InsertTrade(ctx, tr)

	trades, err := s.RecentTrades(ctx, "AAPL", 10)
	if err != nil {
		t.Fatalf("recent trades: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("trade history is append-only, expected 2 rows, got %d", len(trades))
	}
}
