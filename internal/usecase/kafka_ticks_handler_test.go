package usecase

import (
	"context"
	"testing"

	applogger "TradeSim/pkg/logger"
)

func TestTicksHandlerStoresTick(t *testing.T) {
	store := newFlakyStore()
	h := NewTicksHandler("market.ticks", store, &fakeMetrics{}, applogger.Nop())

	msg := []byte(`{"asset":"BTC","t":1700000000,"p":65000.123456}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	p, _ := store.LatestPrice(context.Background(), "BTC")
	if p == nil || p.Price != 65000.1235 || p.Timestamp != 1700000000 {
		t.Fatalf("unexpected stored point %+v", p)
	}
}

func TestTicksHandlerNormalizesMilliseconds(t *testing.T) {
	store := newFlakyStore()
	h := NewTicksHandler("market.ticks", store, &fakeMetrics{}, applogger.Nop())

	msg := []byte(`{"asset":"BTC","t":1700000000123,"p":65000}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	p, _ := store.LatestPrice(context.Background(), "BTC")
	if p == nil || p.Timestamp != 1700000000 {
		t.Fatalf("expected seconds timestamp, got %+v", p)
	}
}

func TestTicksHandlerRejectsBadPayloads(t *testing.T) {
	store := newFlakyStore()
	metrics := &fakeMetrics{}
	h := NewTicksHandler("market.ticks", store, metrics, applogger.Nop())

	for _, msg := range []string{`not json`, `{"asset":"","t":1,"p":1}`, `{"asset":"BTC","t":1,"p":0}`} {
		if err := h.Handle(context.Background(), []byte(msg)); err == nil {
			t.Fatalf("expected error for %q", msg)
		}
	}
	if len(metrics.errors) != 3 {
		t.Fatalf("expected 3 recorded errors, got %v", metrics.errors)
	}
}
