package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
	"TradeSim/internal/services/indicators"
	applogger "TradeSim/pkg/logger"
)

// tickMessage is the wire shape of one upstream tick.
type tickMessage struct {
	Asset     string  `json:"asset"`
	Timestamp int64   `json:"t"`
	Price     float64 `json:"p"`
}

// TicksHandler ingests price ticks from a Kafka topic into the market store.
// It is an alternative upstream to the interval feeder; both write through the
// same upsert path.
type TicksHandler struct {
	topic   string
	store   domrepo.MarketStore
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewTicksHandler(topic string, store domrepo.MarketStore, metrics domrepo.Metrics, l *applogger.Logger) *TicksHandler {
	return &TicksHandler{topic: topic, store: store, metrics: metrics, l: l}
}

func (h *TicksHandler) Topic() string { return h.topic }

// Handle decodes one tick and upserts it. Upstream producers often stamp
// milliseconds; anything that large is normalized down to seconds.
func (h *TicksHandler) Handle(ctx context.Context, value []byte) error {
	var msg tickMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		h.metrics.RecordError("ticks_decode")
		return fmt.Errorf("decode tick: %w", err)
	}
	if msg.Asset == "" || msg.Price <= 0 {
		h.metrics.RecordError("ticks_invalid")
		return fmt.Errorf("invalid tick: asset=%q price=%v", msg.Asset, msg.Price)
	}

	ts := msg.Timestamp
	if ts > 1e12 {
		ts /= 1000
	}

	p := &models.PricePoint{
		Asset:     msg.Asset,
		Timestamp: ts,
		Price:     indicators.Round4(msg.Price),
	}
	if err := h.store.UpsertPrice(ctx, p); err != nil {
		h.metrics.RecordError("ticks_store")
		return fmt.Errorf("store tick: %w", err)
	}

	h.metrics.RecordTickStored(msg.Asset)
	h.metrics.RecordLastPrice(msg.Asset, p.Price)
	h.l.Debug("ticks handler: stored tick",
		applogger.String("asset", msg.Asset),
		applogger.Float64("price", p.Price),
	)
	return nil
}
