package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	domrepo "TradeSim/internal/domain/repository"
	applogger "TradeSim/pkg/logger"

	"github.com/gorilla/websocket"
)

// WSSource is a PriceSource backed by an upstream ticker WebSocket
// (finnhub-style protocol: subscribe per symbol, trades pushed as JSON).
// A background read loop retains the last observed price per asset; Next
// reports that retained observation.
type WSSource struct {
	url            string
	apiKey         string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	l              *applogger.Logger

	mu     sync.RWMutex
	last   map[string]float64
	conn   *websocket.Conn
	cancel context.CancelFunc
}

func NewWSSource(url, apiKey string, symbols []string, reconnectDelay, pingInterval time.Duration, l *applogger.Logger) *WSSource {
	return &WSSource{
		url:            url,
		apiKey:         apiKey,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		l:              l,
		last:           make(map[string]float64),
	}
}

// Start connects, subscribes, and launches the read loop. Must be called
// before the first Next.
func (s *WSSource) Start(ctx context.Context) error {
	if err := s.connect(ctx); err != nil {
		return err
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.readLoop(loopCtx)
	go s.pingLoop(loopCtx)
	return nil
}

func (s *WSSource) connect(ctx context.Context) error {
	u := s.url
	if s.apiKey != "" {
		u = fmt.Sprintf("%s?token=%s", s.url, s.apiKey)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	for _, sym := range s.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}
	s.l.Info("feed: websocket connected", applogger.Strings("symbols", s.symbols))
	return nil
}

type wsTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	T int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsTrade `json:"data"`
}

func (s *WSSource) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()

		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			s.l.Warn("feed: read error, reconnecting", applogger.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.reconnectDelay):
			}
			if err := s.connect(ctx); err != nil {
				s.l.Error("feed: reconnect failed", applogger.Error(err))
			}
			continue
		}
		if msg.Type != "trade" {
			continue
		}

		s.mu.Lock()
		for _, t := range msg.Data {
			s.last[t.S] = t.P
		}
		s.mu.Unlock()
	}
}

func (s *WSSource) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			conn := s.conn
			s.mu.RUnlock()
			if conn != nil {
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}
}

// Next returns the last observed upstream price for asset. An asset the
// stream has not reported yet is an error; the feeder logs it and moves on.
func (s *WSSource) Next(ctx context.Context, asset string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	price, ok := s.last[asset]
	if !ok {
		return 0, fmt.Errorf("feed: no observation yet for %s", asset)
	}
	return price, nil
}

func (s *WSSource) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

var _ domrepo.PriceSource = (*WSSource)(nil)
