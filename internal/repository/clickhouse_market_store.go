package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
	pkgch "TradeSim/pkg/clickhouse"
	applogger "TradeSim/pkg/logger"
)

// CHMarketStore implements MarketStore backed by ClickHouse.
//
// price_points is a ReplacingMergeTree keyed (asset, ts); inserting the same
// key again replaces the earlier row, and reads use FINAL so the replacement
// is visible before background merges run. signals and trade_actions are
// plain append logs.
type CHMarketStore struct {
	client   *pkgch.Client
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHMarketStore(ch *pkgch.Client, database string) *CHMarketStore {
	return &CHMarketStore{client: ch, db: ch.DB(), database: database}
}

// SetLogger injects a structured logger.
func (s *CHMarketStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHMarketStore) Init(ctx context.Context) error {
	return nil // Schema init in pkg/clickhouse
}

func (s *CHMarketStore) UpsertPrice(ctx context.Context, p *models.PricePoint) error {
	q := fmt.Sprintf("INSERT INTO %s.price_points (asset, ts, price) VALUES (?, ?, ?)", s.database)
	_, err := s.db.ExecContext(ctx, q, p.Asset, time.Unix(p.Timestamp, 0), p.Price)
	if err != nil {
		s.logError("upsert_price", p.Asset, err)
		return fmt.Errorf("upsert price: %w", err)
	}
	return nil
}

func (s *CHMarketStore) LatestPrices(ctx context.Context, asset string, limit int) ([]models.PricePoint, error) {
	q := fmt.Sprintf(`
        SELECT asset, ts, price FROM %s.price_points FINAL
        WHERE asset = ?
        ORDER BY ts DESC
        LIMIT ?`, s.database)
	rows, err := s.db.QueryContext(ctx, q, asset, limit)
	if err != nil {
		s.logError("latest_prices", asset, err)
		return nil, fmt.Errorf("latest prices: %w", err)
	}
	defer rows.Close()
	return scanPrices(rows)
}

func (s *CHMarketStore) PricesInRange(ctx context.Context, asset string, from, to time.Time, limit int) ([]models.PricePoint, error) {
	q := fmt.Sprintf(`
        SELECT asset, ts, price FROM %s.price_points FINAL
        WHERE asset = ? AND ts >= ? AND ts <= ?
        ORDER BY ts ASC
        LIMIT ?`, s.database)
	rows, err := s.db.QueryContext(ctx, q, asset, from, to, limit)
	if err != nil {
		s.logError("prices_in_range", asset, err)
		return nil, fmt.Errorf("prices in range: %w", err)
	}
	defer rows.Close()
	return scanPrices(rows)
}

func (s *CHMarketStore) LatestPrice(ctx context.Context, asset string) (*models.PricePoint, error) {
	q := fmt.Sprintf(`
        SELECT asset, ts, price FROM %s.price_points FINAL
        WHERE asset = ?
        ORDER BY ts DESC
        LIMIT 1`, s.database)
	var (
		p  models.PricePoint
		ts time.Time
	)
	err := s.db.QueryRowContext(ctx, q, asset).Scan(&p.Asset, &ts, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logError("latest_price", asset, err)
		return nil, fmt.Errorf("latest price: %w", err)
	}
	p.Timestamp = ts.Unix()
	return &p, nil
}

func (s *CHMarketStore) InsertSignal(ctx context.Context, sig *models.Signal) error {
	q := fmt.Sprintf(`
        INSERT INTO %s.signals (asset, ts, signal_value, sma_short, sma_long)
        VALUES (?, ?, ?, ?, ?)`, s.database)
	_, err := s.db.ExecContext(ctx, q,
		sig.Asset,
		time.Unix(sig.Timestamp, 0),
		sig.Value,
		sig.SMAShort,
		sig.SMALong,
	)
	if err != nil {
		s.logError("insert_signal", sig.Asset, err)
		return fmt.Errorf("insert signal: %w", err)
	}
	return nil
}

func (s *CHMarketStore) LatestSignal(ctx context.Context, asset string) (*models.Signal, error) {
	q := fmt.Sprintf(`
        SELECT asset, ts, signal_value, sma_short, sma_long FROM %s.signals
        WHERE asset = ?
        ORDER BY ts DESC
        LIMIT 1`, s.database)
	var (
		sig      models.Signal
		ts       time.Time
		smaShort sql.NullFloat64
		smaLong  sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, q, asset).Scan(&sig.Asset, &ts, &sig.Value, &smaShort, &smaLong)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logError("latest_signal", asset, err)
		return nil, fmt.Errorf("latest signal: %w", err)
	}
	sig.Timestamp = ts.Unix()
	if smaShort.Valid {
		v := smaShort.Float64
		sig.SMAShort = &v
	}
	if smaLong.Valid {
		v := smaLong.Float64
		sig.SMALong = &v
	}
	return &sig, nil
}

func (s *CHMarketStore) InsertTrade(ctx context.Context, t *models.TradeAction) error {
	q := fmt.Sprintf(`
        INSERT INTO %s.trade_actions (asset, ts, action, quantity, price)
        VALUES (?, ?, ?, ?, ?)`, s.database)
	_, err := s.db.ExecContext(ctx, q,
		t.Asset,
		time.Unix(t.Timestamp, 0),
		string(t.Action),
		t.Quantity,
		t.Price,
	)
	if err != nil {
		s.logError("insert_trade", t.Asset, err)
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

func (s *CHMarketStore) RecentTrades(ctx context.Context, asset string, limit int) ([]models.TradeAction, error) {
	q := fmt.Sprintf(`
        SELECT asset, ts, action, quantity, price FROM %s.trade_actions
        WHERE asset = ?
        ORDER BY ts DESC
        LIMIT ?`, s.database)
	rows, err := s.db.QueryContext(ctx, q, asset, limit)
	if err != nil {
		s.logError("recent_trades", asset, err)
		return nil, fmt.Errorf("recent trades: %w", err)
	}
	defer rows.Close()

	out := make([]models.TradeAction, 0, limit)
	for rows.Next() {
		var (
			t      models.TradeAction
			ts     time.Time
			action string
		)
		if err := rows.Scan(&t.Asset, &ts, &action, &t.Quantity, &t.Price); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.Timestamp = ts.Unix()
		t.Action = models.Action(action)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *CHMarketStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHMarketStore) Close() error {
	return s.client.Close()
}

func (s *CHMarketStore) logError(op, asset string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error("clickhouse market store error",
		applogger.String("op", op),
		applogger.String("asset", asset),
		applogger.Error(err),
	)
}

func scanPrices(rows *sql.Rows) ([]models.PricePoint, error) {
	var out []models.PricePoint
	for rows.Next() {
		var (
			p  models.PricePoint
			ts time.Time
		)
		if err := rows.Scan(&p.Asset, &ts, &p.Price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		p.Timestamp = ts.Unix()
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ domrepo.MarketStore = (*CHMarketStore)(nil)
