package models

// AssetClass selects the decision thresholds and trade size for a symbol.
type AssetClass string

const (
	ClassEquity AssetClass = "equity"
	ClassCrypto AssetClass = "crypto"
)

// Action is the outcome of one decision tick.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// PricePoint is one observation of an asset price. Unique per (Asset, Timestamp);
// a later write with the same key replaces the earlier row.
type PricePoint struct {
	Asset     string
	Timestamp int64 // unix seconds
	Price     float64
}

// Signal is one signal engine output. Append-only log, no uniqueness.
// Value is in [0,1]; 0.5 is neutral. SMAShort/SMALong are nil when the
// corresponding average was undefined at the head of the series.
type Signal struct {
	Asset     string
	Timestamp int64
	Value     float64
	SMAShort  *float64
	SMALong   *float64
}

// TradeAction is one executed (simulated) trade. HOLD is never stored.
type TradeAction struct {
	Asset     string  `json:"asset"`
	Timestamp int64   `json:"timestamp"`
	Action    Action  `json:"action"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
}

// AssetSpec describes one configured asset.
type AssetSpec struct {
	Symbol       string
	Class        AssetClass
	InitialPrice float64
}

// AssetSummary is the per-asset view consumed by the dashboard.
// Trades are newest-first, at most five.
type AssetSummary struct {
	Asset     string        `json:"asset"`
	Price     float64       `json:"price"`
	Timestamp int64         `json:"timestamp"`
	Signal    float64       `json:"signal"`
	SMAShort  *float64      `json:"sma_short,omitempty"`
	SMALong   *float64      `json:"sma_long,omitempty"`
	Trades    []TradeAction `json:"trades"`
}
