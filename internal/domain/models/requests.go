package models

// PricesRequest filters the price history endpoint. From/To accept RFC3339 or
// unix seconds; empty means unbounded.
type PricesRequest struct {
	Symbol string `query:"symbol" validate:"required"`
	From   string `query:"from"`
	To     string `query:"to"`
	Limit  int    `query:"limit" default:"500" validate:"gte=1,lte=5000"`
}

// SignalRequest selects the latest signal for one symbol.
type SignalRequest struct {
	Symbol string `query:"symbol" validate:"required"`
}

// TradesRequest selects recent trade actions for one symbol.
type TradesRequest struct {
	Symbol string `query:"symbol" validate:"required"`
	Limit  int    `query:"limit" default:"20" validate:"gte=1,lte=500"`
}
