package api

import (
	"html/template"
	"net/http"
	"time"

	models "TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
	"TradeSim/internal/usecase"
	xhttp "TradeSim/pkg/http"
	xlogger "TradeSim/pkg/logger"
	"TradeSim/pkg/util"

	"github.com/labstack/echo/v4"
)

// DashboardEchoHandler serves the HTML dashboard and the JSON API on the same
// Echo instance.
type DashboardEchoHandler struct {
	logger  *xlogger.Logger
	summary *usecase.SummaryService
	store   domrepo.MarketStore
	tpl     *template.Template
}

func NewDashboardEchoHandler(logger *xlogger.Logger, summary *usecase.SummaryService, store domrepo.MarketStore) *DashboardEchoHandler {
	return &DashboardEchoHandler{
		logger:  logger,
		summary: summary,
		store:   store,
		tpl:     template.Must(template.New("dashboard").Funcs(dashboardFuncs).Parse(dashboardTemplate)),
	}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Dashboard)
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/summary", h.Summary)
	g.GET("/prices", h.Prices)
	g.GET("/signals/latest", h.LatestSignal)
	g.GET("/trades", h.Trades)
}

// Dashboard renders the full HTML page server-side, one card per asset.
func (h *DashboardEchoHandler) Dashboard(c echo.Context) error {
	summaries, err := h.summary.Summary(c.Request().Context())
	if err != nil {
		h.logger.Error("dashboard summary error", xlogger.Error(err))
		return c.HTML(http.StatusInternalServerError,
			"<h1>Database Error: Could not load summary data.</h1>")
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return h.tpl.Execute(c.Response(), map[string]interface{}{
		"Summaries": summaries,
	})
}

func (h *DashboardEchoHandler) Summary(c echo.Context) error {
	summaries, err := h.summary.Summary(c.Request().Context())
	if err != nil {
		h.logger.Error("summary usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, summaries)
}

func (h *DashboardEchoHandler) Prices(c echo.Context) error {
	req := &models.PricesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	from := util.ParseTimeDefault(req.From, time.Unix(0, 0))
	to := util.ParseTimeDefault(req.To, time.Now())

	pts, err := h.store.PricesInRange(c.Request().Context(), req.Symbol, from, to, req.Limit)
	if err != nil {
		h.logger.Error("prices query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	rows := make([]echo.Map, 0, len(pts))
	for _, p := range pts {
		rows = append(rows, echo.Map{"asset": p.Asset, "timestamp": p.Timestamp, "price": p.Price})
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *DashboardEchoHandler) LatestSignal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig, err := h.store.LatestSignal(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("signal query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if sig == nil {
		return xhttp.NotFoundResponse(c, "no signal for "+req.Symbol)
	}
	return xhttp.SuccessResponse(c, echo.Map{
		"asset":     sig.Asset,
		"timestamp": sig.Timestamp,
		"signal":    sig.Value,
		"sma_short": sig.SMAShort,
		"sma_long":  sig.SMALong,
	})
}

func (h *DashboardEchoHandler) Trades(c echo.Context) error {
	req := &models.TradesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	trades, err := h.store.RecentTrades(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		h.logger.Error("trades query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, trades, int64(len(trades)))
}

func (h *DashboardEchoHandler) Health(c echo.Context) error {
	if err := h.store.Health(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "down", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

var dashboardFuncs = template.FuncMap{
	"formatTS": util.FormatUnix,
	"signalClass": func(v float64) string {
		switch {
		case v >= 0.75:
			return "signal-buy"
		case v <= 0.25:
			return "signal-sell"
		default:
			return "signal-hold"
		}
	},
	"actionClass": func(a models.Action) string {
		switch a {
		case models.ActionBuy:
			return "trade-buy"
		case models.ActionSell:
			return "trade-sell"
		default:
			return "text-muted"
		}
	},
	"sma": func(v *float64) string {
		if v == nil {
			return "N/A"
		}
		return util.FormatFloat(*v, 2)
	},
	"money": func(v float64) string { return util.FormatFloat(v, 4) },
}

const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Autonomous Trading Dashboard</title>
<style>
body { font-family: sans-serif; background-color: #f4f7f9; margin: 0; padding: 2rem; }
.grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(320px, 1fr)); gap: 1.5rem; }
.card { background: white; border-radius: 12px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); padding: 1.25rem; }
.badge { padding: 0.2rem 0.8rem; border-radius: 999px; font-size: 0.85rem; float: right; }
.signal-buy { background-color: #10b981; color: white; }
.signal-sell { background-color: #ef4444; color: white; }
.signal-hold { background-color: #fbbf24; color: #333; }
.price { font-size: 1.5rem; font-weight: bold; }
.ts { font-size: 0.75rem; color: #6b7280; }
.smas { background: #f9fafb; border-radius: 8px; padding: 0.75rem; margin: 0.75rem 0; }
.trades { list-style: none; padding: 0; margin: 0; }
.trades li { display: flex; justify-content: space-between; padding: 0.25rem 0; border-bottom: 1px solid #eee; font-size: 0.9rem; }
.trade-buy { color: #10b981; font-weight: bold; }
.trade-sell { color: #ef4444; font-weight: bold; }
.text-muted { color: #6b7280; }
footer { margin-top: 2rem; text-align: center; color: #6b7280; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>Autonomous Trading Dashboard</h1>
<div class="grid">
{{range .Summaries}}
<div class="card">
  <h2>{{.Asset}} <span class="badge {{signalClass .Signal}}">Signal: {{.Signal}}</span></h2>
  <p>Current Price: <span class="price">${{money .Price}}</span></p>
  <p class="ts">Last Updated: {{formatTS .Timestamp}}</p>
  <div class="smas">
    <div>SMA 20: <strong>${{sma .SMAShort}}</strong></div>
    <div>SMA 50: <strong>${{sma .SMALong}}</strong></div>
  </div>
  <h3>Trade History (Latest)</h3>
  <ul class="trades">
    {{range .Trades}}
    <li>
      <span class="{{actionClass .Action}}">{{.Action}}</span>
      <span>{{.Quantity}} @ ${{money .Price}}</span>
      <span class="ts">{{formatTS .Timestamp}}</span>
    </li>
    {{else}}
    <li class="text-muted">No recent trades recorded.</li>
    {{end}}
  </ul>
</div>
{{end}}
</div>
<footer>Trading System Status: Operational</footer>
</body>
</html>
`
