package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	models "TradeSim/internal/domain/models"
	"TradeSim/internal/repository"
	"TradeSim/internal/usecase"
	applogger "TradeSim/pkg/logger"

	"github.com/labstack/echo/v4"
)

func testHandler(t *testing.T) (*echo.Echo, *repository.MemoryMarketStore) {
	t.Helper()
	store := repository.NewMemoryMarketStore()
	assets := []models.AssetSpec{
		{Symbol: "AAPL", Class: models.ClassEquity},
		{Symbol: "BTC", Class: models.ClassCrypto},
	}
	summary := usecase.NewSummaryService(store, nil, 0, applogger.Nop(), assets)
	h := NewDashboardEchoHandler(applogger.Nop(), summary, store)

	e := echo.New()
	h.RegisterRoutes(e)
	return e, store
}

func seed(t *testing.T, store *repository.MemoryMarketStore) {
	t.Helper()
	ctx := context.Background()
	for i, p := range []float64{169, 170, 171.5} {
		err := store.UpsertPrice(ctx, &models.PricePoint{
			Asset: "AAPL", Timestamp: int64(1_700_000_000 + i), Price: p,
		})
		if err != nil {
			t.Fatalf("seed price: %v", err)
		}
	}
	short, long := 170.1, 169.9
	_ = store.InsertSignal(ctx, &models.Signal{
		Asset: "AAPL", Timestamp: 1_700_000_003, Value: 0.81, SMAShort: &short, SMALong: &long,
	})
	_ = store.InsertTrade(ctx, &models.TradeAction{
		Asset: "AAPL", Timestamp: 1_700_000_004, Action: models.ActionBuy, Quantity: 10, Price: 171.5,
	})
}

func TestDashboardRendersAssets(t *testing.T) {
	e, store := testHandler(t)
	seed(t, store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"AAPL", "BTC", "171.5000", "BUY", "Trading System Status"} {
		if !strings.Contains(body, want) {
			t.Fatalf("dashboard missing %q", want)
		}
	}
	// asset without trades falls back to the placeholder row
	if !strings.Contains(body, "No recent trades recorded.") {
		t.Fatalf("expected empty-trade placeholder")
	}
}

func TestSummaryEndpoint(t *testing.T) {
	e, store := testHandler(t)
	seed(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp struct {
		Data []models.AssetSummary `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(resp.Data))
	}
	if resp.Data[0].Asset != "AAPL" || resp.Data[0].Signal != 0.81 {
		t.Fatalf("unexpected first summary %+v", resp.Data[0])
	}
}

func TestPricesRequiresSymbol(t *testing.T) {
	e, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/prices", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("expected embedded 400 status, got %d", resp.Status)
	}
}

func TestPricesRangeQuery(t *testing.T) {
	e, store := testHandler(t)
	seed(t, store)

	req := httptest.NewRequest(http.MethodGet,
		"/api/prices?symbol=AAPL&from=1700000001&to=1700000002", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp struct {
		Data struct {
			Rows  []map[string]interface{} `json:"rows"`
			Total int64                    `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Total != 2 {
		t.Fatalf("expected 2 rows in range, got %d", resp.Data.Total)
	}
}

func TestLatestSignalNotFound(t *testing.T) {
	e, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/signals/latest?symbol=AAPL", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusNotFound {
		t.Fatalf("expected embedded 404 status, got %d", resp.Status)
	}
}

func TestTradesEndpoint(t *testing.T) {
	e, store := testHandler(t)
	seed(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/trades?symbol=AAPL", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp struct {
		Data struct {
			Rows []models.TradeAction `json:"rows"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Rows) != 1 || resp.Data.Rows[0].Action != models.ActionBuy {
		t.Fatalf("unexpected trades %+v", resp.Data.Rows)
	}
}

func TestHealthz(t *testing.T) {
	e, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health body %s", rec.Body.String())
	}
}
