package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
	"github.com/nahidfarms/poultrypro/internal/server/handlers"
	"github.com/nahidfarms/poultrypro/internal/server/router"
	"github.com/nahidfarms/poultrypro/internal/service/insights"
	"github.com/nahidfarms/poultrypro/internal/service/ledger"
	"github.com/nahidfarms/poultrypro/internal/service/report"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	ledgerSvc := ledger.NewService(nil, ledger.Options{}, nil)
	insightsSvc := insights.NewService(nil, nil)
	reportSvc := report.NewService(nil, nil)
	handler := handlers.NewFarmHandler(ledgerSvc, insightsSvc, reportSvc, nil)
	return router.New(handler, nil)
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestHealthz(t *testing.T) {
	engine := newTestEngine(t)
	rec := doJSON(t, engine, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestFlockLifecycleOverHTTP(t *testing.T) {
	engine := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/api/flocks", gin.H{
		"batch_name":    "Batch A",
		"breed":         "Cobb 500",
		"start_date":    "2026-01-10",
		"initial_count": 500,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var flock models.Flock
	decodeBody(t, rec, &flock)
	require.NotEmpty(t, flock.ID)
	require.Equal(t, 500, flock.CurrentCount)

	rec = doJSON(t, engine, http.MethodPost, "/api/flocks/"+flock.ID+"/mortality", gin.H{
		"date": "2026-01-12", "count": 10, "reason": "disease",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		TotalBirds     int     `json:"total_birds"`
		TotalMortality int     `json:"total_mortality"`
		MortalityRate  float64 `json:"mortality_rate"`
	}
	decodeBody(t, rec, &stats)
	require.Equal(t, 490, stats.TotalBirds)
	require.Equal(t, 10, stats.TotalMortality)
	require.InDelta(t, 2.0, stats.MortalityRate, 1e-9)

	rec = doJSON(t, engine, http.MethodDelete, "/api/flocks/"+flock.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, engine, http.MethodDelete, "/api/flocks/"+flock.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Undo brings the flock back.
	rec = doJSON(t, engine, http.MethodPost, "/api/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state models.FarmState
	decodeBody(t, rec, &state)
	require.Len(t, state.Flocks, 1)

	// Nothing left to undo.
	rec = doJSON(t, engine, http.MethodPost, "/api/undo", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAddTransactionValidation(t *testing.T) {
	engine := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/api/transactions", gin.H{
		"date": "2026-02-01", "type": "REFUND", "category": "SALES", "amount": "100",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, engine, http.MethodPost, "/api/transactions", gin.H{
		"date": "2026-02-01", "type": "INCOME", "category": "SALES", "amount": "100.50",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var tx models.Transaction
	decodeBody(t, rec, &tx)
	require.Equal(t, models.TransactionIncome, tx.Type)

	rec = doJSON(t, engine, http.MethodDelete, "/api/transactions/"+tx.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Unknown id still answers 204.
	rec = doJSON(t, engine, http.MethodDelete, "/api/transactions/never-existed", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestInventoryCategoryValidation(t *testing.T) {
	engine := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/api/inventory", gin.H{
		"name": "Corn", "category": "GRAIN", "current_quantity": 5, "unit": "bag",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, engine, http.MethodPost, "/api/inventory", gin.H{
		"name": "Grower feed", "category": "FEED", "current_quantity": 10, "unit": "bag", "min_threshold": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestRecordFeedAdjustsInventoryOverHTTP(t *testing.T) {
	engine := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/api/flocks", gin.H{
		"batch_name": "Batch B", "start_date": "2026-01-10", "initial_count": 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var flock models.Flock
	decodeBody(t, rec, &flock)

	rec = doJSON(t, engine, http.MethodPost, "/api/inventory", gin.H{
		"name": "Grower feed", "category": "FEED", "current_quantity": 10, "unit": "bag", "min_threshold": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, engine, http.MethodPost, "/api/flocks/"+flock.ID+"/feed", gin.H{
		"date": "2026-01-15", "amount": 2, "unit": "bag",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state models.FarmState
	decodeBody(t, rec, &state)
	require.Len(t, state.Inventory, 1)
	require.Equal(t, 8.0, state.Inventory[0].CurrentQuantity)
}

func TestInsightsEndpoints(t *testing.T) {
	engine := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodGet, "/api/insights", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// No AI client configured, so a refresh serves the fallback payload.
	rec = doJSON(t, engine, http.MethodPost, "/api/insights", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Insights
	decodeBody(t, rec, &got)
	require.Equal(t, models.FallbackInsights(), got)

	rec = doJSON(t, engine, http.MethodGet, "/api/insights", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBatchReportEndpoint(t *testing.T) {
	engine := newTestEngine(t)

	rec := doJSON(t, engine, http.MethodPost, "/api/flocks", gin.H{
		"batch_name": "Batch C", "start_date": "2026-01-10", "initial_count": 200,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var flock models.Flock
	decodeBody(t, rec, &flock)

	rec = doJSON(t, engine, http.MethodPost, "/api/transactions", gin.H{
		"date": "2026-01-20", "type": "EXPENSE", "category": "FEED", "amount": "750", "flock_id": flock.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/flocks/"+flock.ID+"/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rep models.BatchReport
	decodeBody(t, rec, &rep)
	require.Equal(t, "Batch C", rep.BatchName)
	require.Equal(t, "750", rep.FeedCost.String())
	require.Equal(t, "-750", rep.NetProfit.String())

	rec = doJSON(t, engine, http.MethodGet, "/api/flocks/"+flock.ID+"/report?format=text", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Batch C")

	rec = doJSON(t, engine, http.MethodGet, "/api/flocks/unknown/report", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
