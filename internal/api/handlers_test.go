package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trust-reconciliation-go/internal/database"
	"trust-reconciliation-go/internal/models"
	"trust-reconciliation-go/internal/recon"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAPITest(t *testing.T) (*database.Service, http.Handler, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	service, err := database.NewServiceFromDB(db)
	require.NoError(t, err)

	runner := recon.NewRunner(recon.RunnerConfig{
		TrustReader:        service,
		LedgerReader:       service,
		Store:              service,
		Audit:              service,
		BalanceReadTimeout: 5 * time.Second,
	})

	handler := NewHandler(service, runner, service)
	router := NewRouter(handler, []string{"http://localhost:5173"})

	return service, router, func() { db.Close() }
}

func TestGetStatus_NotYetReconciled(t *testing.T) {
	_, router, cleanup := setupAPITest(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/api/reconciliation/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Current)
	assert.True(t, resp.NotYetReconciled, "an empty system must report not_yet_reconciled, not zeros")
}

func TestGetStatus_AfterRun(t *testing.T) {
	service, router, cleanup := setupAPITest(t)
	defer cleanup()

	ctx := context.Background()
	today := time.Now().UTC()
	_, err := service.PostClosingBalance(ctx, today, decimal.RequireFromString("50000.00"))
	require.NoError(t, err)
	require.NoError(t, service.InsertWallet(ctx, "w1", "Amina Diallo", "active", decimal.RequireFromString("49999.99")))

	runReq := httptest.NewRequest(http.MethodPost, "/api/reconciliation/run", nil)
	runRec := httptest.NewRecorder()
	router.ServeHTTP(runRec, runReq)
	require.Equal(t, http.StatusOK, runRec.Code)

	var runResp models.RunResponse
	require.NoError(t, json.Unmarshal(runRec.Body.Bytes(), &runResp))
	assert.True(t, runResp.Accepted)
	assert.Equal(t, "completed", runResp.Outcome)

	req := httptest.NewRequest(http.MethodGet, "/api/reconciliation/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Current)
	assert.Equal(t, "reconciled", resp.Current.Status)
	require.NotNil(t, resp.Current.Discrepancy)
	assert.True(t, resp.Current.Discrepancy.Equal(decimal.RequireFromString("0.01")),
		"expected discrepancy 0.01, got %s", resp.Current.Discrepancy.String())
	assert.NotEmpty(t, resp.Current.LastReconciledAt)
}

func TestTriggerRun_NoTrustBalance(t *testing.T) {
	_, router, cleanup := setupAPITest(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/api/reconciliation/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Accepted)
	assert.Equal(t, "aborted", resp.Outcome)
	assert.Contains(t, resp.Reason, "no trust account balance")
}

func TestGetHistory_Pagination(t *testing.T) {
	service, router, cleanup := setupAPITest(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := service.AppendLogEntry(ctx, models.ReconciliationLogEntry{
			ReconciliationDate:  base.AddDate(0, 0, i),
			TrustAccountBalance: decimal.RequireFromString("100.00"),
			EMoneyLiabilities:   decimal.RequireFromString("100.00"),
			DiscrepancyAmount:   decimal.Zero,
			Status:              models.StatusReconciled,
			ReconciledAt:        time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/reconciliation/history?from=2026-08-02&to=2026-08-04&limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "2026-08-04", resp.Entries[0].Date)
	assert.Equal(t, "2026-08-03", resp.Entries[1].Date)
}

func TestGetHistory_BadDate(t *testing.T) {
	_, router, cleanup := setupAPITest(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/api/reconciliation/history?from=08-02-2026", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostClosingBalance_Endpoint(t *testing.T) {
	_, router, cleanup := setupAPITest(t)
	defer cleanup()

	body, err := json.Marshal(models.PostBalanceRequest{
		Date:    time.Now().UTC().Format(time.DateOnly),
		Balance: decimal.RequireFromString("12345.67"),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/trust-account/balances", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SnapshotDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pending", resp.Status)
	assert.True(t, resp.TrustBalance.Equal(decimal.RequireFromString("12345.67")))
}

func TestPostClosingBalance_PastDateConflict(t *testing.T) {
	service, router, cleanup := setupAPITest(t)
	defer cleanup()

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	_, err := service.PostClosingBalance(context.Background(), yesterday, decimal.RequireFromString("100.00"))
	require.NoError(t, err)

	body, err := json.Marshal(models.PostBalanceRequest{
		Date:    yesterday.Format(time.DateOnly),
		Balance: decimal.RequireFromString("999.00"),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/trust-account/balances", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHealth(t *testing.T) {
	_, router, cleanup := setupAPITest(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
