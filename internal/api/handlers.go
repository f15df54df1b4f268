/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"trust-reconciliation-go/internal/models"
	"trust-reconciliation-go/internal/recon"
	"trust-reconciliation-go/internal/store"

	"go.uber.org/zap"
)

// Pinger verifies backing-store connectivity for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  store.ReconciliationStore
	Runner *recon.Runner
	Pinger Pinger
}

func NewHandler(st store.ReconciliationStore, runner *recon.Runner, pinger Pinger) *Handler {
	return &Handler{Store: st, Runner: runner, Pinger: pinger}
}

// GetStatus returns the current snapshot, or an explicit not-yet-reconciled
// state when no snapshot exists. Zeros are never fabricated.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.Store.GetLatest(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, models.StatusResponse{Current: nil, NotYetReconciled: true})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load reconciliation status", err)
		return
	}

	writeJSON(w, http.StatusOK, models.StatusResponse{Current: snapshotDTO(snapshot)})
}

// GetHistory returns reconciliation log entries, most-recent-first, filtered
// by an optional date range and bounded by limit.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	filter := store.HistoryFilter{}

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.ParseInLocation(time.DateOnly, from, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'from' date, expected YYYY-MM-DD", err)
			return
		}
		filter.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.ParseInLocation(time.DateOnly, to, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'to' date, expected YYYY-MM-DD", err)
			return
		}
		filter.To = t
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid 'limit'", err)
			return
		}
		filter.Limit = n
	}

	entries, err := h.Store.GetHistory(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load reconciliation history", err)
		return
	}

	dtos := make([]models.HistoryEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = models.HistoryEntryDTO{
			Date:              e.ReconciliationDate.Format(time.DateOnly),
			TrustBalance:      e.TrustAccountBalance,
			EMoneyLiabilities: e.EMoneyLiabilities,
			Discrepancy:       e.DiscrepancyAmount,
			Status:            string(e.Status),
			ReconciledAt:      e.ReconciledAt.UTC().Format(time.RFC3339),
		}
	}

	writeJSON(w, http.StatusOK, models.HistoryResponse{Entries: dtos, Count: len(dtos)})
}

// TriggerRun starts an operator-initiated reconciliation run for today.
// Returns 409 when a run is already in progress.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.Runner.RunDaily(r.Context(), time.Now().UTC())
	if errors.Is(err, store.ErrRunInProgress) {
		writeError(w, http.StatusConflict, "a reconciliation run is already in progress", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start reconciliation run", err)
		return
	}

	resp := models.RunResponse{
		Accepted:  outcome.Status == recon.RunCompleted || outcome.Status == recon.RunPartialSuccess,
		Outcome:   string(outcome.Status),
		Reason:    outcome.Reason,
		Retryable: outcome.Retryable,
	}
	if outcome.Snapshot != nil {
		resp.Snapshot = snapshotDTO(outcome.Snapshot)
	}

	writeJSON(w, http.StatusOK, resp)
}

// PostClosingBalance posts or backfills a trust-account closing balance.
func (h *Handler) PostClosingBalance(w http.ResponseWriter, r *http.Request) {
	var req models.PostBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	date, err := time.ParseInLocation(time.DateOnly, req.Date, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'date', expected YYYY-MM-DD", err)
		return
	}

	snapshot, err := h.Store.PostClosingBalance(r.Context(), date, req.Balance)
	if errors.Is(err, store.ErrHistoryImmutable) {
		writeError(w, http.StatusConflict, "settled history cannot be rewritten", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to post closing balance", err)
		return
	}

	writeJSON(w, http.StatusOK, snapshotDTO(snapshot))
}

// Health pings the database.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.Pinger != nil {
		if err := h.Pinger.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func snapshotDTO(s *models.TrustAccountSnapshot) *models.SnapshotDTO {
	dto := &models.SnapshotDTO{
		Date:         s.Date.Format(time.DateOnly),
		TrustBalance: s.ClosingBalance,
		Status:       string(s.Status),
	}
	if s.EMoneyLiabilities != nil {
		dto.EMoneyLiabilities = s.EMoneyLiabilities
	}
	if s.DiscrepancyAmount != nil {
		dto.Discrepancy = s.DiscrepancyAmount
	}
	if s.ReconciledAt != nil {
		dto.LastReconciledAt = s.ReconciledAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		zap.L().Error(message, zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": message})
}
