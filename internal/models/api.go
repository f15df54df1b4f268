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

package models

import "github.com/shopspring/decimal"

// SnapshotDTO represents a trust-account snapshot in API responses
type SnapshotDTO struct {
	Date              string           `json:"date"`
	TrustBalance      decimal.Decimal  `json:"trust_balance"`
	EMoneyLiabilities *decimal.Decimal `json:"e_money_liabilities,omitempty"`
	Discrepancy       *decimal.Decimal `json:"discrepancy,omitempty"`
	Status            string           `json:"status"`
	LastReconciledAt  string           `json:"last_reconciled_at,omitempty"`
}

// StatusResponse is the current reconciliation state surfaced to operators.
// Current is null and NotYetReconciled is true until the first snapshot exists.
type StatusResponse struct {
	Current          *SnapshotDTO `json:"current"`
	NotYetReconciled bool         `json:"not_yet_reconciled,omitempty"`
}

// HistoryEntryDTO represents one reconciliation log entry in API responses
type HistoryEntryDTO struct {
	Date              string          `json:"date"`
	TrustBalance      decimal.Decimal `json:"trust_balance"`
	EMoneyLiabilities decimal.Decimal `json:"e_money_liabilities"`
	Discrepancy       decimal.Decimal `json:"discrepancy"`
	Status            string          `json:"status"`
	ReconciledAt      string          `json:"reconciled_at"`
}

// HistoryResponse wraps a bounded, most-recent-first history page
type HistoryResponse struct {
	Entries []HistoryEntryDTO `json:"entries"`
	Count   int               `json:"count"`
}

// RunResponse is the result of an operator-triggered reconciliation run
type RunResponse struct {
	Accepted  bool         `json:"accepted"`
	Outcome   string       `json:"outcome"`
	Reason    string       `json:"reason,omitempty"`
	Retryable bool         `json:"retryable,omitempty"`
	Snapshot  *SnapshotDTO `json:"snapshot,omitempty"`
}

// PostBalanceRequest posts or backfills a trust-account closing balance
type PostBalanceRequest struct {
	Date    string          `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}
