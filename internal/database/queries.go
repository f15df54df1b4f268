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

package database

const (
	// Snapshot queries
	queryGetLatestSnapshot = `
		SELECT id, snapshot_date, closing_balance, e_money_liabilities,
		       discrepancy_amount, reconciliation_status, reconciled_at,
		       created_at, updated_at
		FROM trust_account_snapshot
		ORDER BY snapshot_date DESC
		LIMIT 1`

	queryGetSnapshotByDate = `
		SELECT id, snapshot_date, closing_balance, e_money_liabilities,
		       discrepancy_amount, reconciliation_status, reconciled_at,
		       created_at, updated_at
		FROM trust_account_snapshot
		WHERE snapshot_date = ?`

	queryInsertSnapshot = `
		INSERT INTO trust_account_snapshot (
			id, snapshot_date, closing_balance, e_money_liabilities,
			discrepancy_amount, reconciliation_status, reconciled_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryUpdateSnapshotReconciliation = `
		UPDATE trust_account_snapshot
		SET e_money_liabilities = ?, discrepancy_amount = ?,
		    reconciliation_status = ?, reconciled_at = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE snapshot_date = ?`

	queryUpdateSnapshotClosingBalance = `
		UPDATE trust_account_snapshot
		SET closing_balance = ?, e_money_liabilities = NULL,
		    discrepancy_amount = NULL, reconciliation_status = ?,
		    reconciled_at = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE snapshot_date = ?`

	// Reconciliation log queries
	queryInsertLogEntry = `
		INSERT INTO reconciliation_log (
			id, reconciliation_date, trust_account_balance, e_money_liabilities,
			discrepancy_amount, status, reconciled_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, reconciliation_date, trust_account_balance, e_money_liabilities,
		          discrepancy_amount, status, reconciled_at, created_at`

	queryGetHistory = `
		SELECT id, reconciliation_date, trust_account_balance, e_money_liabilities,
		       discrepancy_amount, status, reconciled_at, created_at
		FROM reconciliation_log
		WHERE reconciliation_date >= ? AND reconciliation_date <= ?
		ORDER BY reconciliation_date DESC, created_at DESC
		LIMIT ?`

	// Wallet queries
	queryGetActiveWalletBalances = `
		SELECT balance
		FROM wallets
		WHERE status = 'active'`

	queryInsertWallet = `
		INSERT INTO wallets (id, owner_name, status, balance) VALUES (?, ?, ?, ?)`

	// Audit queries
	queryInsertAuditEvent = `
		INSERT INTO audit_events (id, event_type, outcome, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`
)
