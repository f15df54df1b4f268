package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationStatus is the classification of a snapshot after comparing
// the trust-account balance against the e-money liability.
type ReconciliationStatus string

const (
	StatusPending     ReconciliationStatus = "pending"
	StatusReconciled  ReconciliationStatus = "reconciled"
	StatusDiscrepancy ReconciliationStatus = "discrepancy"
)

// TrustAccountSnapshot is one posted record of the regulated trust account
// for a calendar date. At most one snapshot exists per date; only the
// snapshot for the current date may be recomputed.
type TrustAccountSnapshot struct {
	Id                string               `db:"id"`
	Date              time.Time            `db:"snapshot_date"`
	ClosingBalance    decimal.Decimal      `db:"closing_balance"`
	EMoneyLiabilities *decimal.Decimal     `db:"e_money_liabilities"`
	DiscrepancyAmount *decimal.Decimal     `db:"discrepancy_amount"`
	Status            ReconciliationStatus `db:"reconciliation_status"`
	ReconciledAt      *time.Time           `db:"reconciled_at"`
	CreatedAt         time.Time            `db:"created_at"`
	UpdatedAt         time.Time            `db:"updated_at"`
}

// ReconciliationLogEntry is one historical reconciliation event. Entries are
// immutable once written; multiple entries may exist for the same date.
type ReconciliationLogEntry struct {
	Id                  string               `db:"id"`
	ReconciliationDate  time.Time            `db:"reconciliation_date"`
	TrustAccountBalance decimal.Decimal      `db:"trust_account_balance"`
	EMoneyLiabilities   decimal.Decimal      `db:"e_money_liabilities"`
	DiscrepancyAmount   decimal.Decimal      `db:"discrepancy_amount"`
	Status              ReconciliationStatus `db:"status"`
	ReconciledAt        time.Time            `db:"reconciled_at"`
	CreatedAt           time.Time            `db:"created_at"`
}

// WalletAccount is the mirrored wallet row this module reads liability from.
// Only active wallets count toward the e-money liability.
type WalletAccount struct {
	Id        string          `db:"id"`
	OwnerName string          `db:"owner_name"`
	Status    string          `db:"status"`
	Balance   decimal.Decimal `db:"balance"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// AuditEvent is a structured event recorded for every reconciliation run.
type AuditEvent struct {
	Id        string            `db:"id"`
	Type      string            `db:"event_type"`
	Outcome   string            `db:"outcome"`
	Payload   map[string]string `db:"payload"`
	Timestamp time.Time         `db:"created_at"`
}
