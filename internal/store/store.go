package store

import (
	"context"
	"errors"
	"time"

	"trust-reconciliation-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	// ErrNotFound means no trust-account snapshot has been posted yet. It is
	// a legitimate state, distinct from a transient data-access failure.
	ErrNotFound = errors.New("no trust account snapshot found")

	// ErrDataUnavailable means a balance source could not be reached. Callers
	// must never substitute a default value for the missing figure.
	ErrDataUnavailable = errors.New("balance source unavailable")

	// ErrHistoryImmutable means an attempt was made to rewrite a snapshot for
	// a date older than today. Settled history is never auto-corrected.
	ErrHistoryImmutable = errors.New("settled reconciliation history is immutable")

	// ErrRunInProgress means another reconciliation run holds the run lock.
	ErrRunInProgress = errors.New("reconciliation run already in progress")
)

// UpsertSnapshotParams contains the computed reconciliation fields written to
// the snapshot row for a date. ClosingBalance is only used when the row does
// not exist yet; an existing row keeps its posted closing balance.
type UpsertSnapshotParams struct {
	Date              time.Time
	ClosingBalance    decimal.Decimal
	EMoneyLiabilities decimal.Decimal
	Discrepancy       decimal.Decimal
	Status            models.ReconciliationStatus
	ReconciledAt      time.Time
}

// HistoryFilter bounds a reconciliation-log query. Zero From/To mean
// unbounded; Limit is clamped by the implementation.
type HistoryFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}

// LedgerBalanceReader reads the live e-money liability: the sum of balances
// over all active wallets at the instant of the call.
type LedgerBalanceReader interface {
	CurrentLiability(ctx context.Context) (decimal.Decimal, error)
}

// TrustBalanceReader reads the most recently posted trust-account snapshot.
// Returns ErrNotFound when no snapshot has been posted.
type TrustBalanceReader interface {
	LatestTrustBalance(ctx context.Context) (*models.TrustAccountSnapshot, error)
}

// ReconciliationStore owns persistence of snapshots and the append-only
// reconciliation log. No other code writes to either table.
type ReconciliationStore interface {
	UpsertSnapshot(ctx context.Context, params UpsertSnapshotParams) (*models.TrustAccountSnapshot, error)
	AppendLogEntry(ctx context.Context, entry models.ReconciliationLogEntry) (*models.ReconciliationLogEntry, error)
	GetLatest(ctx context.Context) (*models.TrustAccountSnapshot, error)
	GetSnapshotByDate(ctx context.Context, date time.Time) (*models.TrustAccountSnapshot, error)
	GetHistory(ctx context.Context, filter HistoryFilter) ([]models.ReconciliationLogEntry, error)
	PostClosingBalance(ctx context.Context, date time.Time, balance decimal.Decimal) (*models.TrustAccountSnapshot, error)
}

// AuditSink records structured audit events. Fire-and-forget from the
// runner's perspective; failures surface as logged warnings only.
type AuditSink interface {
	Record(ctx context.Context, event models.AuditEvent) error
}
