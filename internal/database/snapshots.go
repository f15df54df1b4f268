package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"trust-reconciliation-go/internal/models"
	"trust-reconciliation-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// dateKey normalizes a timestamp to the UTC calendar date the snapshot table
// is keyed by.
func dateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func todayKey() string {
	return dateKey(time.Now())
}

// GetLatest returns the most recent snapshot ordered by date descending.
func (s *Service) GetLatest(ctx context.Context) (*models.TrustAccountSnapshot, error) {
	row := s.db.QueryRowContext(ctx, queryGetLatestSnapshot)
	snapshot, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: latest snapshot: %v", store.ErrDataUnavailable, err)
	}
	return snapshot, nil
}

// LatestTrustBalance satisfies store.TrustBalanceReader.
func (s *Service) LatestTrustBalance(ctx context.Context) (*models.TrustAccountSnapshot, error) {
	return s.GetLatest(ctx)
}

// GetSnapshotByDate returns the snapshot for a specific calendar date.
func (s *Service) GetSnapshotByDate(ctx context.Context, date time.Time) (*models.TrustAccountSnapshot, error) {
	row := s.db.QueryRowContext(ctx, queryGetSnapshotByDate, dateKey(date))
	snapshot, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot for %s: %w", dateKey(date), err)
	}
	return snapshot, nil
}

// UpsertSnapshot writes the computed reconciliation fields for a date. The
// write is idempotent per date: recomputation overwrites liabilities,
// discrepancy and status, last write wins. Rows for dates older than today
// are frozen and any attempt to touch them fails with ErrHistoryImmutable.
func (s *Service) UpsertSnapshot(ctx context.Context, params store.UpsertSnapshotParams) (*models.TrustAccountSnapshot, error) {
	key := dateKey(params.Date)
	today := todayKey()
	if key < today {
		zap.L().Error("Rejected attempt to rewrite settled reconciliation history",
			zap.String("snapshot_date", key),
			zap.String("today", today))
		return nil, fmt.Errorf("%w: snapshot date %s", store.ErrHistoryImmutable, key)
	}
	// Only today's row may be recomputed; a future date is a caller bug, not
	// frozen history.
	if key > today {
		return nil, fmt.Errorf("snapshot date %s is in the future", key)
	}

	// Single transaction per date: the unique constraint on snapshot_date plus
	// the write lock taken here serialize concurrent runs for the same date.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingId string
	err = tx.QueryRowContext(ctx, `SELECT id FROM trust_account_snapshot WHERE snapshot_date = ?`, key).Scan(&existingId)
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx, queryInsertSnapshot,
			uuid.New().String(), key, params.ClosingBalance.String(),
			params.EMoneyLiabilities.String(), params.Discrepancy.String(),
			string(params.Status), params.ReconciledAt.UTC())
		if err != nil {
			return nil, fmt.Errorf("failed to insert snapshot: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to check existing snapshot: %w", err)
	default:
		// Existing row keeps its posted closing balance; only the computed
		// reconciliation fields are overwritten.
		_, err = tx.ExecContext(ctx, queryUpdateSnapshotReconciliation,
			params.EMoneyLiabilities.String(), params.Discrepancy.String(),
			string(params.Status), params.ReconciledAt.UTC(), key)
		if err != nil {
			return nil, fmt.Errorf("failed to update snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot upsert: %w", err)
	}

	snapshot, err := s.GetSnapshotByDate(ctx, params.Date)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Snapshot upserted",
		zap.String("snapshot_date", key),
		zap.String("status", string(snapshot.Status)),
		zap.String("discrepancy", params.Discrepancy.String()))
	return snapshot, nil
}

// PostClosingBalance posts (or backfills) the trust-account closing balance
// for a date. A missing historical row may be backfilled, but an existing row
// for a past date is frozen. Trust accounts must not go negative.
func (s *Service) PostClosingBalance(ctx context.Context, date time.Time, balance decimal.Decimal) (*models.TrustAccountSnapshot, error) {
	if balance.IsNegative() {
		return nil, fmt.Errorf("trust account closing balance cannot be negative, got %s", balance.String())
	}

	key := dateKey(date)
	existing, err := s.GetSnapshotByDate(ctx, date)
	if err != nil && err != store.ErrNotFound {
		return nil, err
	}

	if existing != nil {
		if key < todayKey() {
			return nil, fmt.Errorf("%w: snapshot date %s already posted", store.ErrHistoryImmutable, key)
		}
		// A new balance invalidates any reconciliation computed against the
		// old one: the row returns to pending until the next run recomputes
		// the discrepancy, otherwise a stale status could claim the new
		// balance reconciles.
		if _, err := s.db.ExecContext(ctx, queryUpdateSnapshotClosingBalance,
			balance.String(), string(models.StatusPending), key); err != nil {
			return nil, fmt.Errorf("failed to update closing balance: %w", err)
		}
	} else {
		_, err = s.db.ExecContext(ctx, queryInsertSnapshot,
			uuid.New().String(), key, balance.String(), nil, nil,
			string(models.StatusPending), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to post closing balance: %w", err)
		}
	}

	zap.L().Info("Trust account closing balance posted",
		zap.String("snapshot_date", key),
		zap.String("closing_balance", balance.String()))
	return s.GetSnapshotByDate(ctx, date)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*models.TrustAccountSnapshot, error) {
	var snapshot models.TrustAccountSnapshot
	var dateStr, closingStr string
	var liabilitiesStr, discrepancyStr sql.NullString
	var reconciledAt sql.NullTime

	err := row.Scan(&snapshot.Id, &dateStr, &closingStr, &liabilitiesStr,
		&discrepancyStr, &snapshot.Status, &reconciledAt,
		&snapshot.CreatedAt, &snapshot.UpdatedAt)
	if err != nil {
		return nil, err
	}

	snapshot.Date, err = time.ParseInLocation(time.DateOnly, dateStr, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot date %q: %w", dateStr, err)
	}

	snapshot.ClosingBalance, err = decimal.NewFromString(closingStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse closing balance %q: %w", closingStr, err)
	}

	if liabilitiesStr.Valid {
		liabilities, err := decimal.NewFromString(liabilitiesStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse liabilities %q: %w", liabilitiesStr.String, err)
		}
		snapshot.EMoneyLiabilities = &liabilities
	}

	if discrepancyStr.Valid {
		discrepancy, err := decimal.NewFromString(discrepancyStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse discrepancy %q: %w", discrepancyStr.String, err)
		}
		snapshot.DiscrepancyAmount = &discrepancy
	}

	if reconciledAt.Valid {
		t := reconciledAt.Time
		snapshot.ReconciledAt = &t
	}

	return &snapshot, nil
}
