package database

import (
	"context"
	"fmt"
	"time"

	"trust-reconciliation-go/internal/models"
	"trust-reconciliation-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 365
)

// AppendLogEntry inserts one reconciliation event. The log is append-only:
// there is no update or delete path against reconciliation_log.
func (s *Service) AppendLogEntry(ctx context.Context, entry models.ReconciliationLogEntry) (*models.ReconciliationLogEntry, error) {
	id := entry.Id
	if id == "" {
		id = uuid.New().String()
	}

	row := s.db.QueryRowContext(ctx, queryInsertLogEntry,
		id, dateKey(entry.ReconciliationDate),
		entry.TrustAccountBalance.String(), entry.EMoneyLiabilities.String(),
		entry.DiscrepancyAmount.String(), string(entry.Status),
		entry.ReconciledAt.UTC())

	inserted, err := scanLogEntry(row)
	if err != nil {
		return nil, fmt.Errorf("failed to append reconciliation log entry: %w", err)
	}

	zap.L().Info("Reconciliation log entry appended",
		zap.String("id", inserted.Id),
		zap.String("reconciliation_date", dateKey(inserted.ReconciliationDate)),
		zap.String("status", string(inserted.Status)))
	return inserted, nil
}

// GetHistory returns log entries in the date range, most-recent-first,
// bounded by the limit.
func (s *Service) GetHistory(ctx context.Context, filter store.HistoryFilter) ([]models.ReconciliationLogEntry, error) {
	from := "0001-01-01"
	if !filter.From.IsZero() {
		from = dateKey(filter.From)
	}
	to := "9999-12-31"
	if !filter.To.IsZero() {
		to = dateKey(filter.To)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, queryGetHistory, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get reconciliation history: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}()

	var entries []models.ReconciliationLogEntry
	for rows.Next() {
		entry, err := scanLogEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating log entries: %w", err)
	}

	return entries, nil
}

func scanLogEntry(row rowScanner) (*models.ReconciliationLogEntry, error) {
	var entry models.ReconciliationLogEntry
	var dateStr, balanceStr, liabilitiesStr, discrepancyStr string

	err := row.Scan(&entry.Id, &dateStr, &balanceStr, &liabilitiesStr,
		&discrepancyStr, &entry.Status, &entry.ReconciledAt, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}

	entry.ReconciliationDate, err = time.ParseInLocation(time.DateOnly, dateStr, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reconciliation date %q: %w", dateStr, err)
	}

	entry.TrustAccountBalance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trust account balance %q: %w", balanceStr, err)
	}

	entry.EMoneyLiabilities, err = decimal.NewFromString(liabilitiesStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse liabilities %q: %w", liabilitiesStr, err)
	}

	entry.DiscrepancyAmount, err = decimal.NewFromString(discrepancyStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse discrepancy %q: %w", discrepancyStr, err)
	}

	return &entry, nil
}
