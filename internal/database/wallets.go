package database

import (
	"context"
	"fmt"

	"trust-reconciliation-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CurrentLiability computes the e-money liability: the sum of balances over
// all active wallets at the instant of the call. Summation happens in Go on
// decimal values, not in SQL, so exactness does not depend on SQLite's
// numeric affinity. No active wallets means zero liability, not an error.
func (s *Service) CurrentLiability(ctx context.Context) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, queryGetActiveWalletBalances)
	if err != nil {
		zap.L().Error("Failed to read active wallet balances", zap.Error(err))
		return decimal.Zero, fmt.Errorf("%w: wallet balances: %v", store.ErrDataUnavailable, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}()

	total := decimal.Zero
	count := 0
	for rows.Next() {
		var balanceStr string
		if err := rows.Scan(&balanceStr); err != nil {
			return decimal.Zero, fmt.Errorf("%w: scan wallet balance: %v", store.ErrDataUnavailable, err)
		}

		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse wallet balance %q: %w", balanceStr, err)
		}

		total = total.Add(balance)
		count++
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during wallet balance iteration", zap.Error(err))
		return decimal.Zero, fmt.Errorf("%w: iterating wallet balances: %v", store.ErrDataUnavailable, err)
	}

	zap.L().Debug("Computed e-money liability",
		zap.Int("active_wallets", count),
		zap.String("liability", total.String()))
	return total, nil
}

// InsertWallet adds a wallet row to the mirror. Exposed for seeding and tests;
// production wallet writes happen upstream of this module.
func (s *Service) InsertWallet(ctx context.Context, id, ownerName, status string, balance decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx, queryInsertWallet, id, ownerName, status, balance.String())
	if err != nil {
		return fmt.Errorf("failed to insert wallet: %w", err)
	}
	return nil
}
