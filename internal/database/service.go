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

import (
	"context"
	"database/sql"
	"fmt"

	"trust-reconciliation-go/internal/models"
	"trust-reconciliation-go/internal/store"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time checks: *Service must satisfy every store contract it backs.
var (
	_ store.ReconciliationStore = (*Service)(nil)
	_ store.LedgerBalanceReader = (*Service)(nil)
	_ store.TrustBalanceReader  = (*Service)(nil)
	_ store.AuditSink           = (*Service)(nil)
)

type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(cfg.CreateDemoWallets); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

// NewServiceFromDB wraps an already-open connection. Used by tests with an
// in-memory database.
func NewServiceFromDB(db *sql.DB) (*Service, error) {
	service := &Service{db: db}
	if err := service.initSchema(false); err != nil {
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

// Ping verifies database connectivity for health checks.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Service) initSchema(createDemoWallets bool) error {
	schema := `
	-- Trust account snapshots: one row per calendar date. Decimal amounts are
	-- stored as TEXT and parsed with shopspring/decimal to keep exactness.
	CREATE TABLE IF NOT EXISTS trust_account_snapshot (
		id TEXT PRIMARY KEY,
		snapshot_date TEXT NOT NULL UNIQUE,
		closing_balance TEXT NOT NULL,
		e_money_liabilities TEXT,
		discrepancy_amount TEXT,
		reconciliation_status TEXT NOT NULL DEFAULT 'pending',
		reconciled_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_snapshot_date ON trust_account_snapshot(snapshot_date);
	CREATE INDEX IF NOT EXISTS idx_snapshot_status ON trust_account_snapshot(reconciliation_status);

	-- Reconciliation log: append-only audit trail. No UPDATE or DELETE path
	-- against this table exists anywhere in the codebase.
	CREATE TABLE IF NOT EXISTS reconciliation_log (
		id TEXT PRIMARY KEY,
		reconciliation_date TEXT NOT NULL,
		trust_account_balance TEXT NOT NULL,
		e_money_liabilities TEXT NOT NULL,
		discrepancy_amount TEXT NOT NULL,
		status TEXT NOT NULL,
		reconciled_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_recon_log_date ON reconciliation_log(reconciliation_date);
	CREATE INDEX IF NOT EXISTS idx_recon_log_created_at ON reconciliation_log(created_at);

	-- Wallet mirror: liability source. This module only ever reads it.
	CREATE TABLE IF NOT EXISTS wallets (
		id TEXT PRIMARY KEY,
		owner_name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		balance TEXT NOT NULL DEFAULT '0',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_wallets_status ON wallets(status);

	-- Audit events, append-only.
	CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		outcome TEXT NOT NULL,
		payload TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_audit_events_type ON audit_events(event_type);
	CREATE INDEX IF NOT EXISTS idx_audit_events_created_at ON audit_events(created_at);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return err
	}

	// Seed a few wallets for local development if configured to do so
	if createDemoWallets {
		wallets := []struct {
			owner   string
			status  string
			balance string
		}{
			{"Amina Diallo", "active", "1250.00"},
			{"Joseph Banda", "active", "310.75"},
			{"Fatou Ndiaye", "suspended", "98.20"},
		}

		for _, w := range wallets {
			_, err := s.db.Exec(queryInsertWallet, uuid.New().String(), w.owner, w.status, w.balance)
			if err != nil {
				zap.L().Error("Failed to insert demo wallet", zap.String("owner", w.owner), zap.Error(err))
			} else {
				zap.L().Info("Demo wallet created", zap.String("owner", w.owner), zap.String("balance", w.balance))
			}
		}
	} else {
		zap.L().Info("Skipping demo wallet creation (CREATE_DEMO_WALLETS=false)")
	}

	return nil
}
