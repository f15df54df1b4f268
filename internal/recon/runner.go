package recon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"trust-reconciliation-go/internal/models"
	"trust-reconciliation-go/internal/store"

	"go.uber.org/zap"
)

// RunStatus classifies the outcome of one reconciliation cycle.
type RunStatus string

const (
	// RunCompleted: snapshot and log entry both persisted.
	RunCompleted RunStatus = "completed"
	// RunPartialSuccess: snapshot persisted but the log append failed. The
	// state is trustworthy, the audit trail needs manual backfill.
	RunPartialSuccess RunStatus = "partial_success"
	// RunAborted: a precondition was missing (no trust balance posted).
	// Nothing was written.
	RunAborted RunStatus = "aborted"
	// RunFailed: a read or write failed. Nothing partial was persisted.
	RunFailed RunStatus = "failed"
)

// RunOutcome summarizes one reconciliation cycle for callers and operators.
type RunOutcome struct {
	Status    RunStatus
	Reason    string
	Retryable bool
	Snapshot  *models.TrustAccountSnapshot
	Result    *Result
}

// RunnerConfig contains the collaborators and settings for a Runner.
type RunnerConfig struct {
	TrustReader        store.TrustBalanceReader
	LedgerReader       store.LedgerBalanceReader
	Store              store.ReconciliationStore
	Audit              store.AuditSink
	Alerter            *Alerter
	BalanceReadTimeout time.Duration
}

// Runner orchestrates one reconciliation cycle: read both balances, compute,
// persist, audit. Runs never overlap; a second caller gets ErrRunInProgress.
type Runner struct {
	trustReader  store.TrustBalanceReader
	ledgerReader store.LedgerBalanceReader
	store        store.ReconciliationStore
	audit        store.AuditSink
	alerter      *Alerter
	engine       *Engine
	readTimeout  time.Duration

	mu sync.Mutex
}

func NewRunner(cfg RunnerConfig) *Runner {
	timeout := cfg.BalanceReadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{
		trustReader:  cfg.TrustReader,
		ledgerReader: cfg.LedgerReader,
		store:        cfg.Store,
		audit:        cfg.Audit,
		alerter:      cfg.Alerter,
		engine:       NewEngine(),
		readTimeout:  timeout,
	}
}

// RunDaily performs one reconciliation cycle for the given date. The returned
// error is non-nil only when the run lock is held by another cycle; every
// run-level failure is encoded in the outcome.
func (r *Runner) RunDaily(ctx context.Context, asOf time.Time) (RunOutcome, error) {
	if !r.mu.TryLock() {
		return RunOutcome{}, store.ErrRunInProgress
	}
	defer r.mu.Unlock()

	outcome := r.run(ctx, asOf)
	r.emitAudit(ctx, asOf, outcome)

	if outcome.Result != nil && r.alerter != nil && outcome.Result.Status == models.StatusDiscrepancy {
		if outcome.Result.IsShortfall() {
			r.alerter.Shortfall(asOf, *outcome.Result)
		} else {
			r.alerter.Surplus(asOf, *outcome.Result)
		}
	}

	return outcome, nil
}

func (r *Runner) run(ctx context.Context, asOf time.Time) RunOutcome {
	zap.L().Info("Starting reconciliation run", zap.String("as_of", asOf.UTC().Format(time.DateOnly)))

	// Precondition: a trust balance must be posted. Treating a missing trust
	// account as "0 vs liabilities" would misreport it as a massive shortfall.
	readCtx, cancel := context.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	snapshot, err := r.trustReader.LatestTrustBalance(readCtx)
	if errors.Is(err, store.ErrNotFound) {
		zap.L().Warn("Reconciliation aborted: no trust account balance posted")
		return RunOutcome{Status: RunAborted, Reason: "no trust account balance posted"}
	}
	if err != nil {
		zap.L().Error("Failed to read trust balance", zap.Error(err))
		return RunOutcome{
			Status:    RunFailed,
			Reason:    fmt.Sprintf("trust balance read failed: %v", err),
			Retryable: true,
		}
	}

	liabilities, err := r.ledgerReader.CurrentLiability(readCtx)
	if err != nil {
		// Never default the liability to zero: an unreachable wallet store
		// must not produce an artificially favorable reconciliation.
		zap.L().Error("Failed to read e-money liability", zap.Error(err))
		return RunOutcome{
			Status:    RunFailed,
			Reason:    fmt.Sprintf("liability read failed: %v", err),
			Retryable: true,
		}
	}

	result := r.engine.Reconcile(snapshot.ClosingBalance, liabilities, asOf)

	persisted, err := r.store.UpsertSnapshot(ctx, store.UpsertSnapshotParams{
		Date:              asOf,
		ClosingBalance:    result.TrustBalance,
		EMoneyLiabilities: result.Liabilities,
		Discrepancy:       result.Discrepancy,
		Status:            result.Status,
		ReconciledAt:      result.ReconciledAt,
	})
	if err != nil {
		zap.L().Error("Failed to persist reconciliation snapshot", zap.Error(err))
		return RunOutcome{
			Status:    RunFailed,
			Reason:    fmt.Sprintf("snapshot upsert failed: %v", err),
			Retryable: !errors.Is(err, store.ErrHistoryImmutable),
			Result:    &result,
		}
	}

	_, err = r.store.AppendLogEntry(ctx, models.ReconciliationLogEntry{
		ReconciliationDate:  asOf,
		TrustAccountBalance: result.TrustBalance,
		EMoneyLiabilities:   result.Liabilities,
		DiscrepancyAmount:   result.Discrepancy,
		Status:              result.Status,
		ReconciledAt:        result.ReconciledAt,
	})
	if err != nil {
		// The snapshot is correct; only the audit trail is incomplete.
		zap.L().Error("Snapshot persisted but log append failed", zap.Error(err))
		return RunOutcome{
			Status:   RunPartialSuccess,
			Reason:   fmt.Sprintf("log append failed: %v", err),
			Snapshot: persisted,
			Result:   &result,
		}
	}

	zap.L().Info("Reconciliation run completed",
		zap.String("as_of", asOf.UTC().Format(time.DateOnly)),
		zap.String("trust_balance", result.TrustBalance.String()),
		zap.String("liabilities", result.Liabilities.String()),
		zap.String("discrepancy", result.Discrepancy.String()),
		zap.String("status", string(result.Status)))

	return RunOutcome{Status: RunCompleted, Snapshot: persisted, Result: &result}
}

// emitAudit records a structured audit event for every outcome. Audit
// emission is a required side effect of the run; sink failures degrade to a
// local warning.
func (r *Runner) emitAudit(ctx context.Context, asOf time.Time, outcome RunOutcome) {
	if r.audit == nil {
		return
	}

	payload := map[string]string{
		"as_of": asOf.UTC().Format(time.DateOnly),
	}
	if outcome.Reason != "" {
		payload["reason"] = outcome.Reason
	}
	if outcome.Result != nil {
		payload["trust_balance"] = outcome.Result.TrustBalance.String()
		payload["e_money_liabilities"] = outcome.Result.Liabilities.String()
		payload["discrepancy"] = outcome.Result.Discrepancy.String()
		payload["status"] = string(outcome.Result.Status)
	}

	err := r.audit.Record(ctx, models.AuditEvent{
		Type:      "reconciliation.run",
		Outcome:   string(outcome.Status),
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		zap.L().Warn("Failed to record reconciliation audit event", zap.Error(err))
	}
}
