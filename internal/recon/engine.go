package recon

import (
	"time"

	"trust-reconciliation-go/internal/models"

	"github.com/shopspring/decimal"
)

// Tolerance is one minor currency unit. It exists solely to absorb decimal
// rounding artifacts between two independently computed sums. Widening it
// would mask real drift, which is why it is compiled in and not configurable.
var Tolerance = decimal.RequireFromString("0.01")

// Result is the outcome of one reconciliation computation. Discrepancy keeps
// its sign: negative is a shortfall (trust account holds less than it owes),
// positive is a surplus.
type Result struct {
	TrustBalance decimal.Decimal
	Liabilities  decimal.Decimal
	Discrepancy  decimal.Decimal
	Status       models.ReconciliationStatus
	AsOf         time.Time
	ReconciledAt time.Time
}

// IsShortfall reports whether the result is a discrepancy where the trust
// account does not cover the liability. Shortfalls require same-day
// escalation; surpluses do not.
func (r Result) IsShortfall() bool {
	return r.Status == models.StatusDiscrepancy && r.Discrepancy.IsNegative()
}

// Engine compares a trust-account balance against an e-money liability.
// Pure computation: both figures arrive from the readers, the engine never
// touches storage.
type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineWithClock injects a clock for tests.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Reconcile computes the signed discrepancy and classifies it against the
// tolerance. The discrepancy is stored exactly; the tolerance applies only
// to classification.
func (e *Engine) Reconcile(trustBalance, liabilities decimal.Decimal, asOf time.Time) Result {
	discrepancy := trustBalance.Sub(liabilities)

	status := models.StatusDiscrepancy
	if discrepancy.Abs().LessThanOrEqual(Tolerance) {
		status = models.StatusReconciled
	}

	return Result{
		TrustBalance: trustBalance,
		Liabilities:  liabilities,
		Discrepancy:  discrepancy,
		Status:       status,
		AsOf:         asOf,
		ReconciledAt: e.now().UTC(),
	}
}
