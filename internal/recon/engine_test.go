package recon

import (
	"testing"
	"time"

	"trust-reconciliation-go/internal/models"

	"github.com/shopspring/decimal"
)

func testEngine() *Engine {
	fixed := time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)
	return NewEngineWithClock(func() time.Time { return fixed })
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestReconcile_ExactMatch(t *testing.T) {
	engine := testEngine()
	asOf := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	result := engine.Reconcile(d("50000.00"), d("50000.00"), asOf)

	if !result.Discrepancy.Equal(d("0.00")) {
		t.Errorf("Expected discrepancy 0.00, got %s", result.Discrepancy.String())
	}
	if result.Status != models.StatusReconciled {
		t.Errorf("Expected status reconciled, got %s", result.Status)
	}
}

func TestReconcile_WithinTolerance(t *testing.T) {
	engine := testEngine()
	asOf := time.Now().UTC()

	result := engine.Reconcile(d("50000.00"), d("49999.99"), asOf)

	if !result.Discrepancy.Equal(d("0.01")) {
		t.Errorf("Expected discrepancy 0.01, got %s", result.Discrepancy.String())
	}
	if result.Status != models.StatusReconciled {
		t.Errorf("Expected status reconciled at tolerance boundary, got %s", result.Status)
	}
}

func TestReconcile_AboveTolerance(t *testing.T) {
	engine := testEngine()
	asOf := time.Now().UTC()

	result := engine.Reconcile(d("50000.00"), d("49999.98"), asOf)

	if !result.Discrepancy.Equal(d("0.02")) {
		t.Errorf("Expected discrepancy 0.02, got %s", result.Discrepancy.String())
	}
	if result.Status != models.StatusDiscrepancy {
		t.Errorf("Expected status discrepancy, got %s", result.Status)
	}
}

func TestReconcile_ToleranceBoundaries(t *testing.T) {
	engine := testEngine()
	asOf := time.Now().UTC()

	tests := []struct {
		trustBalance string
		liabilities  string
		discrepancy  string
		status       models.ReconciliationStatus
	}{
		{"100.01", "100.00", "0.01", models.StatusReconciled},
		{"100.00", "100.01", "-0.01", models.StatusReconciled},
		{"100.011", "100.00", "0.011", models.StatusDiscrepancy},
		{"100.00", "100.011", "-0.011", models.StatusDiscrepancy},
	}

	for _, tt := range tests {
		result := engine.Reconcile(d(tt.trustBalance), d(tt.liabilities), asOf)
		if !result.Discrepancy.Equal(d(tt.discrepancy)) {
			t.Errorf("%s vs %s: expected discrepancy %s, got %s",
				tt.trustBalance, tt.liabilities, tt.discrepancy, result.Discrepancy.String())
		}
		if result.Status != tt.status {
			t.Errorf("%s vs %s: expected status %s, got %s",
				tt.trustBalance, tt.liabilities, tt.status, result.Status)
		}
	}
}

func TestReconcile_ShortfallPreservesSign(t *testing.T) {
	engine := testEngine()
	asOf := time.Now().UTC()

	result := engine.Reconcile(d("1000"), d("1200"), asOf)

	if !result.Discrepancy.Equal(d("-200")) {
		t.Errorf("Expected discrepancy -200, got %s", result.Discrepancy.String())
	}
	if result.Status != models.StatusDiscrepancy {
		t.Errorf("Expected status discrepancy, got %s", result.Status)
	}
	if !result.IsShortfall() {
		t.Error("Expected a shortfall")
	}
}

func TestReconcile_SurplusIsNotShortfall(t *testing.T) {
	engine := testEngine()

	result := engine.Reconcile(d("1200"), d("1000"), time.Now().UTC())

	if result.Status != models.StatusDiscrepancy {
		t.Errorf("Expected status discrepancy, got %s", result.Status)
	}
	if result.IsShortfall() {
		t.Error("A surplus must not be classified as a shortfall")
	}
}

func TestReconcile_ZeroWalletsZeroTrust(t *testing.T) {
	engine := testEngine()

	result := engine.Reconcile(d("0.00"), d("0"), time.Now().UTC())

	if !result.Discrepancy.IsZero() {
		t.Errorf("Expected discrepancy 0, got %s", result.Discrepancy.String())
	}
	if result.Status != models.StatusReconciled {
		t.Errorf("Expected status reconciled, got %s", result.Status)
	}
}

func TestReconcile_DiscrepancyStoredExactly(t *testing.T) {
	engine := testEngine()

	// Exactness must hold with no tolerance applied to the stored value.
	result := engine.Reconcile(d("12345.67"), d("12345.665"), time.Now().UTC())

	if !result.Discrepancy.Equal(d("0.005")) {
		t.Errorf("Expected exact discrepancy 0.005, got %s", result.Discrepancy.String())
	}
	if !result.TrustBalance.Sub(result.Liabilities).Equal(result.Discrepancy) {
		t.Error("Discrepancy must equal trustBalance - liabilities exactly")
	}
}

func TestReconcile_UsesInjectedClock(t *testing.T) {
	fixed := time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)
	engine := NewEngineWithClock(func() time.Time { return fixed })

	result := engine.Reconcile(d("1"), d("1"), fixed)

	if !result.ReconciledAt.Equal(fixed) {
		t.Errorf("Expected reconciledAt %v, got %v", fixed, result.ReconciledAt)
	}
}
