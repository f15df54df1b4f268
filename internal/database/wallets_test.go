package database

import (
	"context"
	"errors"
	"testing"

	"trust-reconciliation-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCurrentLiability_NoWallets(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	liability, err := service.CurrentLiability(context.Background())
	if err != nil {
		t.Fatalf("CurrentLiability failed: %v", err)
	}
	if !liability.IsZero() {
		t.Errorf("Expected liability 0 with no wallets, got %s", liability.String())
	}
}

func TestCurrentLiability_SumsActiveWalletsOnly(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	wallets := []struct {
		status  string
		balance string
	}{
		{"active", "1250.00"},
		{"active", "310.75"},
		{"active", "0.25"},
		{"suspended", "98.20"},
		{"closed", "500.00"},
	}
	for _, w := range wallets {
		if err := service.InsertWallet(ctx, uuid.New().String(), "Owner", w.status, decimal.RequireFromString(w.balance)); err != nil {
			t.Fatalf("InsertWallet failed: %v", err)
		}
	}

	liability, err := service.CurrentLiability(ctx)
	if err != nil {
		t.Fatalf("CurrentLiability failed: %v", err)
	}

	expected := decimal.RequireFromString("1561.00")
	if !liability.Equal(expected) {
		t.Errorf("Expected liability %s, got %s", expected.String(), liability.String())
	}
}

func TestCurrentLiability_ExactDecimalSum(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	// Values chosen to drift under binary floating point.
	for _, b := range []string{"0.10", "0.20", "0.30"} {
		if err := service.InsertWallet(ctx, uuid.New().String(), "Owner", "active", decimal.RequireFromString(b)); err != nil {
			t.Fatalf("InsertWallet failed: %v", err)
		}
	}

	liability, err := service.CurrentLiability(ctx)
	if err != nil {
		t.Fatalf("CurrentLiability failed: %v", err)
	}
	if !liability.Equal(decimal.RequireFromString("0.60")) {
		t.Errorf("Expected exact liability 0.60, got %s", liability.String())
	}
}

func TestCurrentLiability_StoreUnavailable(t *testing.T) {
	service, cleanup := setupTestService(t)
	cleanup()

	_, err := service.CurrentLiability(context.Background())
	if !errors.Is(err, store.ErrDataUnavailable) {
		t.Errorf("Expected ErrDataUnavailable from a closed store, got %v", err)
	}
}
