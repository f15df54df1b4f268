package common

import (
	"context"
	"log"
	"strings"

	"trust-reconciliation-go/internal/database"
	"trust-reconciliation-go/internal/models"
	"trust-reconciliation-go/internal/recon"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService *database.Service
	Runner    *recon.Runner
	Alerter   *recon.Alerter
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	alertConfig, err := recon.LoadAlertConfig(cfg.Reconciliation.AlertsFile)
	if err != nil {
		dbService.Close()
		return nil, err
	}
	alerter := recon.NewAlerter(alertConfig)

	runner := recon.NewRunner(recon.RunnerConfig{
		TrustReader:        dbService,
		LedgerReader:       dbService,
		Store:              dbService,
		Audit:              dbService,
		Alerter:            alerter,
		BalanceReadTimeout: cfg.Reconciliation.BalanceReadTimeout,
	})

	return &Services{
		DbService: dbService,
		Runner:    runner,
		Alerter:   alerter,
	}, nil
}

// InitializeDatabaseOnly initializes just the database service.
// Useful for read-only operations like posting or inspecting balances.
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	return database.NewService(ctx, cfg.Database)
}

func (cs *Services) Close() {
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
