package models

import "time"

// Config represents the application configuration
type Config struct {
	Database       DatabaseConfig
	Server         ServerConfig
	Reconciliation ReconciliationConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path              string
	MaxOpenConns      int
	MaxIdleConns      int
	ConnMaxLifetime   time.Duration
	ConnMaxIdleTime   time.Duration
	PingTimeout       time.Duration
	CreateDemoWallets bool
}

// ServerConfig holds HTTP server settings for the status reporting API
type ServerConfig struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// ReconciliationConfig holds scheduler and runner settings
type ReconciliationConfig struct {
	CheckInterval      time.Duration
	BalanceReadTimeout time.Duration
	AlertsFile         string
}
