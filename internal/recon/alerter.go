package recon

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Alert severities, lowest to highest.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// AlertChannel routes alerts at or above its minimum severity. Delivery is
// log-backed; the notification transport lives outside this module.
type AlertChannel struct {
	Name        string `yaml:"name"`
	MinSeverity string `yaml:"min_severity"`
}

// AlertConfig is the on-disk alert routing configuration.
type AlertConfig struct {
	Channels []AlertChannel `yaml:"channels"`
}

// LoadAlertConfig reads the alert routing file. A missing file falls back to
// a single critical-only operations channel.
func LoadAlertConfig(path string) (*AlertConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		zap.L().Warn("Alerts file not found, using default ops channel", zap.String("file", path))
		return &AlertConfig{Channels: []AlertChannel{{Name: "ops", MinSeverity: SeverityCritical}}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read alerts file %s: %w", path, err)
	}

	var cfg AlertConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unable to parse alerts file %s: %w", path, err)
	}
	if len(cfg.Channels) == 0 {
		return nil, fmt.Errorf("alerts file %s defines no channels", path)
	}
	return &cfg, nil
}

// Alerter escalates discrepancies. A shortfall is a compliance violation and
// always goes out at critical severity, distinct from the routine audit event.
type Alerter struct {
	config *AlertConfig
}

func NewAlerter(config *AlertConfig) *Alerter {
	return &Alerter{config: config}
}

// Shortfall emits a high-priority alert for a negative discrepancy.
func (a *Alerter) Shortfall(asOf time.Time, result Result) {
	for _, ch := range a.channels(SeverityCritical) {
		zap.L().Error("TRUST ACCOUNT SHORTFALL",
			zap.String("channel", ch.Name),
			zap.String("severity", SeverityCritical),
			zap.String("as_of", asOf.UTC().Format(time.DateOnly)),
			zap.String("trust_balance", result.TrustBalance.String()),
			zap.String("e_money_liabilities", result.Liabilities.String()),
			zap.String("shortfall", result.Discrepancy.String()))
	}
}

// Surplus emits a routine alert for a positive discrepancy above tolerance.
func (a *Alerter) Surplus(asOf time.Time, result Result) {
	for _, ch := range a.channels(SeverityWarning) {
		zap.L().Warn("Trust account surplus above tolerance",
			zap.String("channel", ch.Name),
			zap.String("severity", SeverityWarning),
			zap.String("as_of", asOf.UTC().Format(time.DateOnly)),
			zap.String("surplus", result.Discrepancy.String()))
	}
}

// channels returns the channels that accept the given severity.
func (a *Alerter) channels(severity string) []AlertChannel {
	var out []AlertChannel
	for _, ch := range a.config.Channels {
		if severity == SeverityCritical || ch.MinSeverity == SeverityWarning {
			out = append(out, ch)
		}
	}
	return out
}
