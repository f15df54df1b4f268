package recon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAlertConfig_MissingFileFallsBack(t *testing.T) {
	cfg, err := LoadAlertConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadAlertConfig failed: %v", err)
	}
	if len(cfg.Channels) != 1 || cfg.Channels[0].Name != "ops" {
		t.Errorf("Expected default ops channel, got %+v", cfg.Channels)
	}
}

func TestLoadAlertConfig_ParsesChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.yaml")
	content := `channels:
  - name: ops-pagerduty
    min_severity: critical
  - name: compliance-email
    min_severity: warning
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write alerts file: %v", err)
	}

	cfg, err := LoadAlertConfig(path)
	if err != nil {
		t.Fatalf("LoadAlertConfig failed: %v", err)
	}
	if len(cfg.Channels) != 2 {
		t.Fatalf("Expected 2 channels, got %d", len(cfg.Channels))
	}
	if cfg.Channels[0].Name != "ops-pagerduty" || cfg.Channels[0].MinSeverity != SeverityCritical {
		t.Errorf("Unexpected first channel: %+v", cfg.Channels[0])
	}
}

func TestAlerter_ChannelRouting(t *testing.T) {
	alerter := NewAlerter(&AlertConfig{Channels: []AlertChannel{
		{Name: "ops-pagerduty", MinSeverity: SeverityCritical},
		{Name: "compliance-email", MinSeverity: SeverityWarning},
	}})

	critical := alerter.channels(SeverityCritical)
	if len(critical) != 2 {
		t.Errorf("Critical alerts must reach every channel, got %d", len(critical))
	}

	warning := alerter.channels(SeverityWarning)
	if len(warning) != 1 || warning[0].Name != "compliance-email" {
		t.Errorf("Warning alerts must only reach warning-level channels, got %+v", warning)
	}
}
