package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mpad.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, "station:\n  callsign: N0CALL-1\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dedup.Capacity != 2160 {
		t.Errorf("expected default dedup capacity 2160, got %d", cfg.Dedup.Capacity)
	}
	if cfg.Satellite.MinElevationDeg != 10.0 {
		t.Errorf("expected default elevation threshold 10.0, got %v", cfg.Satellite.MinElevationDeg)
	}
}

func TestLoadMissingCallsign(t *testing.T) {
	path := writeTempConfig(t, "station:\n  symbol: /\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing station.callsign")
	}
}

func TestLoadMailRequiresRetention(t *testing.T) {
	path := writeTempConfig(t, "station:\n  callsign: N0CALL-1\nmail:\n  smtp_host: smtp.example.com\n  sent_retention: 0s\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for zero mail retention with mail enabled")
	}
}

func TestReadOnlySentinel(t *testing.T) {
	cfg := Default()
	cfg.Station.Callsign = NoCallSentinel
	if !cfg.ReadOnly() {
		t.Error("expected ReadOnly() true for NOCALL sentinel")
	}
}

func TestDapnetEnabled(t *testing.T) {
	cfg := Default()
	cfg.Dapnet.Callsign = NoCallSentinel
	if cfg.DapnetEnabled() {
		t.Error("expected DapnetEnabled() false for NOCALL sentinel")
	}
	cfg.Dapnet.Callsign = "DB0ABC-1"
	if !cfg.DapnetEnabled() {
		t.Error("expected DapnetEnabled() true for a real callsign")
	}
}
