package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeTempConfig(t, `
plant_id: plant-7
plc:
  host: openplc
  port: 1502
`)
	cfg, err := Load(path, "../../schemas/bridge.cue")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.PlantID != "plant-7" {
		t.Errorf("plant_id = %q, want plant-7", cfg.PlantID)
	}
	if cfg.PLC.Host != "openplc" || cfg.PLC.Port != 1502 {
		t.Errorf("unexpected PLC config: %+v", cfg.PLC)
	}
	if cfg.PLC.UnitID != 1 {
		t.Errorf("unit_id default = %d, want 1", cfg.PLC.UnitID)
	}
	if cfg.Admin.Listen != ":8080" {
		t.Errorf("admin listen default = %q, want :8080", cfg.Admin.Listen)
	}
}

func TestLoadConfig_DefaultPlantID(t *testing.T) {
	path := writeTempConfig(t, `
plc:
  host: openplc
`)
	cfg, err := Load(path, "../../schemas/bridge.cue")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.PlantID != "plant-01" {
		t.Errorf("plant_id default = %q, want plant-01", cfg.PlantID)
	}
	if cfg.PLC.Port != 502 {
		t.Errorf("port default = %d, want 502", cfg.PLC.Port)
	}
}

func TestLoadConfig_MissingHost(t *testing.T) {
	path := writeTempConfig(t, `
plant_id: plant-7
`)
	if _, err := Load(path, "../../schemas/bridge.cue"); err == nil {
		t.Fatalf("expected validation error for missing plc.host")
	}
}

func TestLoadConfig_PortOutOfRange(t *testing.T) {
	path := writeTempConfig(t, `
plc:
  host: openplc
  port: 70000
`)
	if _, err := Load(path, "../../schemas/bridge.cue"); err == nil {
		t.Fatalf("expected validation error for port out of range")
	}
}

func TestValidateWithCue_MissingConfig(t *testing.T) {
	err := ValidateWithCue(filepath.Join(t.TempDir(), "absent.yaml"), "../../schemas/bridge.cue")
	if err == nil || !strings.Contains(err.Error(), "cannot read YAML config") {
		t.Fatalf("unexpected error: %v", err)
	}
}
