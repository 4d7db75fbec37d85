// YAML config loader with CUE validation integration
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// PLC describes the Modbus TCP endpoint of the field controller.
type PLC struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	UnitID uint8  `yaml:"unit_id"`
}

// Admin configures the run admin API.
type Admin struct {
	Listen string `yaml:"listen"`
}

// BridgeConfig is the root configuration for one bridge process.
type BridgeConfig struct {
	PlantID string `yaml:"plant_id"`
	PLC     PLC    `yaml:"plc"`
	Admin   Admin  `yaml:"admin"`
}

// Load loads YAML config and validates it against a CUE schema.
// Missing optional fields get their defaults after validation.
func Load(configPath, cueSchemaPath string) (*BridgeConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg BridgeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *BridgeConfig) {
	if cfg.PlantID == "" {
		cfg.PlantID = "plant-01"
	}
	if cfg.PLC.Port == 0 {
		cfg.PLC.Port = 502
	}
	if cfg.PLC.UnitID == 0 {
		cfg.PLC.UnitID = 1
	}
	if cfg.Admin.Listen == "" {
		cfg.Admin.Listen = ":8080"
	}
}
