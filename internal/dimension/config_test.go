package dimension

import (
	"os"
	"path/filepath"
	"testing"
)

func writeChainConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chains.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadChainConfig(t *testing.T) {
	path := writeChainConfig(t, `
chains:
  - PVR
  - Prasads
blockRates:
  PVR: 0.005
  Prasads: 0.02
`)

	cfg, err := LoadChainConfig(path)
	if err != nil {
		t.Fatalf("LoadChainConfig: %v", err)
	}
	if len(cfg.Chains) != 2 || cfg.Chains[1] != "Prasads" {
		t.Errorf("Chains = %v", cfg.Chains)
	}
	if cfg.BlockRates["Prasads"] != 0.02 {
		t.Errorf("BlockRates = %v", cfg.BlockRates)
	}
}

func TestLoadChainConfigEmptyPathIsDefault(t *testing.T) {
	cfg, err := LoadChainConfig("")
	if err != nil {
		t.Fatalf("LoadChainConfig: %v", err)
	}
	def := DefaultChainConfig()
	if len(cfg.Chains) != len(def.Chains) {
		t.Errorf("expected default chains, got %v", cfg.Chains)
	}
	if cfg.BlockRates["Cinepolis"] != 0.0325 {
		t.Errorf("default block rates = %v", cfg.BlockRates)
	}
}

func TestLoadChainConfigRejectsBadRate(t *testing.T) {
	path := writeChainConfig(t, `
chains: [PVR]
blockRates:
  PVR: 1.5
`)
	if _, err := LoadChainConfig(path); err == nil {
		t.Error("expected error for block rate outside [0,1]")
	}
}

func TestLoadChainConfigMissingChainsFallsBack(t *testing.T) {
	path := writeChainConfig(t, `blockRates: {PVR: 0.01}`)

	cfg, err := LoadChainConfig(path)
	if err != nil {
		t.Fatalf("LoadChainConfig: %v", err)
	}
	if len(cfg.Chains) == 0 {
		t.Error("missing chains list should fall back to defaults")
	}
}

func TestLoadChainConfigMissingFile(t *testing.T) {
	if _, err := LoadChainConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
