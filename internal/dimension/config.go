package dimension

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ChainConfig is the operator-maintained chain knowledge: the ordered list of
// known chains for list matching, and per-chain block rates (the fraction of
// seats withheld from public sale) for the discount model.
type ChainConfig struct {
	Chains     []string           `yaml:"chains"`
	BlockRates map[string]float64 `yaml:"blockRates"`
}

// DefaultChainConfig returns the chain list and block rates the pipeline ships
// with.
func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		Chains: []string{
			"PVR", "INOX", "Cinepolis", "Movietime Cinemas", "Wave Cinemas",
			"Miraj Cinemas", "Rajhans Cinemas", "Asian Mukta",
			"MovieMax", "Mythri Cinemas", "Maxus Cinemas",
		},
		BlockRates: map[string]float64{
			"PVR":       0.005,
			"Cinepolis": 0.0325,
			"INOX":      0,
		},
	}
}

// LoadChainConfig reads a YAML chain configuration file. An empty path returns
// the defaults.
func LoadChainConfig(path string) (ChainConfig, error) {
	if path == "" {
		return DefaultChainConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ChainConfig{}, fmt.Errorf("read chain config: %w", err)
	}
	var cfg ChainConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ChainConfig{}, fmt.Errorf("parse chain config %s: %w", path, err)
	}
	if len(cfg.Chains) == 0 {
		cfg.Chains = DefaultChainConfig().Chains
	}
	if cfg.BlockRates == nil {
		cfg.BlockRates = map[string]float64{}
	}
	for chain, rate := range cfg.BlockRates {
		if rate < 0 || rate > 1 {
			return ChainConfig{}, fmt.Errorf("chain config: block rate for %s out of [0,1]: %v", chain, rate)
		}
	}
	return cfg, nil
}
