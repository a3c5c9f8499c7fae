package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds execution latency values for the three
// functional-unit types. All types default to a single cycle.
type TimingConfig struct {
	// Type0Latency is the execution latency for type-0 units.
	// Default: 1 cycle.
	Type0Latency uint64 `json:"type0_latency"`

	// Type1Latency is the execution latency for type-1 units.
	// Default: 1 cycle.
	Type1Latency uint64 `json:"type1_latency"`

	// Type2Latency is the execution latency for type-2 units.
	// Default: 1 cycle.
	Type2Latency uint64 `json:"type2_latency"`
}

// DefaultTimingConfig returns a TimingConfig with unit latencies.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		Type0Latency: 1,
		Type1Latency: 1,
		Type2Latency: 1,
	}
}

// LoadConfig loads a TimingConfig from a JSON file.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are valid (> 0).
func (c *TimingConfig) Validate() error {
	if c.Type0Latency == 0 {
		return fmt.Errorf("type0_latency must be > 0")
	}
	if c.Type1Latency == 0 {
		return fmt.Errorf("type1_latency must be > 0")
	}
	if c.Type2Latency == 0 {
		return fmt.Errorf("type2_latency must be > 0")
	}
	return nil
}
