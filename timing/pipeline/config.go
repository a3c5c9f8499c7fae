package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the pipeline widths set once at initialization.
type Config struct {
	// FetchWidth is the number of instructions fetched per cycle.
	// Must be >= 1.
	FetchWidth uint64 `json:"fetch_width"`

	// CDBWidth is the number of result buses, bounding how many
	// instructions may broadcast per cycle. A configured value of 0 is
	// normalized to 1.
	CDBWidth uint64 `json:"cdb_width"`

	// NumFU0, NumFU1, NumFU2 are the functional-unit counts per type.
	// NumFU1 must be >= 1: negative opcodes always map to type 1, so a
	// pool without type-1 units can deadlock on any trace. A trace that
	// contains type-t instructions likewise needs NumFUt >= 1; that is
	// the caller's contract.
	NumFU0 uint64 `json:"num_fu0"`
	NumFU1 uint64 `json:"num_fu1"`
	NumFU2 uint64 `json:"num_fu2"`
}

// DefaultConfig returns the reference configuration used for the
// published trace runs.
func DefaultConfig() Config {
	return Config{
		FetchWidth: 8,
		CDBWidth:   8,
		NumFU0:     3,
		NumFU1:     3,
		NumFU2:     3,
	}
}

// Normalize applies the documented silent adjustments.
func (c *Config) Normalize() {
	if c.CDBWidth == 0 {
		c.CDBWidth = 1
	}
}

// Validate checks the configuration. Call Normalize first.
func (c Config) Validate() error {
	if c.FetchWidth < 1 {
		return fmt.Errorf("fetch_width must be >= 1")
	}
	if c.NumFU1 < 1 {
		return fmt.Errorf("num_fu1 must be >= 1")
	}
	if c.RSCapacity() == 0 {
		return fmt.Errorf("at least one functional unit is required")
	}
	return nil
}

// RSCapacity derives the reservation-station bound, 2*(K0+K1+K2).
func (c Config) RSCapacity() uint64 {
	return 2 * (c.NumFU0 + c.NumFU1 + c.NumFU2)
}

// LoadConfig loads a Config from a JSON file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read pipeline config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse pipeline config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize pipeline config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write pipeline config file: %w", err)
	}

	return nil
}
