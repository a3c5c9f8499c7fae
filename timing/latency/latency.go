// Package latency provides execute-stage timing for the functional-unit
// pool. Each of the three unit types has a fixed execution latency,
// configurable via TimingConfig.
package latency

// NumTypes is the number of functional-unit types.
const NumTypes = 3

// Table provides per-type execution latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a latency table with the default unit-latency values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// Config returns the timing configuration backing this table.
func (t *Table) Config() *TimingConfig {
	return t.config
}

// ForType returns the execution latency in cycles for the given
// functional-unit type. Unknown types execute in one cycle.
func (t *Table) ForType(fuType int) uint64 {
	switch fuType {
	case 0:
		return t.config.Type0Latency
	case 1:
		return t.config.Type1Latency
	case 2:
		return t.config.Type2Latency
	default:
		return 1
	}
}
