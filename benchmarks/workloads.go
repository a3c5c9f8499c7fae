// Package benchmarks provides synthetic workloads and published-trace
// validation for the pipeline timing model.
package benchmarks

import (
	"github.com/duckyzx/OoOcpusim/timing/pipeline"
	"github.com/duckyzx/OoOcpusim/trace"
)

// Workload is a synthetic trace with the configuration it targets.
type Workload struct {
	Name        string
	Description string
	Config      pipeline.Config
	Records     []trace.Record
}

// Source returns a fresh trace source over the workload's records.
func (w Workload) Source() trace.Source {
	return trace.NewSliceSource(w.Records...)
}

// GetWorkloads returns the standard synthetic workloads. Each targets a
// specific structural behavior of the pipeline.
func GetWorkloads() []Workload {
	return []Workload{
		independentStream(),
		dependencyChain(),
		busContention(),
		registerPressure(),
		mixedTypes(),
	}
}

// independentStream measures peak issue throughput: no instruction
// depends on any other.
func independentStream() Workload {
	var records []trace.Record
	for i := 0; i < 256; i++ {
		records = append(records, trace.Record{
			PC:      uint64(i * 4),
			OpCode:  i % 3,
			DestReg: i % 64,
			SrcReg:  [2]int{-1, -1},
		})
	}
	return Workload{
		Name:        "independent_stream",
		Description: "256 independent ops across all unit types - peak throughput",
		Config:      pipeline.DefaultConfig(),
		Records:     records,
	}
}

// dependencyChain serializes completely: every instruction reads the
// previous one's destination.
func dependencyChain() Workload {
	records := []trace.Record{
		{OpCode: 0, DestReg: 1, SrcReg: [2]int{-1, -1}},
	}
	for i := 1; i < 128; i++ {
		records = append(records, trace.Record{
			PC:      uint64(i * 4),
			OpCode:  i % 3,
			DestReg: (i % 100) + 1,
			SrcReg:  [2]int{(i-1)%100 + 1, -1},
		})
	}
	return Workload{
		Name:        "dependency_chain",
		Description: "128-deep RAW chain - exposes wakeup and forwarding timing",
		Config:      pipeline.DefaultConfig(),
		Records:     records,
	}
}

// busContention floods a single result bus from a wide unit pool.
func busContention() Workload {
	var records []trace.Record
	for i := 0; i < 64; i++ {
		records = append(records, trace.Record{
			PC:      uint64(i * 4),
			OpCode:  0,
			DestReg: i % 32,
			SrcReg:  [2]int{-1, -1},
		})
	}
	return Workload{
		Name:        "bus_contention",
		Description: "64 independent type-0 ops against one CDB slot",
		Config: pipeline.Config{
			FetchWidth: 8,
			CDBWidth:   1,
			NumFU0:     4,
			NumFU1:     1,
			NumFU2:     1,
		},
		Records: records,
	}
}

// registerPressure keeps rewriting a handful of registers, exercising
// youngest-writer tracking in the producer table.
func registerPressure() Workload {
	var records []trace.Record
	for i := 0; i < 96; i++ {
		records = append(records, trace.Record{
			PC:      uint64(i * 4),
			OpCode:  i % 3,
			DestReg: i % 4,
			SrcReg:  [2]int{(i + 1) % 4, (i + 2) % 4},
		})
	}
	return Workload{
		Name:        "register_pressure",
		Description: "96 ops cycling through 4 registers - WAW-heavy rename traffic",
		Config:      pipeline.DefaultConfig(),
		Records:     records,
	}
}

// mixedTypes skews work toward type-1 units, including negative opcodes.
func mixedTypes() Workload {
	var records []trace.Record
	for i := 0; i < 128; i++ {
		op := i % 3
		if i%7 == 0 {
			op = -1
		}
		records = append(records, trace.Record{
			PC:      uint64(i * 4),
			OpCode:  op,
			DestReg: i % 48,
			SrcReg:  [2]int{(i + 3) % 48, -1},
		})
	}
	return Workload{
		Name:        "mixed_types",
		Description: "128 ops with negative opcodes folded onto type-1 units",
		Config: pipeline.Config{
			FetchWidth: 4,
			CDBWidth:   2,
			NumFU0:     2,
			NumFU1:     1,
			NumFU2:     2,
		},
		Records: records,
	}
}
