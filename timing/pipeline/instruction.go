package pipeline

import (
	"github.com/duckyzx/OoOcpusim/timing/latency"
	"github.com/duckyzx/OoOcpusim/trace"
)

// noProducer marks a source with no outstanding writer.
const noProducer = -1

// TypeForOpcode maps an opcode to its functional-unit type.
// Negative opcodes map to type 1.
func TypeForOpcode(op int) int {
	if op < 0 {
		return 1
	}
	return op % latency.NumTypes
}

// Instruction is the per-instruction simulation record. One is allocated
// at fetch and keeps its identity for the whole run; the reservation
// station, latches, bus-wait queue, and functional units all reference
// the same record.
type Instruction struct {
	// Tag is the monotonic identifier assigned at fetch. Smaller tag
	// means older instruction.
	Tag uint64

	// Record is the decoded trace record this instruction came from.
	Record trace.Record

	// Type is the functional-unit type, cached from the opcode.
	Type int

	// Stage-entry cycles.
	FetchCycle    uint64
	DispatchCycle uint64
	ScheduleCycle uint64
	ExecuteCycle  uint64
	StateCycle    uint64

	// ReadyCycle is the earliest cycle at which the reservation-station
	// entry may be issued. Set when the entry is inserted.
	ReadyCycle uint64

	// SrcReady marks each source operand as available. SrcTag holds the
	// producer tag awaited while a source is not ready.
	SrcReady [2]bool
	SrcTag   [2]int64

	Issued      bool
	WaitingBus  bool
	EnqueuedBus bool

	// CompletionCycle is the cycle execution finished.
	CompletionCycle uint64

	// FU points back to the unit currently holding this instruction.
	FU *FuncUnit
}

func newInstruction(tag uint64, rec trace.Record, cycle uint64) *Instruction {
	return &Instruction{
		Tag:        tag,
		Record:     rec,
		Type:       TypeForOpcode(rec.OpCode),
		FetchCycle: cycle,
		SrcTag:     [2]int64{noProducer, noProducer},
	}
}

// SrcsReady reports whether both source operands are available.
func (i *Instruction) SrcsReady() bool {
	return i.SrcReady[0] && i.SrcReady[1]
}
