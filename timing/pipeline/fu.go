package pipeline

import (
	"fmt"

	"github.com/duckyzx/OoOcpusim/timing/latency"
)

// FuncUnit is a single execution slot. It holds at most one instruction;
// Remaining counts the cycles until execution completes.
type FuncUnit struct {
	Type      int
	Inst      *Instruction
	Remaining uint64
}

// Idle reports whether the unit can accept a new instruction.
func (fu *FuncUnit) Idle() bool {
	return fu.Inst == nil
}

// Pool is the fixed set of functional units, created in type order:
// K0 type-0 slots, then K1 type-1, then K2 type-2.
type Pool struct {
	units []*FuncUnit
	table *latency.Table
}

// NewPool builds a pool with the given per-type unit counts.
func NewPool(k0, k1, k2 uint64, table *latency.Table) *Pool {
	p := &Pool{table: table}
	for t, k := range [latency.NumTypes]uint64{k0, k1, k2} {
		for i := uint64(0); i < k; i++ {
			p.units = append(p.units, &FuncUnit{Type: t})
		}
	}
	return p
}

// Units exposes the pool slots in creation order.
func (p *Pool) Units() []*FuncUnit {
	return p.units
}

// FindFree returns the first idle unit of the given type, or nil.
func (p *Pool) FindFree(fuType int) *FuncUnit {
	for _, fu := range p.units {
		if fu.Type == fuType && fu.Idle() {
			return fu
		}
	}
	return nil
}

// Start places inst on a free unit of its type. Issue's lookahead
// guarantees a unit is available; finding none is an invariant
// violation, not a stall.
func (p *Pool) Start(inst *Instruction, cycle uint64) {
	fu := p.FindFree(inst.Type)
	if fu == nil {
		panic(fmt.Sprintf(
			"no free type-%d unit for tag %d at cycle %d (issue oversubscribed)",
			inst.Type, inst.Tag, cycle))
	}
	fu.Inst = inst
	fu.Remaining = p.table.ForType(inst.Type)
	inst.FU = fu
	inst.ExecuteCycle = cycle
}

// Tick advances every busy unit by one cycle. An instruction whose
// execution finishes is marked completed and enqueued for bus
// arbitration; the unit itself stays reserved until the result wins the
// bus (the result must be latched to the CDB before the unit can accept
// a new op).
func (p *Pool) Tick(cycle uint64, bus *BusQueue) {
	for _, fu := range p.units {
		if fu.Inst == nil || fu.Remaining == 0 {
			continue
		}
		fu.Remaining--
		if fu.Remaining > 0 || fu.Inst.WaitingBus {
			continue
		}
		inst := fu.Inst
		if inst.CompletionCycle == 0 {
			inst.CompletionCycle = cycle
		}
		inst.WaitingBus = true
		if !inst.EnqueuedBus {
			bus.Enqueue(inst)
			inst.EnqueuedBus = true
		}
	}
}

// Release frees the unit holding inst after its result broadcast.
func (p *Pool) Release(inst *Instruction) {
	if inst.FU == nil {
		return
	}
	inst.FU.Inst = nil
	inst.FU.Remaining = 0
	inst.FU = nil
}

// Busy reports whether any unit holds an instruction.
func (p *Pool) Busy() bool {
	for _, fu := range p.units {
		if fu.Inst != nil {
			return true
		}
	}
	return false
}
