package pipeline

import (
	"sort"

	"github.com/duckyzx/OoOcpusim/timing/latency"
)

// fuCandidate is a busy unit expected to free up in time for next
// cycle's execute stage.
type fuCandidate struct {
	inst      *Instruction
	fuType    int
	freeCycle uint64
}

// ProjectedFree computes, per unit type, how many units will be able to
// accept an instruction at the start of next cycle's execute stage. It
// is a pure projection of current pool state; issue uses the counts as
// upper bounds.
//
// Idle units count directly. A busy unit is a candidate to free if its
// instruction is already waiting for the bus, or finishes execution this
// cycle (Remaining == 1). Only the candidates the bus can actually
// broadcast next cycle — the first busWidth in (freeCycle, tag) order —
// are counted; the rest keep their units reserved.
func (p *Pool) ProjectedFree(cycle, busWidth uint64) [latency.NumTypes]int {
	var free [latency.NumTypes]int
	var candidates []fuCandidate

	for _, fu := range p.units {
		if fu.Inst == nil {
			free[fu.Type]++
			continue
		}
		switch {
		case fu.Inst.WaitingBus:
			candidates = append(candidates, fuCandidate{
				inst:      fu.Inst,
				fuType:    fu.Type,
				freeCycle: fu.Inst.CompletionCycle,
			})
		case fu.Remaining == 1:
			candidates = append(candidates, fuCandidate{
				inst:      fu.Inst,
				fuType:    fu.Type,
				freeCycle: cycle + 1,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].freeCycle != candidates[j].freeCycle {
			return candidates[i].freeCycle < candidates[j].freeCycle
		}
		return candidates[i].inst.Tag < candidates[j].inst.Tag
	})

	grants := int(busWidth)
	if grants > len(candidates) {
		grants = len(candidates)
	}
	for _, c := range candidates[:grants] {
		free[c.fuType]++
	}

	return free
}
