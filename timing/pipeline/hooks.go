package pipeline

import (
	"github.com/sarchlab/akita/v4/sim"
)

// Hook positions invoked by the pipeline. The hook item is always the
// *Instruction involved; the hook fires in the cycle the event happens.
var (
	// HookPosInstFetch fires when an instruction is read from the trace
	// and assigned its tag.
	HookPosInstFetch = &sim.HookPos{Name: "InstFetch"}

	// HookPosInstIssue fires when a reservation-station entry is
	// selected for execution.
	HookPosInstIssue = &sim.HookPos{Name: "InstIssue"}

	// HookPosInstBroadcast fires when an instruction wins common data
	// bus arbitration.
	HookPosInstBroadcast = &sim.HookPos{Name: "InstBroadcast"}

	// HookPosInstRetire fires when an instruction leaves state update
	// and is removed from the reservation station.
	HookPosInstRetire = &sim.HookPos{Name: "InstRetire"}
)
