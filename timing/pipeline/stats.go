package pipeline

import (
	"sync/atomic"

	"gonum.org/v1/gonum/floats"
)

// Stats holds the final run statistics. All averages are zero when the
// cycle count is zero.
type Stats struct {
	// CycleCount is the effective number of simulated cycles.
	CycleCount uint64 `json:"cycle_count"`
	// RetiredInstructions is the count of instructions that completed
	// state update.
	RetiredInstructions uint64 `json:"retired_instruction"`
	// AvgInstFired is the average number of instructions issued per cycle.
	AvgInstFired float32 `json:"avg_inst_fired"`
	// AvgInstRetired is the average number of instructions retired per cycle.
	AvgInstRetired float32 `json:"avg_inst_retired"`
	// AvgDispSize is the average dispatch-queue occupancy.
	AvgDispSize float32 `json:"avg_disp_size"`
	// MaxDispSize is the peak dispatch-queue occupancy.
	MaxDispSize uint64 `json:"max_disp_size"`
}

// Complete fills the derived statistics from the run's accumulators.
// CycleCount and RetiredInstructions must already be set; everything is
// left zero for a zero-cycle run.
func (p *Pipeline) Complete(s *Stats) {
	if s.CycleCount == 0 {
		s.AvgInstFired = 0
		s.AvgInstRetired = 0
		s.AvgDispSize = 0
		s.MaxDispSize = 0
		return
	}

	// The sample series has one entry per executed tick, including the
	// final empty one; the divisor is the reported cycle count, matching
	// the reference figures.
	s.AvgInstFired = float32(p.issuedTotal) / float32(s.CycleCount)
	s.AvgInstRetired = float32(s.RetiredInstructions) / float32(s.CycleCount)
	s.AvgDispSize = float32(floats.Sum(p.dispSamples) / float64(s.CycleCount))
	s.MaxDispSize = uint64(floats.Max(p.dispSamples))
}

// Snapshot is a point-in-time view of a run, safe to read while the
// simulation loop is running on another goroutine.
type Snapshot struct {
	Cycle        uint64 `json:"cycle"`
	Fetched      uint64 `json:"fetched"`
	Issued       uint64 `json:"issued"`
	Retired      uint64 `json:"retired"`
	DispQueueLen uint64 `json:"disp_queue_len"`
	RSOccupancy  uint64 `json:"rs_occupancy"`
}

// progress mirrors the hot counters into atomics once per tick so a
// monitor can observe a live run without racing the simulation.
type progress struct {
	cycle   atomic.Uint64
	fetched atomic.Uint64
	issued  atomic.Uint64
	retired atomic.Uint64
	dispLen atomic.Uint64
	rsLen   atomic.Uint64
}

func (p *Pipeline) updateProgress() {
	p.prog.cycle.Store(p.cycle)
	p.prog.fetched.Store(p.nextTag - 1)
	p.prog.issued.Store(p.issuedTotal)
	p.prog.retired.Store(p.retired)
	p.prog.dispLen.Store(uint64(len(p.dispatchQ)))
	p.prog.rsLen.Store(uint64(p.rs.Len()))
}

// Progress returns the live counter snapshot.
func (p *Pipeline) Progress() Snapshot {
	return Snapshot{
		Cycle:        p.prog.cycle.Load(),
		Fetched:      p.prog.fetched.Load(),
		Issued:       p.prog.issued.Load(),
		Retired:      p.prog.retired.Load(),
		DispQueueLen: p.prog.dispLen.Load(),
		RSOccupancy:  p.prog.rsLen.Load(),
	}
}
