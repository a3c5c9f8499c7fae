// Package pipeline implements a cycle-accurate timing model of an
// N-wide out-of-order superscalar processor: tag-based register
// renaming through a producer table, a unified reservation station,
// typed functional-unit pools, and a bounded common data bus that
// serializes result broadcast and retirement.
//
// The model is purely about timing. Operand values, memory, and control
// flow are never evaluated; instructions are decoded trace records and
// the only outputs are cycle counts and occupancy statistics.
//
// Within a tick the five stages are evaluated in reverse order (state
// update first, fetch last) so that a result can be retired, broadcast,
// forwarded, and consumed by a waiting dependent in the same cycle.
// Effects that must cross a cycle boundary travel through the three
// one-cycle latches; a stage's inputs in tick T are always its upstream
// stage's outputs from tick T-1.
package pipeline

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/duckyzx/OoOcpusim/timing/latency"
	"github.com/duckyzx/OoOcpusim/trace"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLatencyTable sets a custom execution latency table. The default
// table executes every unit type in one cycle.
func WithLatencyTable(table *latency.Table) Option {
	return func(p *Pipeline) {
		p.latTable = table
	}
}

// Pipeline is one simulation context: the producer table, functional
// units, queues, latches, and counters for a single run.
type Pipeline struct {
	*sim.HookableBase

	cfg      Config
	src      trace.Source
	latTable *latency.Table

	regMap *RegMap
	fus    *Pool
	rs     *Station

	// dispatchQ is the unbounded FIFO between fetch and schedule.
	dispatchQ []*Instruction
	// stateUpdate holds instructions that broadcast this cycle and
	// retire next cycle.
	stateUpdate []*Instruction
	busWait     *BusQueue

	latchFD Latch // fetch -> dispatch
	latchDS Latch // dispatch -> schedule
	latchSE Latch // schedule -> execute

	// store owns every instruction record for the run; all other
	// structures hold non-owning references.
	store []*Instruction

	nextTag   uint64
	traceDone bool

	cycle       uint64
	retired     uint64
	issuedTotal uint64
	dispSamples []float64

	prog progress
}

// New builds a pipeline for one run over src. The configuration is
// normalized (CDB width 0 becomes 1) and validated.
func New(cfg Config, src trace.Source, opts ...Option) (*Pipeline, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		HookableBase: sim.NewHookableBase(),
		cfg:          cfg,
		src:          src,
		regMap:       NewRegMap(),
		busWait:      NewBusQueue(),
		rs:           NewStation(int(cfg.RSCapacity())),
		nextTag:      1,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.latTable == nil {
		p.latTable = latency.NewTable()
	}
	p.fus = NewPool(cfg.NumFU0, cfg.NumFU1, cfg.NumFU2, p.latTable)

	return p, nil
}

// Config returns the normalized configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// AttachHook registers a hook to be invoked at the pipeline's hook positions.
func (p *Pipeline) AttachHook(hook sim.Hook) {
	p.AcceptHook(hook)
}

// Cycle returns the current cycle number.
func (p *Pipeline) Cycle() uint64 {
	return p.cycle
}

// Done reports whether the trace is exhausted and the pipeline has
// drained completely.
func (p *Pipeline) Done() bool {
	return p.traceDone && p.empty()
}

// empty is true when no record is held anywhere: dispatch queue,
// reservation station, state-update set, bus-wait queue, any latch
// buffer, or any functional unit.
func (p *Pipeline) empty() bool {
	if len(p.dispatchQ) > 0 || p.rs.Len() > 0 {
		return false
	}
	if len(p.stateUpdate) > 0 || p.busWait.Len() > 0 {
		return false
	}
	if !p.latchFD.Empty() || !p.latchDS.Empty() || !p.latchSE.Empty() {
		return false
	}
	return !p.fus.Busy()
}

// Run ticks the pipeline until it drains, then reports the final
// statistics. An empty trace reports all zeros.
func (p *Pipeline) Run() Stats {
	for !p.Done() {
		p.Tick()
	}

	var s Stats
	if p.nextTag == 1 {
		return s
	}

	// The loop always executes one trailing tick in which nothing
	// happens; drop it from the report.
	cycle := p.cycle
	if cycle > 0 {
		cycle--
	}
	s.CycleCount = cycle
	s.RetiredInstructions = p.retired
	p.Complete(&s)
	return s
}

// Tick advances the simulation by one cycle, evaluating the stages in
// reverse order.
func (p *Pipeline) Tick() {
	p.cycle++

	p.retireStateUpdate()
	p.fus.Tick(p.cycle, p.busWait)
	p.broadcastResults()
	p.startExecutions()
	p.insertIntoRS()
	p.fillDispatchQueue()

	// The dispatch queue is observed after the latch drained into it
	// and before issue, so the sample sees this cycle's arrivals.
	p.dispSamples = append(p.dispSamples, float64(len(p.dispatchQ)))

	p.issueReady()
	p.drainDispatchQueue()
	p.fetch()

	p.latchFD.Advance()
	p.latchDS.Advance()
	p.latchSE.Advance()

	p.updateProgress()
}

// retireStateUpdate removes last cycle's broadcast winners from the
// reservation station and counts them retired.
func (p *Pipeline) retireStateUpdate() {
	for _, inst := range p.stateUpdate {
		p.rs.Remove(inst)
		p.retired++
		p.InvokeHook(sim.HookCtx{Domain: p, Pos: HookPosInstRetire, Item: inst})
	}
	p.stateUpdate = p.stateUpdate[:0]
}

// broadcastResults grants up to CDBWidth bus slots in (completion, tag)
// order. A winner releases its functional unit, clears its producer-
// table entry if still owned, wakes dependents, and enters state
// update. Losers stay queued with their units still reserved.
func (p *Pipeline) broadcastResults() {
	for used := uint64(0); used < p.cfg.CDBWidth; used++ {
		inst := p.busWait.PopFront()
		if inst == nil {
			return
		}

		inst.WaitingBus = false
		inst.EnqueuedBus = false
		p.fus.Release(inst)
		p.regMap.ClearIfEqual(inst.Record.DestReg, inst.Tag)
		p.rs.Wakeup(inst.Tag)

		inst.StateCycle = p.cycle
		p.stateUpdate = append(p.stateUpdate, inst)
		p.InvokeHook(sim.HookCtx{Domain: p, Pos: HookPosInstBroadcast, Item: inst})
	}
}

// startExecutions moves last cycle's issue winners into functional
// units. The lookahead guarantees a unit of the right type is free.
func (p *Pipeline) startExecutions() {
	for _, inst := range p.latchSE.Drain() {
		p.fus.Start(inst, p.cycle)
	}
}

// insertIntoRS consumes the dispatch->schedule latch: each entry gets
// its source readiness from the producer table and claims the table
// slot for its destination. The entry may issue this same cycle.
func (p *Pipeline) insertIntoRS() {
	for _, inst := range p.latchDS.Drain() {
		inst.ScheduleCycle = p.cycle
		inst.ReadyCycle = p.cycle

		for src := 0; src < 2; src++ {
			tag, ready := p.regMap.Lookup(inst.Record.SrcReg[src])
			inst.SrcReady[src] = ready
			if !ready {
				inst.SrcTag[src] = tag
			}
		}

		p.regMap.Rename(inst.Record.DestReg, inst.Tag)
		p.rs.Insert(inst)
	}
}

// fillDispatchQueue drains the fetch->dispatch latch into the queue.
func (p *Pipeline) fillDispatchQueue() {
	for _, inst := range p.latchFD.Drain() {
		inst.DispatchCycle = p.cycle
		p.dispatchQ = append(p.dispatchQ, inst)
	}
}

// issueReady fires ready reservation-station entries in tag order, each
// reserved against the projected next-cycle unit availability of its
// type.
func (p *Pipeline) issueReady() {
	if p.rs.Len() == 0 {
		return
	}

	free := p.fus.ProjectedFree(p.cycle, p.cfg.CDBWidth)
	var reserved [latency.NumTypes]int

	for _, inst := range p.rs.InTagOrder() {
		if inst.Issued || p.cycle < inst.ReadyCycle || !inst.SrcsReady() {
			continue
		}
		if free[inst.Type]-reserved[inst.Type] <= 0 {
			continue
		}

		inst.Issued = true
		reserved[inst.Type]++
		p.issuedTotal++
		p.latchSE.Push(inst)
		p.InvokeHook(sim.HookCtx{Domain: p, Pos: HookPosInstIssue, Item: inst})
	}
}

// drainDispatchQueue moves instructions in program order into the
// dispatch->schedule latch, limited to the reservation-station slots
// still free after this cycle's earlier latch pushes.
func (p *Pipeline) drainDispatchQueue() {
	for len(p.dispatchQ) > 0 {
		if p.rs.Len()+p.latchDS.PendingNext() >= p.rs.Capacity() {
			return
		}
		inst := p.dispatchQ[0]
		p.dispatchQ = p.dispatchQ[1:]
		p.latchDS.Push(inst)
	}
}

// fetch reads up to FetchWidth records from the source, assigning tags
// in read order.
func (p *Pipeline) fetch() {
	if p.traceDone {
		return
	}

	for i := uint64(0); i < p.cfg.FetchWidth; i++ {
		var rec trace.Record
		if !p.src.Read(&rec) {
			p.traceDone = true
			return
		}

		inst := newInstruction(p.nextTag, rec, p.cycle)
		p.nextTag++
		p.store = append(p.store, inst)
		p.latchFD.Push(inst)
		p.InvokeHook(sim.HookCtx{Domain: p, Pos: HookPosInstFetch, Item: inst})
	}
}
