package pipeline_test

import (
	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/duckyzx/OoOcpusim/timing/pipeline"
	"github.com/duckyzx/OoOcpusim/trace"
)

var _ = Describe("Pipeline driver", func() {
	var (
		ctrl *gomock.Controller
		src  *trace.MockSource
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		src = trace.NewMockSource(ctrl)
	})

	It("should pull from the source once per cycle until EOF", func() {
		records := []trace.Record{
			{OpCode: 0, DestReg: 1, SrcReg: [2]int{-1, -1}},
			{OpCode: 0, DestReg: 2, SrcReg: [2]int{-1, -1}},
		}
		next := 0
		src.EXPECT().
			Read(gomock.Any()).
			DoAndReturn(func(rec *trace.Record) bool {
				if next >= len(records) {
					return false
				}
				*rec = records[next]
				next++
				return true
			}).
			Times(len(records) + 1)

		p, err := pipeline.New(narrowConfig(), src)
		Expect(err).NotTo(HaveOccurred())

		stats := p.Run()
		Expect(stats.RetiredInstructions).To(Equal(uint64(2)))
	})

	It("should stop fetching after the first EOF", func() {
		src.EXPECT().Read(gomock.Any()).Return(false).Times(1)

		p, err := pipeline.New(narrowConfig(), src)
		Expect(err).NotTo(HaveOccurred())

		stats := p.Run()
		Expect(stats).To(Equal(pipeline.Stats{}))
	})
})

// stageRecorder collects hook firings with the cycle they happened in.
type stageRecorder struct {
	pipe   *pipeline.Pipeline
	events map[*sim.HookPos][]uint64 // position -> tags
	cycles map[*sim.HookPos][]uint64 // position -> cycles
}

func newStageRecorder(p *pipeline.Pipeline) *stageRecorder {
	return &stageRecorder{
		pipe:   p,
		events: make(map[*sim.HookPos][]uint64),
		cycles: make(map[*sim.HookPos][]uint64),
	}
}

func (r *stageRecorder) Func(ctx sim.HookCtx) {
	inst := ctx.Item.(*pipeline.Instruction)
	r.events[ctx.Pos] = append(r.events[ctx.Pos], inst.Tag)
	r.cycles[ctx.Pos] = append(r.cycles[ctx.Pos], r.pipe.Cycle())
}

var _ = Describe("Pipeline hooks", func() {
	It("should fire fetch, issue, broadcast, and retire for each instruction", func() {
		p, err := pipeline.New(narrowConfig(), trace.NewSliceSource(
			trace.Record{OpCode: 0, DestReg: -1, SrcReg: [2]int{-1, -1}},
		))
		Expect(err).NotTo(HaveOccurred())

		rec := newStageRecorder(p)
		p.AttachHook(rec)

		p.Run()

		Expect(rec.events[pipeline.HookPosInstFetch]).To(Equal([]uint64{1}))
		Expect(rec.events[pipeline.HookPosInstIssue]).To(Equal([]uint64{1}))
		Expect(rec.events[pipeline.HookPosInstBroadcast]).To(Equal([]uint64{1}))
		Expect(rec.events[pipeline.HookPosInstRetire]).To(Equal([]uint64{1}))

		Expect(rec.cycles[pipeline.HookPosInstFetch]).To(Equal([]uint64{1}))
		Expect(rec.cycles[pipeline.HookPosInstIssue]).To(Equal([]uint64{3}))
		Expect(rec.cycles[pipeline.HookPosInstBroadcast]).To(Equal([]uint64{5}))
		Expect(rec.cycles[pipeline.HookPosInstRetire]).To(Equal([]uint64{6}))
	})

	It("should retire exactly one cycle after broadcast", func() {
		p, err := pipeline.New(narrowConfig(), trace.NewSliceSource(
			trace.Record{OpCode: 0, DestReg: 1, SrcReg: [2]int{-1, -1}},
			trace.Record{OpCode: 1, DestReg: 2, SrcReg: [2]int{1, -1}},
			trace.Record{OpCode: 2, DestReg: 3, SrcReg: [2]int{2, -1}},
		))
		Expect(err).NotTo(HaveOccurred())

		rec := newStageRecorder(p)
		p.AttachHook(rec)

		p.Run()

		broadcasts := rec.cycles[pipeline.HookPosInstBroadcast]
		retires := rec.cycles[pipeline.HookPosInstRetire]
		Expect(retires).To(HaveLen(len(broadcasts)))
		for i := range broadcasts {
			Expect(retires[i]).To(Equal(broadcasts[i]+1),
				"state update lasts one cycle")
		}
	})

	It("should stamp the stage-entry cycles on the record", func() {
		p, err := pipeline.New(narrowConfig(), trace.NewSliceSource(
			trace.Record{OpCode: 0, DestReg: -1, SrcReg: [2]int{-1, -1}},
		))
		Expect(err).NotTo(HaveOccurred())

		var got *pipeline.Instruction
		rec := newStageRecorder(p)
		p.AttachHook(rec)
		p.AttachHook(hookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos == pipeline.HookPosInstRetire {
				got = ctx.Item.(*pipeline.Instruction)
			}
		}))

		p.Run()

		Expect(got).NotTo(BeNil())
		Expect(got.FetchCycle).To(Equal(uint64(1)))
		Expect(got.DispatchCycle).To(Equal(uint64(2)))
		Expect(got.ScheduleCycle).To(Equal(uint64(3)))
		Expect(got.ExecuteCycle).To(Equal(uint64(4)))
		Expect(got.CompletionCycle).To(Equal(uint64(5)))
		Expect(got.StateCycle).To(Equal(uint64(5)))
	})
})

// hookFunc adapts a function to the sim.Hook interface.
type hookFunc func(ctx sim.HookCtx)

func (f hookFunc) Func(ctx sim.HookCtx) {
	f(ctx)
}
