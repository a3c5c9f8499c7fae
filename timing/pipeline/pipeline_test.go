package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/duckyzx/OoOcpusim/timing/pipeline"
	"github.com/duckyzx/OoOcpusim/trace"
)

// narrowConfig is the smallest legal machine: one unit of each type,
// single fetch, single bus.
func narrowConfig() pipeline.Config {
	return pipeline.Config{
		FetchWidth: 1,
		CDBWidth:   1,
		NumFU0:     1,
		NumFU1:     1,
		NumFU2:     1,
	}
}

func run(cfg pipeline.Config, records ...trace.Record) pipeline.Stats {
	p, err := pipeline.New(cfg, trace.NewSliceSource(records...))
	Expect(err).NotTo(HaveOccurred())
	return p.Run()
}

// fourIndependent is four type-0 instructions with disjoint registers.
func fourIndependent() []trace.Record {
	return []trace.Record{
		{OpCode: 0, DestReg: 1, SrcReg: [2]int{-1, -1}},
		{OpCode: 0, DestReg: 2, SrcReg: [2]int{-1, -1}},
		{OpCode: 0, DestReg: 3, SrcReg: [2]int{-1, -1}},
		{OpCode: 0, DestReg: 4, SrcReg: [2]int{-1, -1}},
	}
}

var _ = Describe("Pipeline", func() {
	Describe("New", func() {
		It("should reject an invalid configuration", func() {
			cfg := pipeline.Config{FetchWidth: 0, CDBWidth: 1, NumFU1: 1}
			_, err := pipeline.New(cfg, trace.NewSliceSource())
			Expect(err).To(HaveOccurred())
		})

		It("should normalize a zero CDB width", func() {
			cfg := narrowConfig()
			cfg.CDBWidth = 0
			p, err := pipeline.New(cfg, trace.NewSliceSource())
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Config().CDBWidth).To(Equal(uint64(1)))
		})
	})

	Describe("Empty trace", func() {
		It("should report all-zero statistics", func() {
			stats := run(narrowConfig())
			Expect(stats).To(Equal(pipeline.Stats{}))
		})
	})

	Describe("Single instruction with no sources and no destination", func() {
		It("should take five cycles end to end", func() {
			stats := run(narrowConfig(),
				trace.Record{OpCode: 0, DestReg: -1, SrcReg: [2]int{-1, -1}})

			Expect(stats.CycleCount).To(Equal(uint64(5)))
			Expect(stats.RetiredInstructions).To(Equal(uint64(1)))
		})

		It("should sample the dispatch queue once nonempty", func() {
			stats := run(narrowConfig(),
				trace.Record{OpCode: 0, DestReg: -1, SrcReg: [2]int{-1, -1}})

			Expect(stats.MaxDispSize).To(Equal(uint64(1)))
			Expect(stats.AvgDispSize).To(BeNumerically("~", 1.0/5.0, 1e-6))
		})
	})

	Describe("RAW dependency", func() {
		// The second instruction reads r1, written by the first; it can
		// only issue in the cycle its producer broadcasts.
		records := []trace.Record{
			{OpCode: 0, DestReg: 1, SrcReg: [2]int{-1, -1}},
			{OpCode: 0, DestReg: 2, SrcReg: [2]int{1, -1}},
		}

		It("should serialize the pair over seven cycles", func() {
			stats := run(narrowConfig(), records...)

			Expect(stats.CycleCount).To(Equal(uint64(7)))
			Expect(stats.RetiredInstructions).To(Equal(uint64(2)))
		})
	})

	Describe("Four independent instructions", func() {
		wideConfig := pipeline.Config{
			FetchWidth: 4,
			CDBWidth:   4,
			NumFU0:     4,
			NumFU1:     1,
			NumFU2:     1,
		}

		It("should fire all four together with a wide machine", func() {
			stats := run(wideConfig, fourIndependent()...)

			Expect(stats.RetiredInstructions).To(Equal(uint64(4)))
			Expect(stats.CycleCount).To(Equal(uint64(5)))
			Expect(stats.AvgInstFired).To(BeNumerically("~", 4.0/float64(stats.CycleCount), 1e-6))
		})

		It("should serialize broadcasts on a single bus", func() {
			narrowBus := wideConfig
			narrowBus.CDBWidth = 1

			wide := run(wideConfig, fourIndependent()...)
			narrow := run(narrowBus, fourIndependent()...)

			Expect(narrow.RetiredInstructions).To(Equal(uint64(4)))
			Expect(narrow.CycleCount).To(Equal(wide.CycleCount + 3))
		})
	})

	Describe("Counting invariants", func() {
		It("should never retire more than it issues or fetch fewer than it issues", func() {
			records := []trace.Record{
				{OpCode: 0, DestReg: 1, SrcReg: [2]int{-1, -1}},
				{OpCode: 1, DestReg: 2, SrcReg: [2]int{1, -1}},
				{OpCode: 2, DestReg: 3, SrcReg: [2]int{1, 2}},
				{OpCode: 0, DestReg: 1, SrcReg: [2]int{3, -1}},
				{OpCode: -1, DestReg: 2, SrcReg: [2]int{1, 1}},
			}

			p, err := pipeline.New(narrowConfig(), trace.NewSliceSource(records...))
			Expect(err).NotTo(HaveOccurred())

			for !p.Done() {
				p.Tick()
				snap := p.Progress()
				Expect(snap.Retired).To(BeNumerically("<=", snap.Issued))
				Expect(snap.Issued).To(BeNumerically("<=", snap.Fetched))
				Expect(snap.RSOccupancy).To(BeNumerically("<=", narrowConfig().RSCapacity()))
			}

			Expect(p.Progress().Retired).To(Equal(uint64(5)))
		})
	})

	Describe("Determinism", func() {
		It("should produce bit-identical statistics across runs", func() {
			records := []trace.Record{
				{OpCode: 0, DestReg: 1, SrcReg: [2]int{-1, -1}},
				{OpCode: 1, DestReg: 2, SrcReg: [2]int{1, -1}},
				{OpCode: 2, DestReg: 1, SrcReg: [2]int{2, 1}},
				{OpCode: 0, DestReg: 3, SrcReg: [2]int{1, 2}},
			}

			first := run(narrowConfig(), records...)
			second := run(narrowConfig(), records...)
			Expect(second).To(Equal(first))
		})
	})

	Describe("Monotonicity", func() {
		// Widening any resource must not slow the machine down.
		records := []trace.Record{
			{OpCode: 0, DestReg: 1, SrcReg: [2]int{-1, -1}},
			{OpCode: 0, DestReg: 2, SrcReg: [2]int{-1, -1}},
			{OpCode: 1, DestReg: 3, SrcReg: [2]int{1, 2}},
			{OpCode: 2, DestReg: 4, SrcReg: [2]int{-1, -1}},
			{OpCode: 0, DestReg: 5, SrcReg: [2]int{3, 4}},
			{OpCode: 1, DestReg: 6, SrcReg: [2]int{-1, -1}},
		}

		It("should not get slower with a wider bus", func() {
			base := run(narrowConfig(), records...)

			wider := narrowConfig()
			wider.CDBWidth = 4
			Expect(run(wider, records...).CycleCount).
				To(BeNumerically("<=", base.CycleCount))
		})

		It("should not get slower with wider fetch", func() {
			base := run(narrowConfig(), records...)

			wider := narrowConfig()
			wider.FetchWidth = 4
			Expect(run(wider, records...).CycleCount).
				To(BeNumerically("<=", base.CycleCount))
		})

		It("should not get slower with more functional units", func() {
			base := run(narrowConfig(), records...)

			wider := narrowConfig()
			wider.NumFU0 = 3
			wider.NumFU1 = 3
			wider.NumFU2 = 3
			Expect(run(wider, records...).CycleCount).
				To(BeNumerically("<=", base.CycleCount))
		})
	})

	Describe("Negative opcodes", func() {
		It("should execute them on type-1 units", func() {
			stats := run(narrowConfig(),
				trace.Record{OpCode: -1, DestReg: 1, SrcReg: [2]int{-1, -1}})

			Expect(stats.RetiredInstructions).To(Equal(uint64(1)))
			Expect(stats.CycleCount).To(Equal(uint64(5)))
		})
	})

	Describe("Out-of-range registers", func() {
		It("should treat them as none", func() {
			stats := run(narrowConfig(),
				trace.Record{OpCode: 0, DestReg: 500, SrcReg: [2]int{200, -7}},
				trace.Record{OpCode: 0, DestReg: 1, SrcReg: [2]int{500, -1}})

			// The second instruction must not wait on register 500: the
			// first one's out-of-range destination never claimed it.
			Expect(stats.RetiredInstructions).To(Equal(uint64(2)))
			Expect(stats.CycleCount).To(Equal(uint64(6)))
		})
	})

	Describe("Structural pressure", func() {
		It("should keep the dispatch queue bounded only by the trace", func() {
			// Sixteen independent type-0 ops against a single type-0
			// unit: the reservation station (capacity 6) backs traffic
			// up into the dispatch queue.
			var records []trace.Record
			for i := 0; i < 16; i++ {
				records = append(records,
					trace.Record{OpCode: 0, DestReg: i % 8, SrcReg: [2]int{-1, -1}})
			}

			cfg := narrowConfig()
			cfg.FetchWidth = 8
			stats := run(cfg, records...)

			Expect(stats.RetiredInstructions).To(Equal(uint64(16)))
			Expect(stats.MaxDispSize).To(BeNumerically(">", 0))
			Expect(stats.AvgDispSize).To(BeNumerically(">", 0))
		})
	})
})
