package main

import (
	"log"
	"os"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/duckyzx/OoOcpusim/timing/pipeline"
)

// stageLogger prints per-instruction pipeline events in verbose mode.
type stageLogger struct {
	pipe *pipeline.Pipeline
	log  *log.Logger
}

func newStageLogger(pipe *pipeline.Pipeline) *stageLogger {
	return &stageLogger{
		pipe: pipe,
		log:  log.New(os.Stderr, "", 0),
	}
}

// Func implements sim.Hook.
func (l *stageLogger) Func(ctx sim.HookCtx) {
	inst, ok := ctx.Item.(*pipeline.Instruction)
	if !ok {
		return
	}

	switch ctx.Pos {
	case pipeline.HookPosInstFetch:
		l.log.Printf("cycle %d: fetch    tag %d (op %d, type %d)",
			l.pipe.Cycle(), inst.Tag, inst.Record.OpCode, inst.Type)
	case pipeline.HookPosInstIssue:
		l.log.Printf("cycle %d: issue    tag %d", l.pipe.Cycle(), inst.Tag)
	case pipeline.HookPosInstBroadcast:
		l.log.Printf("cycle %d: cdb      tag %d (completed %d)",
			l.pipe.Cycle(), inst.Tag, inst.CompletionCycle)
	case pipeline.HookPosInstRetire:
		l.log.Printf("cycle %d: retire   tag %d (fetch %d disp %d sched %d exec %d state %d)",
			l.pipe.Cycle(), inst.Tag, inst.FetchCycle, inst.DispatchCycle,
			inst.ScheduleCycle, inst.ExecuteCycle, inst.StateCycle)
	}
}
