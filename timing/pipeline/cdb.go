package pipeline

import (
	"github.com/google/btree"
)

// busLess orders bus-wait entries for arbitration: oldest completion
// first, ties broken by smaller tag.
func busLess(a, b *Instruction) bool {
	if a.CompletionCycle != b.CompletionCycle {
		return a.CompletionCycle < b.CompletionCycle
	}
	return a.Tag < b.Tag
}

// BusQueue holds completed instructions waiting for a common data bus
// slot, kept in arbitration order.
type BusQueue struct {
	tree *btree.BTreeG[*Instruction]
}

// NewBusQueue returns an empty arbitration queue.
func NewBusQueue() *BusQueue {
	return &BusQueue{tree: btree.NewG(2, busLess)}
}

// Enqueue adds a completed instruction. The caller guards against
// double insertion with the instruction's EnqueuedBus flag.
func (q *BusQueue) Enqueue(inst *Instruction) {
	q.tree.ReplaceOrInsert(inst)
}

// PopFront removes and returns the next instruction in arbitration
// order, or nil when the queue is empty.
func (q *BusQueue) PopFront() *Instruction {
	inst, ok := q.tree.DeleteMin()
	if !ok {
		return nil
	}
	return inst
}

// Len returns the number of waiting instructions.
func (q *BusQueue) Len() int {
	return q.tree.Len()
}

// Each visits the waiting instructions in arbitration order.
func (q *BusQueue) Each(fn func(inst *Instruction) bool) {
	q.tree.Ascend(fn)
}
