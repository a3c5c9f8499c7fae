package pipeline

import "sort"

// Station is the unified reservation station: an unordered, bounded set
// of in-flight instructions from insert (dispatch→schedule) to removal
// at retirement.
type Station struct {
	entries  []*Instruction
	capacity int
}

// NewStation returns a station bounded to capacity entries.
func NewStation(capacity int) *Station {
	return &Station{capacity: capacity}
}

// Capacity returns the entry bound, 2*(K0+K1+K2).
func (s *Station) Capacity() int {
	return s.capacity
}

// Len returns the current entry count.
func (s *Station) Len() int {
	return len(s.entries)
}

// Insert adds an entry. Dispatch only drains as many instructions as
// there is room for, so inserting never exceeds capacity.
func (s *Station) Insert(inst *Instruction) {
	s.entries = append(s.entries, inst)
}

// Remove deletes an entry at retirement.
func (s *Station) Remove(inst *Instruction) {
	for i, e := range s.entries {
		if e == inst {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// Wakeup marks ready every unready source waiting on the broadcast tag.
func (s *Station) Wakeup(tag uint64) {
	for _, e := range s.entries {
		for src := 0; src < 2; src++ {
			if !e.SrcReady[src] && e.SrcTag[src] == int64(tag) {
				e.SrcReady[src] = true
				e.SrcTag[src] = noProducer
			}
		}
	}
}

// Entries returns the live entry slice. Callers must not reorder it.
func (s *Station) Entries() []*Instruction {
	return s.entries
}

// InTagOrder returns a copy of the entries sorted by ascending tag, the
// order issue considers candidates in.
func (s *Station) InTagOrder() []*Instruction {
	ordered := make([]*Instruction, len(s.entries))
	copy(ordered, s.entries)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Tag < ordered[j].Tag
	})
	return ordered
}
