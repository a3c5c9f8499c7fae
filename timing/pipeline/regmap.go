package pipeline

// NumArchRegs is the architectural register count.
const NumArchRegs = 128

// RegMap is the register producer table. It maps each architectural
// register to the tag of its youngest in-flight writer, or to no
// producer when the value is ready directly from architectural state.
//
// Register indices outside [0, NumArchRegs) mean "none": renames are
// dropped and lookups report ready.
type RegMap struct {
	producer [NumArchRegs]int64
}

// NewRegMap returns a producer table with every register ready.
func NewRegMap() *RegMap {
	m := &RegMap{}
	m.Reset()
	return m
}

// Reset clears every mapping.
func (m *RegMap) Reset() {
	for i := range m.producer {
		m.producer[i] = noProducer
	}
}

// Rename records tag as the youngest in-flight writer of dest.
func (m *RegMap) Rename(dest int, tag uint64) {
	if dest < 0 || dest >= NumArchRegs {
		return
	}
	m.producer[dest] = int64(tag)
}

// Lookup returns the producer tag for src. ready is true when src has no
// outstanding writer or is not a real register.
func (m *RegMap) Lookup(src int) (tag int64, ready bool) {
	if src < 0 || src >= NumArchRegs {
		return noProducer, true
	}
	if m.producer[src] == noProducer {
		return noProducer, true
	}
	return m.producer[src], false
}

// ClearIfEqual removes the mapping for dest only if it still names tag.
// A younger writer may have overwritten the entry in the meantime.
func (m *RegMap) ClearIfEqual(dest int, tag uint64) {
	if dest < 0 || dest >= NumArchRegs {
		return
	}
	if m.producer[dest] == int64(tag) {
		m.producer[dest] = noProducer
	}
}
