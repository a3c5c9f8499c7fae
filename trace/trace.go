// Package trace provides decoded-instruction records and trace sources
// for the processor timing model.
//
// A trace is a sequence of already-decoded instructions; the simulator
// only consumes opcodes and register indices, never operand values. The
// on-disk format is one instruction per line:
//
//	<address> <op_code> <dest_reg> <src_reg0> <src_reg1>
//
// with the address in hexadecimal and the remaining fields in decimal.
// Negative register indices mean "none".
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Record is a single decoded instruction as read from a trace.
type Record struct {
	// PC is the instruction address from the trace line. It is carried
	// for reporting only; timing never depends on it.
	PC uint64
	// OpCode selects the functional-unit type. Negative values are legal.
	OpCode int
	// DestReg is the destination register index, or negative for none.
	DestReg int
	// SrcReg holds the two source register indices; negative means the
	// operand does not exist and is trivially ready.
	SrcReg [2]int
}

// Source pulls decoded instructions one at a time.
// Read fills rec and returns true, or returns false at end of trace.
type Source interface {
	Read(rec *Record) bool
}

// FileReader reads records from a text trace file.
// It implements Source. A parse failure stops the trace early and is
// reported through Err.
type FileReader struct {
	f       *os.File
	scanner *bufio.Scanner
	line    int
	err     error
}

// Open opens a trace file for reading.
func Open(path string) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	return &FileReader{f: f, scanner: bufio.NewScanner(f)}, nil
}

// NewFileReader reads trace records from r. Used by tests and for
// piping traces through stdin.
func NewFileReader(r io.Reader) *FileReader {
	return &FileReader{scanner: bufio.NewScanner(r)}
}

// Read fills rec with the next instruction. It returns false at end of
// trace or on a malformed line; the two are distinguished by Err.
func (t *FileReader) Read(rec *Record) bool {
	if t.err != nil {
		return false
	}
	for t.scanner.Scan() {
		t.line++
		text := strings.TrimSpace(t.scanner.Text())
		if text == "" {
			continue
		}
		if err := parseLine(text, rec); err != nil {
			t.err = fmt.Errorf("trace line %d: %w", t.line, err)
			return false
		}
		return true
	}
	t.err = t.scanner.Err()
	return false
}

// Err returns the first error encountered while reading, or nil if the
// trace ended cleanly.
func (t *FileReader) Err() error {
	return t.err
}

// Close closes the underlying file, if any.
func (t *FileReader) Close() error {
	if t.f == nil {
		return nil
	}
	return t.f.Close()
}

func parseLine(text string, rec *Record) error {
	fields := strings.Fields(text)
	if len(fields) != 5 {
		return fmt.Errorf("expected 5 fields, got %d", len(fields))
	}

	pc, err := strconv.ParseUint(fields[0], 16, 64)
	if err != nil {
		return fmt.Errorf("bad address %q: %w", fields[0], err)
	}

	var vals [4]int
	for i, field := range fields[1:] {
		v, err := strconv.Atoi(field)
		if err != nil {
			return fmt.Errorf("bad field %q: %w", field, err)
		}
		vals[i] = v
	}

	rec.PC = pc
	rec.OpCode = vals[0]
	rec.DestReg = vals[1]
	rec.SrcReg[0] = vals[2]
	rec.SrcReg[1] = vals[3]
	return nil
}

// SliceSource serves records from an in-memory slice. Used by tests and
// programmatically generated workloads.
type SliceSource struct {
	records []Record
	next    int
}

// NewSliceSource returns a Source over the given records.
func NewSliceSource(records ...Record) *SliceSource {
	return &SliceSource{records: records}
}

// Read implements Source.
func (s *SliceSource) Read(rec *Record) bool {
	if s.next >= len(s.records) {
		return false
	}
	*rec = s.records[s.next]
	s.next++
	return true
}
