// Package main provides the entry point for OoOcpusim.
// OoOcpusim is a cycle-accurate out-of-order superscalar pipeline
// timing simulator driven by decoded-instruction traces.
//
// For the full CLI, use: go run ./cmd/oooproc
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("OoOcpusim - Out-of-Order Pipeline Timing Simulator")
	fmt.Println("")
	fmt.Println("Usage: oooproc [options] <trace file>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -f         Fetch width (instructions per cycle)")
	fmt.Println("  -r         CDB width (result buses)")
	fmt.Println("  -k0/k1/k2  Functional unit counts per type")
	fmt.Println("  -config    Path to pipeline configuration JSON file")
	fmt.Println("  -v         Log per-instruction pipeline events")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/oooproc' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/oooproc' instead.")
	}
}
