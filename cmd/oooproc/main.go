// Package main provides the oooproc command line interface.
// oooproc replays a decoded-instruction trace through the out-of-order
// pipeline model and reports timing statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/duckyzx/OoOcpusim/monitor"
	"github.com/duckyzx/OoOcpusim/timing/latency"
	"github.com/duckyzx/OoOcpusim/timing/pipeline"
	"github.com/duckyzx/OoOcpusim/trace"
)

var (
	fetchWidth  = flag.Uint64("f", pipeline.DefaultConfig().FetchWidth, "Fetch width (instructions per cycle)")
	cdbWidth    = flag.Uint64("r", pipeline.DefaultConfig().CDBWidth, "CDB width (result buses); 0 is treated as 1")
	numFU0      = flag.Uint64("k0", pipeline.DefaultConfig().NumFU0, "Number of type-0 functional units")
	numFU1      = flag.Uint64("k1", pipeline.DefaultConfig().NumFU1, "Number of type-1 functional units")
	numFU2      = flag.Uint64("k2", pipeline.DefaultConfig().NumFU2, "Number of type-2 functional units")
	configPath  = flag.String("config", "", "Path to pipeline configuration JSON file")
	latencyPath = flag.String("latency", "", "Path to execution latency JSON file")
	reportPath  = flag.String("report", "", "Write a JSON report to this path on exit")
	monitorAddr = flag.String("monitor", "", "Serve live stats over HTTP on this address")
	verbose     = flag.Bool("v", false, "Log per-instruction pipeline events")
)

// report is the JSON document written by -report.
type report struct {
	RunID  string          `json:"run_id"`
	Trace  string          `json:"trace"`
	Config pipeline.Config `json:"config"`
	Stats  pipeline.Stats  `json:"stats"`
}

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: oooproc [options] <trace file>\n")
		fmt.Fprintf(os.Stderr, "\nUse \"-\" to read the trace from stdin.\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	tracePath := flag.Arg(0)
	reader, err := openTrace(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening trace: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = reader.Close() }()

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	opts, err := buildOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading latency config: %v\n", err)
		os.Exit(1)
	}

	pipe, err := pipeline.New(cfg, reader, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		pipe.AttachHook(newStageLogger(pipe))
	}

	if *monitorAddr != "" {
		mon := monitor.New(pipe, *monitorAddr)
		mon.Start()
		fmt.Fprintf(os.Stderr, "Monitoring on http://%s/api/stats (run %s)\n",
			*monitorAddr, mon.RunID())
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = mon.Shutdown(ctx)
		}()
	}

	stats := pipe.Run()

	if err := reader.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading trace: %v\n", err)
		os.Exit(1)
	}

	printStats(pipe.Config(), stats)

	if *reportPath != "" {
		rep := report{
			RunID:  xid.New().String(),
			Trace:  tracePath,
			Config: pipe.Config(),
			Stats:  stats,
		}
		atexit.Register(func() { writeReport(*reportPath, rep) })
	}

	atexit.Exit(0)
}

func openTrace(path string) (*trace.FileReader, error) {
	if path == "-" {
		return trace.NewFileReader(os.Stdin), nil
	}
	return trace.Open(path)
}

// buildConfig starts from defaults or the -config file and applies any
// explicitly set width flags on top.
func buildConfig() (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	if *configPath != "" {
		loaded, err := pipeline.LoadConfig(*configPath)
		if err != nil {
			return pipeline.Config{}, err
		}
		cfg = loaded
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "f":
			cfg.FetchWidth = *fetchWidth
		case "r":
			cfg.CDBWidth = *cdbWidth
		case "k0":
			cfg.NumFU0 = *numFU0
		case "k1":
			cfg.NumFU1 = *numFU1
		case "k2":
			cfg.NumFU2 = *numFU2
		}
	})

	return cfg, nil
}

func buildOptions() ([]pipeline.Option, error) {
	if *latencyPath == "" {
		return nil, nil
	}
	timingConfig, err := latency.LoadConfig(*latencyPath)
	if err != nil {
		return nil, err
	}
	if err := timingConfig.Validate(); err != nil {
		return nil, err
	}
	return []pipeline.Option{
		pipeline.WithLatencyTable(latency.NewTableWithConfig(timingConfig)),
	}, nil
}

func printStats(cfg pipeline.Config, stats pipeline.Stats) {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("Processor settings:")
	fmt.Printf("Fetch width (F):                %d\n", cfg.FetchWidth)
	fmt.Printf("CDB width (R):                  %d\n", cfg.CDBWidth)
	fmt.Printf("FUs (K0/K1/K2):                 %d/%d/%d\n", cfg.NumFU0, cfg.NumFU1, cfg.NumFU2)
	fmt.Println()

	header.Println("Processor stats:")
	fmt.Printf("Total instructions retired:     %d\n", stats.RetiredInstructions)
	fmt.Printf("Avg dispatch queue size:        %.6f\n", stats.AvgDispSize)
	fmt.Printf("Maximum dispatch queue size:    %d\n", stats.MaxDispSize)
	fmt.Printf("Avg inst fired per cycle:       %.6f\n", stats.AvgInstFired)
	fmt.Printf("Avg inst retired per cycle:     %.6f\n", stats.AvgInstRetired)
	fmt.Printf("Total run time (cycles):        %d\n", stats.CycleCount)
}

func writeReport(path string, rep report) {
	if err := saveReport(path, rep); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
	}
}
