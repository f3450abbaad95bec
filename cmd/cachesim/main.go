// cachesim replays an address-reference trace through a simulated L1 cache
// (with an optional victim cache) and an optional L2, then reports raw
// event counters and a derived performance model.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/nikhi9603/cachesim/internal/cache"
	"github.com/nikhi9603/cachesim/internal/cacti"
	"github.com/nikhi9603/cachesim/internal/hierarchy"
	"github.com/nikhi9603/cachesim/internal/report"
	"github.com/nikhi9603/cachesim/internal/stats"
	"github.com/nikhi9603/cachesim/internal/trace"
)

var cactiModelPath = flag.String("cacti-model", "", "Path to a JSON cacti model file overriding the built-in geometry table")

func main() {
	flag.Parse()

	if flag.NArg() != 7 {
		fmt.Fprintf(os.Stderr, "Usage: cachesim [options] L1_SIZE L1_ASSOC L1_BLOCKSIZE VC_NUM_BLOCKS L2_SIZE L2_ASSOC TRACE_FILE\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	os.Exit(run(flag.Args(), *cactiModelPath, os.Stdout))
}

func run(args []string, cactiModelPath string, out io.Writer) int {
	cfg, err := parseConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cachesim: %v\n", err)
		return 1
	}

	model := cacti.DefaultModel()
	if cactiModelPath != "" {
		model, err = cacti.LoadModelFile(cactiModelPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cachesim: %v\n", err)
			return 1
		}
	}

	l1, vc, l2, err := buildLevels(cfg, model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cachesim: %v\n", err)
		return 1
	}

	traceFile, err := os.Open(cfg.TraceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cachesim: failed to open trace file %q: %v\n", cfg.TraceFile, err)
		return 1
	}
	defer traceFile.Close()

	records, err := trace.Parse(traceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cachesim: trace file %s: %v\n", cfg.TraceFile, err)
		return 1
	}

	h := hierarchy.New(l1, l2)
	for _, rec := range records {
		switch rec.Op {
		case trace.Read:
			h.ReadRequest(rec.Address)
		case trace.Write:
			h.WriteRequest(rec.Address)
		}
	}

	writeReport(out, cfg, l1, vc, l2)

	return 0
}

// config holds the seven CLI parameters, parsed and range-checked.
type config struct {
	L1Size, L1Assoc, L1BlockSize int
	VCNumBlocks                  int
	L2Size, L2Assoc              int
	TraceFile                    string
}

func parseConfig(args []string) (config, error) {
	ints := make([]int, 6)
	for i, name := range []string{"L1_SIZE", "L1_ASSOC", "L1_BLOCKSIZE", "VC_NUM_BLOCKS", "L2_SIZE", "L2_ASSOC"} {
		n, err := strconv.Atoi(args[i])
		if err != nil || n < 0 {
			return config{}, fmt.Errorf("%s must be a non-negative integer, got %q", name, args[i])
		}
		ints[i] = n
	}

	return config{
		L1Size: ints[0], L1Assoc: ints[1], L1BlockSize: ints[2],
		VCNumBlocks: ints[3],
		L2Size:      ints[4], L2Assoc: ints[5],
		TraceFile: args[6],
	}, nil
}

// buildLevels constructs L1 (always), VC (if cfg.VCNumBlocks > 0), and L2
// (if cfg.L2Size > 0), wiring the VC to L1 and populating every level's
// HitTime/Energy/Area from the cacti oracle per its fallback policy
// (spec.md §4.6, §7 Model unavailability).
func buildLevels(cfg config, model *cacti.Model) (l1, vc, l2 *cache.Level, err error) {
	if cfg.L1Assoc <= 0 || cfg.L1BlockSize <= 0 {
		return nil, nil, nil, fmt.Errorf("L1: associativity and block size must be positive")
	}

	l1, err = cache.New(cache.Config{Size: cfg.L1Size, Assoc: cfg.L1Assoc, BlockSize: cfg.L1BlockSize}, cfg.L1Size/(cfg.L1Assoc*cfg.L1BlockSize))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("L1: %w", err)
	}
	applyEstimate(l1, model, cfg.L1Size, cfg.L1BlockSize, cfg.L1Assoc)

	if cfg.VCNumBlocks > 0 {
		vc, err = cache.NewVictimCache(cfg.VCNumBlocks, cfg.L1BlockSize)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("VC: %w", err)
		}
		applyEstimate(vc, model, cfg.VCNumBlocks*cfg.L1BlockSize, cfg.L1BlockSize, cfg.VCNumBlocks)
		l1.VC = vc
	}

	if cfg.L2Size > 0 {
		if cfg.L2Assoc <= 0 {
			return nil, nil, nil, fmt.Errorf("L2: associativity must be positive when L2_SIZE > 0")
		}

		l2, err = cache.New(cache.Config{Size: cfg.L2Size, Assoc: cfg.L2Assoc, BlockSize: cfg.L1BlockSize}, cfg.L2Size/(cfg.L2Assoc*cfg.L1BlockSize))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("L2: %w", err)
		}
		applyEstimate(l2, model, cfg.L2Size, cfg.L1BlockSize, cfg.L2Assoc)
	}

	return l1, vc, l2, nil
}

func applyEstimate(l *cache.Level, model *cacti.Model, size, blockSize, assoc int) {
	est, _ := model.Lookup(size, blockSize, assoc)
	l.Stats.HitTime = est.HitTime
	l.Stats.Energy = est.Energy
	l.Stats.Area = est.Area
}

func writeReport(out io.Writer, cfg config, l1, vc, l2 *cache.Level) {
	report.WriteConfig(out, report.Config{
		L1Size: cfg.L1Size, L1Assoc: cfg.L1Assoc, L1BlockSize: cfg.L1BlockSize,
		VCNumBlocks: cfg.VCNumBlocks, L2Size: cfg.L2Size, L2Assoc: cfg.L2Assoc,
		TraceFile: cfg.TraceFile,
	})

	report.WriteCacheContents(out, "L1", l1)
	if vc != nil {
		report.WriteCacheContents(out, "VC", vc)
	}
	if l2 != nil {
		report.WriteCacheContents(out, "L2", l2)
	}

	var vcStats, l2Stats *cache.Statistics
	if vc != nil {
		vcStats = &vc.Stats
	}
	if l2 != nil {
		l2Stats = &l2.Stats
	}

	raw, perf := stats.Aggregate(l1.Stats, vcStats, l2Stats, cfg.L1BlockSize)
	report.WriteRaw(out, raw)
	report.WritePerformance(out, perf)
}
