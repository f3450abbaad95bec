// Package report renders the stdout output spec.md §6 describes: a
// configuration echo, cache-contents dumps, and the raw/performance
// statistics sections. It writes directly against an io.Writer with plain
// fmt.Fprintf calls in the style of the original RawStatistics::printStats
// and PerformanceStatistics::printStats (labelled lines, fixed four-decimal
// precision) — nothing in the reference corpus reaches for text/tabwriter
// or a templating package for this, so neither does this package.
package report

import (
	"fmt"
	"io"

	"github.com/nikhi9603/cachesim/internal/cache"
	"github.com/nikhi9603/cachesim/internal/stats"
)

// Config echoes the simulator's command-line geometry back to the user
// before any results, in the order spec.md §6 item 1 lists them.
type Config struct {
	L1Size      int
	L1Assoc     int
	L1BlockSize int
	VCNumBlocks int
	L2Size      int
	L2Assoc     int
	TraceFile   string
}

// WriteConfig prints the configuration echo.
func WriteConfig(w io.Writer, c Config) {
	fmt.Fprintf(w, "L1_SIZE:\t\t%d\n", c.L1Size)
	fmt.Fprintf(w, "L1_ASSOC:\t\t%d\n", c.L1Assoc)
	fmt.Fprintf(w, "L1_BLOCKSIZE:\t\t%d\n", c.L1BlockSize)
	fmt.Fprintf(w, "VC_NUM_BLOCKS:\t\t%d\n", c.VCNumBlocks)
	fmt.Fprintf(w, "L2_SIZE:\t\t%d\n", c.L2Size)
	fmt.Fprintf(w, "L2_ASSOC:\t\t%d\n", c.L2Assoc)
	fmt.Fprintf(w, "TRACE_FILE:\t\t%s\n", c.TraceFile)
}

// WriteCacheContents prints one "===== <name> contents =====" section
// listing every set MRU→LRU, one line per set: "set i: tag[ D]  tag[ D] ...".
// Invalid blocks are omitted from a set's line entirely (spec.md §6 item 2
// only defines the format for occupied slots).
func WriteCacheContents(w io.Writer, name string, l *cache.Level) {
	fmt.Fprintf(w, "===== %s contents =====\n", name)

	for i := range l.Sets {
		fmt.Fprintf(w, "set %d:", i)

		for _, idx := range mruOrder(l, i) {
			b := l.GetBlock(i, idx)

			if b.Dirty {
				fmt.Fprintf(w, "  %x D", b.Tag)
			} else {
				fmt.Fprintf(w, "  %x", b.Tag)
			}
		}

		fmt.Fprintln(w)
	}
}

// mruOrder returns the indices of set i's valid blocks sorted MRU-first.
func mruOrder(l *cache.Level, set int) []int {
	var order []int

	for idx := 0; idx < len(l.Sets[set].Blocks); idx++ {
		if l.GetBlock(set, idx).Valid {
			order = append(order, idx)
		}
	}

	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && l.GetBlock(set, order[j]).LRU < l.GetBlock(set, order[j-1]).LRU; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	return order
}

// WriteRaw prints the sixteen lettered "Simulation results (raw)" lines,
// labels and layout matching the original RawStatistics::printStats.
func WriteRaw(w io.Writer, r stats.Raw) {
	fmt.Fprintln(w, "===== Simulation results (raw) =====")
	fmt.Fprintf(w, "  a. number of L1 reads:\t\t%d\n", r.L1Reads)
	fmt.Fprintf(w, "  b. number of L1 read misses:\t\t%d\n", r.L1ReadMisses)
	fmt.Fprintf(w, "  c. number of L1 writes:\t\t%d\n", r.L1Writes)
	fmt.Fprintf(w, "  d. number of L1 write misses:\t\t%d\n", r.L1WriteMisses)
	fmt.Fprintf(w, "  e. number of swap requests:\t\t%d\n", r.SwapRequests)
	fmt.Fprintf(w, "  f. swap request rate:\t\t%.4f\n", r.SwapRequestRate)
	fmt.Fprintf(w, "  g. number of swaps:\t\t%d\n", r.Swaps)
	fmt.Fprintf(w, "  h. combined L1+VC miss rate:\t\t%.4f\n", r.L1VCMissRate)
	fmt.Fprintf(w, "  i. number writebacks from L1/VC:\t\t%d\n", r.L1Writebacks)
	fmt.Fprintf(w, "  j. number of L2 reads:\t\t%d\n", r.L2Reads)
	fmt.Fprintf(w, "  k. number of L2 read misses:\t\t%d\n", r.L2ReadMisses)
	fmt.Fprintf(w, "  l. number of L2 writes:\t\t%d\n", r.L2Writes)
	fmt.Fprintf(w, "  m. number of L2 write misses:\t\t%d\n", r.L2WriteMisses)
	fmt.Fprintf(w, "  n. L2 miss rate:\t\t%.4f\n", r.L2MissRate)
	fmt.Fprintf(w, "  o. number of writebacks from L2:\t\t%d\n", r.L2Writebacks)
	fmt.Fprintf(w, "  p. total memory traffic:\t\t%d\n", r.TotalMemoryTraffic)
}

// WritePerformance prints the three numbered "Simulation results
// (performance)" lines.
func WritePerformance(w io.Writer, p stats.Performance) {
	fmt.Fprintln(w, "===== Simulation results (performance) =====")
	fmt.Fprintf(w, "  1. average access time:\t\t%.4f\n", p.AverageAccessTime)
	fmt.Fprintf(w, "  2. energy-delay product:\t\t%.4f\n", p.EnergyDelayProduct)
	fmt.Fprintf(w, "  3. total area:\t\t%.4f\n", p.AreaMetric)
}
