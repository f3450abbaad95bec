// Package stats derives the raw and performance statistics spec.md §4.6
// defines from the per-level counters internal/cache accumulates during a
// run. It never feeds results back into the levels — Aggregate runs once,
// after the trace completes.
package stats

import "github.com/nikhi9603/cachesim/internal/cache"

// Raw mirrors the sixteen lettered lines of the "Simulation results (raw)"
// report section (spec.md §6), in the same a-through-p order.
type Raw struct {
	L1Reads            uint64  // a
	L1ReadMisses       uint64  // b
	L1Writes           uint64  // c
	L1WriteMisses      uint64  // d
	SwapRequests       uint64  // e
	SwapRequestRate    float64 // f
	Swaps              uint64  // g
	L1VCMissRate       float64 // h
	L1Writebacks       uint64  // i
	L2Reads            uint64  // j
	L2ReadMisses       uint64  // k
	L2Writes           uint64  // l
	L2WriteMisses      uint64  // m
	L2MissRate         float64 // n
	L2Writebacks       uint64  // o
	TotalMemoryTraffic uint64  // p
}

// Performance mirrors the three numbered lines of the "Simulation results
// (performance)" report section.
type Performance struct {
	AverageAccessTime  float64 // 1, nanoseconds
	EnergyDelayProduct float64 // 2
	AreaMetric         float64 // 3, mm^2
}

// memoryTransferEnergy and memoryTransferTime are the per-transfer constants
// spec.md §4.6's EDP paragraph names for the memory level, which has no
// cache.Statistics of its own.
const (
	memoryTransferEnergy = 0.05 // nJ
	memoryTransferTime   = 20.0 // ns, also the base term of missPenalty
)

// Aggregate computes Raw and Performance from the three levels a run may
// have populated. vc and l2 are nil when disabled/absent. blockSize is L1's
// block size in bytes, used for missPenalty = 20 + blockSize/16.
func Aggregate(l1 cache.Statistics, vc, l2 *cache.Statistics, blockSize int) (Raw, Performance) {
	na := float64(l1.Reads + l1.Writes)

	var raw Raw
	raw.L1Reads = l1.Reads
	raw.L1ReadMisses = l1.ReadMisses
	raw.L1Writes = l1.Writes
	raw.L1WriteMisses = l1.WriteMisses
	raw.SwapRequests = l1.SwapRequests
	raw.Swaps = l1.Swaps
	raw.L1Writebacks = l1.Writebacks

	if na > 0 {
		raw.SwapRequestRate = float64(l1.SwapRequests) / na
		raw.L1VCMissRate = float64(l1.ReadMisses+l1.WriteMisses-l1.Swaps) / na
	}

	if l2 != nil {
		raw.L2Reads = l2.Reads
		raw.L2ReadMisses = l2.ReadMisses
		raw.L2Writes = l2.Writes
		raw.L2WriteMisses = l2.WriteMisses
		raw.L2Writebacks = l2.Writebacks

		if l2.Reads > 0 {
			raw.L2MissRate = float64(l2.ReadMisses) / float64(l2.Reads)
		}

		raw.TotalMemoryTraffic = l2.ReadMisses + l2.WriteMisses + l2.Writebacks
	} else {
		raw.TotalMemoryTraffic = l1.ReadMisses + l1.WriteMisses - l1.Swaps + l1.Writebacks
	}

	missPenalty := memoryTransferTime + float64(blockSize)/16

	var perf Performance
	perf.AverageAccessTime = averageAccessTime(l1, vc, l2, raw, missPenalty)
	perf.EnergyDelayProduct = energyDelayProduct(l1, vc, l2, raw, na, perf.AverageAccessTime)
	perf.AreaMetric = l1.Area
	if vc != nil {
		perf.AreaMetric += vc.Area
	}
	if l2 != nil {
		perf.AreaMetric += l2.Area
	}

	return raw, perf
}

func averageAccessTime(l1 cache.Statistics, vc, l2 *cache.Statistics, raw Raw, missPenalty float64) float64 {
	switch {
	case vc != nil && l2 != nil:
		return l1.HitTime + raw.SwapRequestRate*vc.HitTime + raw.L1VCMissRate*(l2.HitTime+raw.L2MissRate*missPenalty)
	case vc != nil:
		return l1.HitTime + raw.SwapRequestRate*vc.HitTime + raw.L1VCMissRate*missPenalty
	case l2 != nil:
		return l1.HitTime + raw.L1VCMissRate*(l2.HitTime+raw.L2MissRate*missPenalty)
	default:
		return l1.HitTime + raw.L1VCMissRate*missPenalty
	}
}

func energyDelayProduct(l1 cache.Statistics, vc, l2 *cache.Statistics, raw Raw, na, aat float64) float64 {
	energy := l1.Energy*float64(l1.Reads+l1.Writes) + l1.Energy*float64(l1.ReadMisses+l1.WriteMisses)

	if vc != nil {
		energy += vc.Energy * float64(2*raw.SwapRequests)
	}

	if l2 != nil {
		energy += l2.Energy*float64(l2.Reads+l2.Writes) + l2.Energy*float64(l2.ReadMisses+l2.WriteMisses)
	}

	energy += memoryTransferEnergy * float64(raw.TotalMemoryTraffic)

	return energy * (aat * na)
}
