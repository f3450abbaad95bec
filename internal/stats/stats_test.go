package stats_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nikhi9603/cachesim/internal/cache"
	"github.com/nikhi9603/cachesim/internal/stats"
)

var _ = Describe("Aggregate", func() {
	Describe("L1 only", func() {
		It("derives the L1-only AAT and memory traffic formulas", func() {
			l1 := cache.Statistics{
				Reads: 3, Writes: 1,
				ReadMisses: 2, WriteMisses: 1,
				Writebacks: 1,
				HitTime:    0.5, Energy: 0.01, Area: 0.02,
			}

			raw, perf := stats.Aggregate(l1, nil, nil, 64)

			Expect(raw.L1VCMissRate).To(BeNumerically("~", 0.75, 1e-9))
			Expect(raw.TotalMemoryTraffic).To(Equal(uint64(4)))
			Expect(perf.AverageAccessTime).To(BeNumerically("~", 18.5, 1e-9))
			Expect(perf.AreaMetric).To(BeNumerically("~", 0.02, 1e-9))
			Expect(perf.EnergyDelayProduct).To(BeNumerically(">", 0))
		})
	})

	Describe("L1+VC", func() {
		It("adds the swap-rate term and counts the VC touched twice per swap in EDP", func() {
			l1 := cache.Statistics{
				Reads: 2, Writes: 1,
				ReadMisses: 1, WriteMisses: 1,
				SwapRequests: 1, Swaps: 1,
				HitTime: 0.5, Energy: 0.01, Area: 0.02,
			}
			vc := cache.Statistics{HitTime: 0.3, Energy: 0.02, Area: 0.01}

			raw, perf := stats.Aggregate(l1, &vc, nil, 64)

			Expect(raw.SwapRequestRate).To(BeNumerically("~", 1.0/3, 1e-9))
			Expect(perf.AreaMetric).To(BeNumerically("~", 0.03, 1e-9))
			Expect(perf.AverageAccessTime).To(BeNumerically(">", l1.HitTime))
		})
	})

	Describe("L2 present with no reads yet", func() {
		It("reports a zero miss rate instead of dividing by zero", func() {
			l1 := cache.Statistics{Reads: 1, ReadMisses: 1, HitTime: 0.5}
			l2 := cache.Statistics{HitTime: 2.0}

			raw, _ := stats.Aggregate(l1, nil, &l2, 64)

			Expect(raw.L2MissRate).To(Equal(0.0))
		})

		It("uses the L2-branch memory traffic formula once L2 exists", func() {
			l1 := cache.Statistics{Reads: 1, ReadMisses: 1}
			l2 := cache.Statistics{Reads: 1, ReadMisses: 1, Writebacks: 1}

			raw, _ := stats.Aggregate(l1, nil, &l2, 64)

			Expect(raw.TotalMemoryTraffic).To(Equal(uint64(2))) // l2ReadMisses+l2WriteMisses+l2Writebacks
		})
	})

	Describe("empty trace", func() {
		It("does not divide by zero when Na is zero", func() {
			raw, perf := stats.Aggregate(cache.Statistics{}, nil, nil, 64)

			Expect(raw.SwapRequestRate).To(Equal(0.0))
			Expect(raw.L1VCMissRate).To(Equal(0.0))
			Expect(perf.AverageAccessTime).To(Equal(0.0))
		})
	})
})
