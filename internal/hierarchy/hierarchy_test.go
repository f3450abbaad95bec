package hierarchy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nikhi9603/cachesim/internal/cache"
	"github.com/nikhi9603/cachesim/internal/hierarchy"
)

// newL1 builds the 1KiB/assoc=1/64B-block L1 the end-to-end scenarios in
// spec.md §8 assume unless noted otherwise: 16 sets.
func newL1() *cache.Level {
	lvl, err := cache.New(cache.Config{Size: 1024, Assoc: 1, BlockSize: 64}, 16)
	Expect(err).NotTo(HaveOccurred())

	return lvl
}

var _ = Describe("Hierarchy end-to-end scenarios", func() {
	Describe("scenario 1: cold read miss, no VC, no L2", func() {
		It("counts a single read miss and no writebacks", func() {
			l1 := newL1()
			h := hierarchy.New(l1, nil)

			h.ReadRequest(0x1000)

			Expect(l1.Stats.Reads).To(Equal(uint64(1)))
			Expect(l1.Stats.ReadMisses).To(Equal(uint64(1)))
			Expect(l1.Stats.Writebacks).To(Equal(uint64(0)))
		})
	})

	Describe("scenario 2: repeated read hits after the first miss", func() {
		It("counts one miss across two reads", func() {
			l1 := newL1()
			h := hierarchy.New(l1, nil)

			h.ReadRequest(0x1000)
			h.ReadRequest(0x1000)

			Expect(l1.Stats.Reads).To(Equal(uint64(2)))
			Expect(l1.Stats.ReadMisses).To(Equal(uint64(1)))
		})
	})

	Describe("scenario 3: same-set write then read forces a dirty eviction", func() {
		It("writes back the evicted dirty block with no VC", func() {
			l1 := newL1()
			h := hierarchy.New(l1, nil)

			h.WriteRequest(0x1000) // set 0, tag 4
			h.ReadRequest(0x2000)  // set 0, tag 8: evicts the dirty 0x1000 block

			Expect(l1.Stats.Writes).To(Equal(uint64(1)))
			Expect(l1.Stats.WriteMisses).To(Equal(uint64(1)))
			Expect(l1.Stats.Reads).To(Equal(uint64(1)))
			Expect(l1.Stats.ReadMisses).To(Equal(uint64(1)))
			Expect(l1.Stats.Writebacks).To(Equal(uint64(1)))
		})
	})

	Describe("scenario 4: the same eviction absorbed by a 1-block VC", func() {
		It("defers the writeback until the block actually leaves the VC", func() {
			l1 := newL1()
			vc, err := cache.NewVictimCache(1, 64)
			Expect(err).NotTo(HaveOccurred())
			l1.VC = vc
			h := hierarchy.New(l1, nil)

			h.WriteRequest(0x1000)
			h.ReadRequest(0x2000)

			Expect(l1.Stats.SwapRequests).To(Equal(uint64(1)))
			Expect(l1.Stats.Swaps).To(Equal(uint64(0)))
			Expect(l1.Stats.Writebacks).To(Equal(uint64(0)))

			na := l1.Stats.Reads + l1.Stats.Writes
			l1vcMissRate := float64(l1.Stats.ReadMisses+l1.Stats.WriteMisses-l1.Stats.Swaps) / float64(na)
			Expect(l1vcMissRate).To(Equal(1.0))

			h.ReadRequest(0x1000) // VC hit: swaps the block back into L1

			Expect(l1.Stats.SwapRequests).To(Equal(uint64(2)))
			Expect(l1.Stats.Swaps).To(Equal(uint64(1)))

			na = l1.Stats.Reads + l1.Stats.Writes
			l1vcMissRate = float64(l1.Stats.ReadMisses+l1.Stats.WriteMisses-l1.Stats.Swaps) / float64(na)
			Expect(l1vcMissRate).To(BeNumerically("~", 0.6667, 0.0001))
		})
	})

	Describe("scenario 5: L1 dirty eviction finds a clean copy already in L2", func() {
		It("writes back as an L2 hit instead of an L2 install", func() {
			l1, err := cache.New(cache.Config{Size: 8, Assoc: 2, BlockSize: 4}, 1)
			Expect(err).NotTo(HaveOccurred())
			l2, err := cache.New(cache.Config{Size: 16, Assoc: 4, BlockSize: 4}, 1)
			Expect(err).NotTo(HaveOccurred())
			h := hierarchy.New(l1, l2)

			h.WriteRequest(0x0) // tag 0: L1 miss, L2 miss, both install
			h.WriteRequest(0x4) // tag 1: L1 miss, L2 miss, both install; L1 now full

			h.WriteRequest(0x8) // tag 2: evicts dirty tag 0 from L1; L2 already holds it clean

			Expect(l2.Stats.Writes).To(Equal(uint64(1)))
			Expect(l2.Stats.WriteMisses).To(Equal(uint64(0)))
			Expect(l2.Stats.Writebacks).To(Equal(uint64(0)))

			out := l2.LookupForRead(0x0)
			Expect(out.Hit).To(BeTrue())
		})
	})
})
