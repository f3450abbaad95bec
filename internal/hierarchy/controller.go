// Package hierarchy wires L1, an optional victim cache, an optional L2, and
// backing main memory into the four configurations spec.md §2 names, and
// drives a trace one request at a time through them.
//
// Control flow is strictly synchronous: ReadRequest/WriteRequest runs a
// single reference to completion — including any writeback sub-transaction
// it triggers against the next level — before returning.
package hierarchy

import "github.com/nikhi9603/cachesim/internal/cache"

// Hierarchy composes the levels a CacheSimulator needs. L2 is nil when the
// configuration omits it; L1.VC is nil when the victim cache is disabled.
type Hierarchy struct {
	L1 *cache.Level
	L2 *cache.Level
}

// New validates nothing itself — the caller (cmd/cachesim) is responsible
// for constructing L1/L2 with cache.New and wiring L1.VC — and just holds
// the two levels together.
func New(l1, l2 *cache.Level) *Hierarchy {
	return &Hierarchy{L1: l1, L2: l2}
}

// ReadRequest drives one read reference through the hierarchy (spec.md §4.5).
func (h *Hierarchy) ReadRequest(address uint64) {
	out := h.L1.LookupForRead(address)
	if out.Hit {
		return
	}

	h.fill(address, out, false)
}

// WriteRequest drives one write reference through the hierarchy. It differs
// from ReadRequest in that the block ending up resident in L1 — whichever
// path put it there — is always marked dirty by a final writeData call.
func (h *Hierarchy) WriteRequest(address uint64) {
	out := h.L1.LookupForWrite(address)
	if out.Hit {
		h.L1.WriteData(out.Slot.Set, out.Slot.Index)

		return
	}

	h.fill(address, out, true)
}

// fill handles the shared L1-miss machinery for both request kinds: locating
// the candidate victim, consulting L2 (if any), installing the resident
// block, and propagating any resulting dirty eviction down the hierarchy.
func (h *Hierarchy) fill(address uint64, out cache.Outcome, isWrite bool) {
	victimAddr, victimBlock := h.l1Victim(address, out)

	if h.L2 == nil {
		at := h.installL1(address, cache.Block{Tag: h.L1.TagOf(address), Valid: true}, out.Slot)
		h.propagateL1Eviction(victimAddr, victimBlock)

		if isWrite {
			h.L1.WriteData(at.Set, at.Index)
		}

		return
	}

	l2out := h.L2.LookupForRead(address)

	if l2out.Hit {
		// The L2 block crossing into L1 carries address, not l2Block.Tag,
		// across the re-tagging boundary (spec.md §4.5's re-tagging rule);
		// since both lookups targeted the same address this is equivalent
		// to retagging L2's own copy. It arrives clean: L1 now owns the
		// clean copy and the L2 copy is left untouched (no inclusion).
		incoming := cache.Block{Tag: h.L1.TagOf(address), Valid: true, Dirty: false}

		at := h.installL1(address, incoming, out.Slot)
		h.propagateL1Eviction(victimAddr, victimBlock)

		if isWrite {
			h.L1.WriteData(at.Set, at.Index)
		}

		return
	}

	// L2 miss: both levels synthesize a fresh block for address.
	at := h.installL1(address, cache.Block{Tag: h.L1.TagOf(address), Valid: true}, out.Slot)
	h.propagateL1Eviction(victimAddr, victimBlock)

	if isWrite {
		h.L1.WriteData(at.Set, at.Index)
	}

	h.L2.InstallBlock(address, cache.Block{Tag: h.L2.TagOf(address), Valid: true}, l2out.Slot)
}

// l1Victim reads off the candidate block that installBlock is about to
// evict, and the physical address it occupies, *before* the install happens
// (spec.md §4.5 step 3). For a VC-ABSORBED outcome the candidate was already
// evicted during the dance, so it comes from Outcome.Evicted instead.
func (h *Hierarchy) l1Victim(address uint64, out cache.Outcome) (victimAddr uint64, victimBlock cache.Block) {
	if out.Slot.Absorbed {
		if out.Evicted == nil {
			return 0, cache.Block{}
		}

		return h.L1.VC.BlockAddress(0, out.Evicted.Tag), *out.Evicted
	}

	block := h.L1.GetBlock(out.Slot.Set, out.Slot.Index)

	return h.L1.BlockAddress(out.Slot.Set, block.Tag), block
}

// installL1 places incoming into L1 at the slot identified by out (resolving
// VC-ABSORBED to the slot the dance just freed) and returns where it landed.
func (h *Hierarchy) installL1(address uint64, incoming cache.Block, slot cache.SlotRef) cache.SlotRef {
	_, at := h.L1.InstallBlock(address, incoming, slot)

	return at
}

// propagateL1Eviction writes a dirty block leaving L1 (or the combined
// L1+VC region) down to L2, or — when L2 doesn't exist — counts it as an L1
// writeback (already done by InstallBlock/the VC dance; this only handles
// the L2 case).
func (h *Hierarchy) propagateL1Eviction(victimAddr uint64, victim cache.Block) {
	if h.L2 == nil || !victim.Valid || !victim.Dirty {
		return
	}

	wb := h.L2.LookupForWrite(victimAddr)
	if wb.Hit {
		h.L2.WriteData(wb.Slot.Set, wb.Slot.Index)
		return
	}

	h.L2.InstallBlock(victimAddr, cache.Block{Tag: h.L2.TagOf(victimAddr), Valid: true, Dirty: true}, wb.Slot)
}
