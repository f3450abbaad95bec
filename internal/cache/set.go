package cache

// Set is the group of Assoc blocks addressable by one set index. It
// maintains the true-LRU discipline of spec.md §4.2: among valid blocks the
// LRU field is always a dense permutation of {0..k-1}, 0 being MRU.
type Set struct {
	Blocks []Block
}

// newSet allocates an all-invalid set with the given associativity.
func newSet(assoc int) Set {
	return Set{Blocks: make([]Block, assoc)}
}

// lookup returns the index of the valid block carrying tag, if any.
func (s *Set) lookup(tag uint64) (int, bool) {
	for i := range s.Blocks {
		if s.Blocks[i].Valid && s.Blocks[i].Tag == tag {
			return i, true
		}
	}

	return 0, false
}

// victimSlot picks the block that should host an incoming miss: the first
// invalid slot by index, or else the block with the highest (oldest) LRU
// rank. It performs no mutation — the scan intentionally runs against the
// pre-promotion ordering (spec.md §9).
func (s *Set) victimSlot() int {
	for i := range s.Blocks {
		if !s.Blocks[i].Valid {
			return i
		}
	}

	oldest := 0
	for i := range s.Blocks {
		if s.Blocks[i].LRU > s.Blocks[oldest].LRU {
			oldest = i
		}
	}

	return oldest
}

// countOtherValid returns how many valid blocks in the set are not at idx.
// Because valid ranks are always the dense permutation {0..k-1}, this count
// equals a value strictly greater than every one of those blocks' current
// ranks — which is exactly the "old" threshold refresh needs to promote a
// brand-new occupant at idx to MRU while shifting every other valid block
// back by one (see refresh and install).
func (s *Set) countOtherValid(idx int) uint32 {
	n := uint32(0)
	for i := range s.Blocks {
		if i != idx && s.Blocks[i].Valid {
			n++
		}
	}

	return n
}

// refresh promotes the block at idx to MRU: every other valid block whose
// rank is currently below the block's own old rank is pushed back by one,
// then idx is set to 0. Called directly on a hit (old = the block's actual
// current rank) and, via install, with old forced to countOtherValid so a
// freshly-placed block shifts every surviving block back by one instead of
// only those "ahead" of some meaningless stale rank.
func (s *Set) refresh(idx int) {
	old := s.Blocks[idx].LRU

	for i := range s.Blocks {
		if i == idx {
			continue
		}

		if s.Blocks[i].Valid && s.Blocks[i].LRU < old {
			s.Blocks[i].LRU++
		}
	}

	s.Blocks[idx].LRU = 0
}

// install unconditionally overwrites the block at idx with (tag, dirty),
// promotes it to MRU, and returns the prior occupant. It never touches
// statistics — callers decide what an evicted valid+dirty block means for
// their own writeback counters, since that differs between a plain level
// install and the victim-cache absorption path (see level.go).
func (s *Set) install(idx int, tag uint64, dirty bool) Block {
	evicted := s.Blocks[idx]

	s.Blocks[idx] = Block{Tag: tag, Valid: true, Dirty: dirty, LRU: s.countOtherValid(idx)}
	s.refresh(idx)

	return evicted
}
