package cache

import (
	"fmt"

	"github.com/nikhi9603/cachesim/internal/addr"
)

// Config is a cache level's geometry: size in bytes, associativity, and
// block size, all of which spec.md §3 requires to be powers of two with
// size == blockSize*assoc*nSets.
type Config struct {
	Size      int
	Assoc     int
	BlockSize int
}

// Statistics holds the raw per-level counters spec.md §3 defines.
// SwapRequests/Swaps are only ever incremented on an L1-role Level (a level
// with a non-nil VC); a level with no VC, and a VC itself, leave them at
// zero.
type Statistics struct {
	Reads, ReadMisses   uint64
	Writes, WriteMisses uint64
	SwapRequests, Swaps uint64
	Writebacks          uint64
	HitTime             float64
	Energy              float64
	Area                float64
}

// Level is a set-associative cache: L1, L2, or (with NSets=1) a
// fully-associative victim cache. An L1-role Level may own one VC Level as
// a peer; the hierarchy controller (internal/hierarchy) never looks up or
// installs into the VC directly, only through its L1 — it only reads L1.VC's
// geometry to rebuild the address of a block the VC evicted.
type Level struct {
	Config   Config
	Geometry addr.Geometry
	Sets     []Set
	VC       *Level
	Stats    Statistics
}

// New builds a Level with nSets sets, failing if the geometry is not a
// valid power-of-two split (spec.md §7, Configuration error).
func New(cfg Config, nSets int) (*Level, error) {
	if cfg.BlockSize <= 0 || cfg.Assoc <= 0 || nSets <= 0 {
		return nil, fmt.Errorf("cache: block size, associativity, and set count must be positive")
	}

	if !isPowerOfTwo(cfg.BlockSize) || !isPowerOfTwo(cfg.Assoc) || !isPowerOfTwo(nSets) {
		return nil, fmt.Errorf("cache: block size (%d), associativity (%d), and set count (%d) must all be powers of two",
			cfg.BlockSize, cfg.Assoc, nSets)
	}

	if cfg.Size != cfg.BlockSize*cfg.Assoc*nSets {
		return nil, fmt.Errorf("cache: size %d does not equal blockSize(%d)*assoc(%d)*nSets(%d)",
			cfg.Size, cfg.BlockSize, cfg.Assoc, nSets)
	}

	geom, err := addr.NewGeometry(cfg.BlockSize, nSets)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	sets := make([]Set, nSets)
	for i := range sets {
		sets[i] = newSet(cfg.Assoc)
	}

	return &Level{Config: cfg, Geometry: geom, Sets: sets}, nil
}

// NewVictimCache builds the single-set, fully-associative companion cache
// described in spec.md §2 item 4: nSets=1, assoc=nBlocks. A victim cache
// with nBlocks==0 is not constructed at all — the caller just leaves VC nil.
func NewVictimCache(nBlocks, blockSize int) (*Level, error) {
	return New(Config{Size: nBlocks * blockSize, Assoc: nBlocks, BlockSize: blockSize}, 1)
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

// SlotRef identifies where an Outcome's block lives: a concrete (set,
// index) pair, or the VC-ABSORBED sentinel meaning "the block you need to
// act on is Outcome.Evicted, not a location in my own sets" (spec.md §9).
type SlotRef struct {
	Set      int
	Index    int
	Absorbed bool
}

// Outcome is the result of a lookup. Evicted is only populated on the
// victim-cache-absorption miss path (§4.4 step 3); every other path leaves
// it nil because nothing has actually left the cache yet — installBlock
// performs the eviction.
type Outcome struct {
	Hit     bool
	Slot    SlotRef
	Evicted *Block
}

// LookupForRead probes the level for addr on behalf of a read. It shares
// lookup with LookupForWrite; the only difference between the two is which
// request and miss counters are incremented.
func (l *Level) LookupForRead(address uint64) Outcome {
	l.Stats.Reads++
	return l.lookup(address, &l.Stats.ReadMisses)
}

// LookupForWrite probes the level for addr on behalf of a write.
func (l *Level) LookupForWrite(address uint64) Outcome {
	l.Stats.Writes++
	return l.lookup(address, &l.Stats.WriteMisses)
}

func (l *Level) lookup(address uint64, missCounter *uint64) Outcome {
	d := l.Geometry.Decode(address)
	set := &l.Sets[d.SetIndex]

	if idx, ok := set.lookup(d.Tag); ok {
		set.refresh(idx)
		return Outcome{Hit: true, Slot: SlotRef{Set: d.SetIndex, Index: idx}}
	}

	*missCounter++

	i := set.victimSlot()
	if l.VC == nil || !set.Blocks[i].Valid {
		return Outcome{Hit: false, Slot: SlotRef{Set: d.SetIndex, Index: i}}
	}

	return l.vcDance(address, d.SetIndex, i)
}

// vcDance implements the L1<->VC choreography of spec.md §4.4, reached only
// when this level (playing L1) missed and its victim slot already holds a
// valid block.
func (l *Level) vcDance(address uint64, l1Set, l1Idx int) Outcome {
	l.Stats.SwapRequests++

	vcOut := l.VC.LookupForRead(address)
	if vcOut.Hit {
		l.Stats.Swaps++

		priorRank := l.Sets[l1Set].Blocks[l1Idx].LRU
		l.SwapWithVC(l1Set, l1Idx, vcOut.Slot.Index)
		l.Sets[l1Set].Blocks[l1Idx].LRU = priorRank
		l.Sets[l1Set].refresh(l1Idx)

		return Outcome{Hit: true, Slot: SlotRef{Set: l1Set, Index: l1Idx}}
	}

	// VC miss: V's logical identity moves into the VC's chosen victim slot.
	v := l.Sets[l1Set].Blocks[l1Idx]
	vPhysAddr := l.Geometry.BlockAddress(l1Set, v.Tag)
	vcTag := l.VC.Geometry.Decode(vPhysAddr).Tag

	vcEvicted := l.VC.Sets[0].install(vcOut.Slot.Index, vcTag, v.Dirty)
	l.Sets[l1Set].Blocks[l1Idx].Valid = false

	// A dirty block leaving the combined L1+VC region entirely is booked
	// against L1's writebacks, not the VC's.
	if vcEvicted.Valid && vcEvicted.Dirty {
		l.Stats.Writebacks++
	}

	return Outcome{Hit: false, Slot: SlotRef{Absorbed: true}, Evicted: &vcEvicted}
}

// InstallBlock unconditionally places incoming at the slot identified by a
// prior Outcome (resolving the VC-ABSORBED sentinel back to the concrete
// slot the dance just freed), returning the prior occupant and the
// concrete slot the block now lives at (callers need this to write-data or
// report on an absorbed install, since SlotRef carried no coordinates for
// that case). A valid+dirty prior occupant counts as a writeback from this
// level.
func (l *Level) InstallBlock(address uint64, incoming Block, slot SlotRef) (evicted Block, at SlotRef) {
	d := l.Geometry.Decode(address)

	idx := slot.Index
	if slot.Absorbed {
		idx = l.Sets[d.SetIndex].victimSlot()
	}

	evicted = l.Sets[d.SetIndex].install(idx, incoming.Tag, incoming.Dirty)
	if evicted.Valid && evicted.Dirty {
		l.Stats.Writebacks++
	}

	return evicted, SlotRef{Set: d.SetIndex, Index: idx}
}

// WriteData marks the block at (setIndex, index) dirty. Idempotent.
func (l *Level) WriteData(setIndex, index int) {
	l.Sets[setIndex].Blocks[index].Dirty = true
}

// UnsetDirty clears the dirty bit at (setIndex, index), used when a level
// hands a clean copy of a block up to the level above it.
func (l *Level) UnsetDirty(setIndex, index int) {
	l.Sets[setIndex].Blocks[index].Dirty = false
}

// TagOf returns the tag field address decodes to under this level's
// geometry — used by the hierarchy controller to synthesize a fresh block
// on a miss that bottoms out at main memory.
func (l *Level) TagOf(address uint64) uint64 {
	return l.Geometry.Decode(address).Tag
}

// BlockAddress reconstructs the physical block address for (setIndex, tag)
// under this level's geometry (the inverse of TagOf+set indexing).
func (l *Level) BlockAddress(setIndex int, tag uint64) uint64 {
	return l.Geometry.BlockAddress(setIndex, tag)
}

// GetBlock returns a copy of the block currently at (setIndex, index).
func (l *Level) GetBlock(setIndex, index int) Block {
	return l.Sets[setIndex].Blocks[index]
}

// SwapWithVC atomically exchanges the L1 block at (l1Set, l1Idx) with the
// VC block at vcIdx (VC being single-set, vcIdx indexes Sets[0]). Each
// block is re-tagged to the other cache's geometry via the block-address
// round-trip of spec.md §4.1; both receive lru=0. The caller — vcDance — is
// responsible for restoring the L1 slot's prior LRU rank afterwards so a
// later refresh doesn't double-promote (spec.md §9).
func (l *Level) SwapWithVC(l1Set, l1Idx, vcIdx int) {
	l1Block := &l.Sets[l1Set].Blocks[l1Idx]
	vcBlock := &l.VC.Sets[0].Blocks[vcIdx]

	l1PhysAddr := l.Geometry.BlockAddress(l1Set, l1Block.Tag)
	vcPhysAddr := l.VC.Geometry.BlockAddress(0, vcBlock.Tag)

	l1Valid, l1Dirty := l1Block.Valid, l1Block.Dirty
	vcValid, vcDirty := vcBlock.Valid, vcBlock.Dirty

	l1Block.Tag = l.Geometry.Decode(vcPhysAddr).Tag
	l1Block.Valid, l1Block.Dirty, l1Block.LRU = vcValid, vcDirty, 0

	vcBlock.Tag = l.VC.Geometry.Decode(l1PhysAddr).Tag
	vcBlock.Valid, vcBlock.Dirty, vcBlock.LRU = l1Valid, l1Dirty, 0
}
