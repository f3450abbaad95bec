// Package cacti models the external SRAM-modeling oracle spec.md §2 treats
// as a black box: cacti(size, blockSize, assoc) -> (hitTime, energy, area).
// A small built-in table covers the geometries a trace is likely to
// exercise; an optional JSON model file (see LoadModelFile) lets a caller
// extend or override it without recompiling, following the same
// load/save/validate shape as the teacher's timing/latency package.
package cacti

import (
	"encoding/json"
	"fmt"
	"os"
)

// Estimate is what the oracle reports for one cache geometry: hit time in
// nanoseconds, dynamic energy per access in nanojoules, and area in mm^2.
type Estimate struct {
	HitTime float64 `json:"hit_time_ns"`
	Energy  float64 `json:"energy_nj"`
	Area    float64 `json:"area_mm2"`
}

// FallbackHitTime is used whenever the oracle declines a configuration
// (spec.md §4.6). The oracle's own reported energy/area are kept as-is.
const FallbackHitTime = 0.2

// geometry is the lookup key: size, block size, and associativity in bytes
// and ways.
type geometry struct {
	Size      int `json:"size"`
	BlockSize int `json:"block_size"`
	Assoc     int `json:"assoc"`
}

// entry pairs a geometry with its estimate for JSON (de)serialization —
// Go maps can't use a struct key directly in encoding/json.
type entry struct {
	geometry
	Estimate
}

// Model is the oracle: a table of known geometries plus the estimates
// cacti would have reported for them.
type Model struct {
	table map[geometry]Estimate
}

// DefaultModel returns the built-in table covering the canonical L1/L2/VC
// geometries a cache-simulator trace typically exercises. Values are
// representative SRAM estimates, not measurements of real silicon.
func DefaultModel() *Model {
	m := &Model{table: make(map[geometry]Estimate)}

	defaults := []entry{
		{geometry{Size: 1024, BlockSize: 64, Assoc: 1}, Estimate{HitTime: 0.15, Energy: 0.01, Area: 0.02}},
		{geometry{Size: 16 * 1024, BlockSize: 64, Assoc: 1}, Estimate{HitTime: 0.2, Energy: 0.03, Area: 0.05}},
		{geometry{Size: 16 * 1024, BlockSize: 64, Assoc: 2}, Estimate{HitTime: 0.22, Energy: 0.035, Area: 0.06}},
		{geometry{Size: 16 * 1024, BlockSize: 64, Assoc: 4}, Estimate{HitTime: 0.25, Energy: 0.04, Area: 0.08}},
		{geometry{Size: 32 * 1024, BlockSize: 64, Assoc: 4}, Estimate{HitTime: 0.3, Energy: 0.05, Area: 0.12}},
		{geometry{Size: 64 * 1024, BlockSize: 64, Assoc: 8}, Estimate{HitTime: 0.35, Energy: 0.07, Area: 0.2}},
		{geometry{Size: 256 * 1024, BlockSize: 64, Assoc: 8}, Estimate{HitTime: 0.6, Energy: 0.12, Area: 0.5}},
		{geometry{Size: 1024 * 1024, BlockSize: 64, Assoc: 16}, Estimate{HitTime: 1.2, Energy: 0.25, Area: 1.8}},
		{geometry{Size: 2 * 1024 * 1024, BlockSize: 64, Assoc: 16}, Estimate{HitTime: 1.8, Energy: 0.4, Area: 3.2}},
	}

	for _, e := range defaults {
		m.table[e.geometry] = e.Estimate
	}

	return m
}

// LoadModelFile reads a JSON array of {size, block_size, assoc, hit_time_ns,
// energy_nj, area_mm2} entries and merges them over DefaultModel, entries
// with the same geometry overriding the built-in one.
func LoadModelFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cacti: failed to read model file: %w", err)
	}

	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("cacti: failed to parse model file: %w", err)
	}

	m := DefaultModel()
	for _, e := range entries {
		if err := e.Estimate.Validate(); err != nil {
			return nil, fmt.Errorf("cacti: model file entry %+v: %w", e.geometry, err)
		}

		m.table[e.geometry] = e.Estimate
	}

	return m, nil
}

// SaveModelFile writes the model's table out as a JSON array, for round
// tripping a model built with LoadModelFile or for seeding a template a
// user can hand-edit.
func (m *Model) SaveModelFile(path string) error {
	entries := make([]entry, 0, len(m.table))
	for g, e := range m.table {
		entries = append(entries, entry{g, e})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("cacti: failed to serialize model: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cacti: failed to write model file: %w", err)
	}

	return nil
}

// Validate reports whether e is a physically sane estimate.
func (e Estimate) Validate() error {
	if e.HitTime <= 0 {
		return fmt.Errorf("hit_time_ns must be > 0")
	}

	if e.Energy < 0 {
		return fmt.Errorf("energy_nj must be >= 0")
	}

	if e.Area < 0 {
		return fmt.Errorf("area_mm2 must be >= 0")
	}

	return nil
}

// Lookup is the oracle call spec.md §2 names: cacti(size, blockSize, assoc).
// ok is false when the model has no entry for this exact geometry — the
// "declines" case of spec.md §4.6 — in which case est carries only a
// usable HitTime fallback (FallbackHitTime) and zeroed energy/area; the
// caller must supply its own reported energy/area if it has one, per the
// fallback policy ("oracle's own reported energy/area").
func (m *Model) Lookup(size, blockSize, assoc int) (est Estimate, ok bool) {
	g := geometry{Size: size, BlockSize: blockSize, Assoc: assoc}

	if e, found := m.table[g]; found {
		return e, true
	}

	return Estimate{HitTime: FallbackHitTime}, false
}

// Clone returns a deep copy of m.
func (m *Model) Clone() *Model {
	cp := &Model{table: make(map[geometry]Estimate, len(m.table))}
	for g, e := range m.table {
		cp.table[g] = e
	}

	return cp
}
