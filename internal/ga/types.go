// Package ga implements the single-lineup evolutionary search: populate,
// validate, fitness, select/crossover/mutate, and the generational loop
// (spec.md §4.3-§4.7). Populations are stored as gorgonia.org/tensor dense
// integer matrices, the same construction the teacher's ML predictor uses
// for feature tensors (internal/analytics/ml/predictor.go:
// tensor.New(tensor.WithBacking(flat), tensor.WithShape(rows, cols))).
package ga

import (
	"sort"

	"gorgonia.org/tensor"

	"github.com/stitts-dev/lineup-ga/internal/pospool"
)

// SlotLayout is the canonical, fixed slot order derived from a position map
// (spec.md §3: "Field order is the canonical slot order derived from the
// position map ... with positions concatenated in a fixed, documented
// order"). Non-FLEX positions are ordered alphabetically before FLEX slots,
// which always come last; this is the "documented order" spec.md requires
// without mandating any particular one.
type SlotLayout struct {
	Slots []string // length L; each entry is a position name or pospool.FlexName
}

// BuildSlotLayout derives the canonical layout from a position→count map.
func BuildSlotLayout(posMap map[string]int) SlotLayout {
	var nonFlex []string
	flexCount := 0
	for pos, count := range posMap {
		if pos == pospool.FlexName {
			flexCount = count
			continue
		}
		for i := 0; i < count; i++ {
			nonFlex = append(nonFlex, pos)
		}
	}
	sort.Strings(nonFlex)

	slots := make([]string, 0, len(nonFlex)+flexCount)
	slots = append(slots, nonFlex...)
	for i := 0; i < flexCount; i++ {
		slots = append(slots, pospool.FlexName)
	}
	return SlotLayout{Slots: slots}
}

// L is the fixed lineup length.
func (s SlotLayout) L() int { return len(s.Slots) }

// Population is the [K x L] integer matrix of lineups (spec.md §3), backed by
// a contiguous tensor.Dense so that row slices used by crossover, mutation,
// and fitness are O(1) views rather than copies.
type Population struct {
	t    *tensor.Dense
	rows int
	cols int
}

// NewPopulation allocates a zeroed [rows x cols] population.
func NewPopulation(rows, cols int) *Population {
	data := make([]int, rows*cols)
	return &Population{
		t:    tensor.New(tensor.WithBacking(data), tensor.WithShape(rows, cols)),
		rows: rows,
		cols: cols,
	}
}

// PopulationFromRows builds a Population by copying the given rows; len(rows)
// becomes K and every row must have the same length L.
func PopulationFromRows(rows [][]int) *Population {
	if len(rows) == 0 {
		return NewPopulation(0, 0)
	}
	cols := len(rows[0])
	p := NewPopulation(len(rows), cols)
	data := p.data()
	for i, row := range rows {
		copy(data[i*cols:(i+1)*cols], row)
	}
	return p
}

func (p *Population) data() []int { return p.t.Data().([]int) }

// K is the number of lineups (rows) currently held.
func (p *Population) K() int { return p.rows }

// L is the lineup length (columns).
func (p *Population) L() int { return p.cols }

// Row returns a direct, mutable view onto row r (no copy).
func (p *Population) Row(r int) []int {
	d := p.data()
	return d[r*p.cols : (r+1)*p.cols]
}

// Rows returns the population as a slice of row views, for callers that want
// to range over every lineup.
func (p *Population) Rows() [][]int {
	out := make([][]int, p.rows)
	for r := 0; r < p.rows; r++ {
		out[r] = p.Row(r)
	}
	return out
}

// Select builds a new Population containing only the given row indices, in
// order — used by Optimize to materialize the indices the selection policies
// in select.go return, and by Validate's row-filtering.
func (p *Population) Select(indices []int) *Population {
	out := NewPopulation(len(indices), p.cols)
	for i, r := range indices {
		copy(out.Row(i), p.Row(r))
	}
	return out
}

// Concat stacks populations row-wise into one new Population. All inputs
// must share L.
func Concat(pops ...*Population) *Population {
	total := 0
	cols := 0
	for _, p := range pops {
		total += p.K()
		cols = p.L()
	}
	out := NewPopulation(total, cols)
	offset := 0
	for _, p := range pops {
		for r := 0; r < p.K(); r++ {
			copy(out.Row(offset), p.Row(r))
			offset++
		}
	}
	return out
}
