// Package multilineup implements spec.md §4.8 (diverse post-selector) and
// §4.9 (the set-based engine): fingerprint-based diverse sampling, set-level
// fitness/crossover/mutation, and the set-based generational loop. Pairwise
// similarity matrices are gonum/mat Dense matrices, mirroring the teacher's
// use of gonum/mat for portfolio covariance structures in
// internal/analytics/portfolio/optimizer.go.
package multilineup

import "gorgonia.org/tensor"

// LineupSets is the [K x N x L] integer matrix from spec.md §3, stored as a
// [K x (N*L)] tensor.Dense (the 3rd dimension flattened) so that a whole set
// is one contiguous row slice.
type LineupSets struct {
	t    *tensor.Dense
	k, n, l int
}

// NewLineupSets allocates a zeroed set population of k sets of n lineups of
// length l.
func NewLineupSets(k, n, l int) *LineupSets {
	data := make([]int, k*n*l)
	return &LineupSets{
		t: tensor.New(tensor.WithBacking(data), tensor.WithShape(k, n*l)),
		k: k, n: n, l: l,
	}
}

func (s *LineupSets) data() []int { return s.t.Data().([]int) }

// K is the number of candidate sets.
func (s *LineupSets) K() int { return s.k }

// N is the number of lineups per set.
func (s *LineupSets) N() int { return s.n }

// L is the lineup length.
func (s *LineupSets) L() int { return s.l }

// Set returns a mutable view of set k's full row (length N*L).
func (s *LineupSets) Set(k int) []int {
	d := s.data()
	width := s.n * s.l
	return d[k*width : (k+1)*width]
}

// Lineup returns a mutable view of lineup n within set k (length L).
func (s *LineupSets) Lineup(k, n int) []int {
	set := s.Set(k)
	return set[n*s.l : (n+1)*s.l]
}

// Select builds a new LineupSets containing only the given set indices.
func (s *LineupSets) Select(indices []int) *LineupSets {
	out := NewLineupSets(len(indices), s.n, s.l)
	for i, k := range indices {
		copy(out.Set(i), s.Set(k))
	}
	return out
}

// LineupsOf returns a mutable nested view of set k: N slices of length L,
// each aliasing the underlying tensor backing array (no copy).
func (s *LineupSets) LineupsOf(k int) [][]int {
	set := s.Set(k)
	out := make([][]int, s.n)
	for i := 0; i < s.n; i++ {
		out[i] = set[i*s.l : (i+1)*s.l]
	}
	return out
}

// SetLineups overwrites set k in place from a nested [N][L]int source.
func (s *LineupSets) SetLineups(k int, lineups [][]int) {
	dst := s.Set(k)
	for i, lineup := range lineups {
		copy(dst[i*s.l:(i+1)*s.l], lineup)
	}
}

// SetsFromNested builds a LineupSets from a [K][N][L]int slice, as produced
// by FingerprintSampler.SampleSets.
func SetsFromNested(nested [][][]int) *LineupSets {
	k := len(nested)
	if k == 0 {
		return NewLineupSets(0, 0, 0)
	}
	n := len(nested[0])
	l := 0
	if n > 0 {
		l = len(nested[0][0])
	}
	out := NewLineupSets(k, n, l)
	for i, set := range nested {
		out.SetLineups(i, set)
	}
	return out
}

// ConcatSets stacks set-populations row-wise. All inputs must share N and L.
func ConcatSets(sets ...*LineupSets) *LineupSets {
	total := 0
	n, l := 0, 0
	for _, s := range sets {
		total += s.K()
		n, l = s.N(), s.L()
	}
	out := NewLineupSets(total, n, l)
	offset := 0
	for _, s := range sets {
		for k := 0; k < s.K(); k++ {
			copy(out.Set(offset), s.Set(k))
			offset++
		}
	}
	return out
}
