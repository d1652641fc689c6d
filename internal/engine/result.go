package engine

import (
	"gonum.org/v1/gonum/mat"

	"github.com/stitts-dev/lineup-ga/internal/profiler"
)

// DiversityMetrics mirrors spec.md §6's diversity_metrics block, reported
// whenever the run produces more than one lineup.
type DiversityMetrics struct {
	AvgOverlap float64
	MinOverlap float64
	Pairwise   *mat.Dense
	Relaxed    bool
	Shortfall  bool
}

// Result is the structured output object from spec.md §6:
// {best_lineup, best_score, population, fitness, lineups?, scores?,
// diversity_metrics?, profiling?}. Lineups, Scores and Diversity are nil
// when the run produced a single lineup; Profiling is nil unless profiling
// is enabled.
type Result struct {
	BestLineup []int
	BestScore  float64
	Population [][]int
	Fitness    []float64

	Lineups   [][]int
	Scores    []float64
	Diversity *DiversityMetrics

	Profiling *profiler.Snapshot

	Generations    int
	Stagnated      bool
	Aborted        bool
	BestGeneration int
}
