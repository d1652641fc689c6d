package multilineup

import (
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PostSelectConfig configures the diverse post-selector (spec.md §4.8). The
// canonical defaults w=0.2, tau=0.2 resolve the open question spec.md §9
// raises about "strict" vs "aggressive" post-selector tunings.
type PostSelectConfig struct {
	TargetLineups       int
	DiversityWeight     float64
	MinOverlapThreshold float64
	Method              Method
}

// DefaultPostSelectConfig returns the canonical w=0.2, tau=0.2 tuning.
func DefaultPostSelectConfig(targetLineups int) PostSelectConfig {
	return PostSelectConfig{
		TargetLineups:       targetLineups,
		DiversityWeight:     0.2,
		MinOverlapThreshold: 0.2,
		Method:              Jaccard,
	}
}

// PostSelectResult is the output of PostSelect (spec.md §6).
type PostSelectResult struct {
	Lineups      [][]int
	Scores       []float64
	AvgOverlap   float64
	MinOverlap   float64
	Pairwise     *mat.Dense
	Relaxed      bool
	Shortfall    bool // DiversityShortfall: fewer than TargetLineups returned
}

// PostSelect implements spec.md §4.8: sort by fitness descending, greedily
// accept the highest-scoring remaining candidate whose similarity to every
// already-chosen lineup is within tolerance, relaxing tau by 0.7x whenever
// no candidate qualifies, and abandoning diversity entirely once
// tau < 0.05.
func PostSelect(pop [][]int, fit []float64, cfg PostSelectConfig) PostSelectResult {
	n := len(pop)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return fit[order[i]] > fit[order[j]] })

	target := cfg.TargetLineups
	if target > n {
		target = n
	}
	if target == 0 {
		return PostSelectResult{}
	}

	scale := medianFitness(fit)
	chosen := []int{order[0]}
	scores := []float64{fit[order[0]]}
	remaining := append([]int(nil), order[1:]...)

	tau := cfg.MinOverlapThreshold
	relaxed := false

	for len(chosen) < target && len(remaining) > 0 {
		bestIdx := -1
		bestScore := 0.0
		bestPos := -1
		for pos, c := range remaining {
			maxSim := 0.0
			for _, s := range chosen {
				sim := Similarity(cfg.Method, pop[c], pop[s])
				if sim > maxSim {
					maxSim = sim
				}
			}
			if maxSim > 1-tau {
				continue
			}
			score := fit[c] - cfg.DiversityWeight*maxSim*scale
			if bestIdx == -1 || score > bestScore {
				bestIdx = c
				bestScore = score
				bestPos = pos
			}
		}

		if bestIdx == -1 {
			if tau < 0.05 {
				// Abandon diversity; append by fitness order alone.
				bestPos = 0
				bestIdx = remaining[0]
				bestScore = fit[bestIdx]
			} else {
				tau *= 0.7
				relaxed = true
				continue
			}
		}

		chosen = append(chosen, bestIdx)
		scores = append(scores, bestScore)
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	lineups := make([][]int, len(chosen))
	for i, idx := range chosen {
		lineups[i] = pop[idx]
	}

	pairwise := PairwiseMatrix(cfg.Method, lineups)
	avg, min := AvgMinPairwise(pairwise)

	return PostSelectResult{
		Lineups:    lineups,
		Scores:     scores,
		AvgOverlap: avg,
		MinOverlap: min,
		Pairwise:   pairwise,
		Relaxed:    relaxed,
		Shortfall:  len(chosen) < cfg.TargetLineups,
	}
}

func medianFitness(fit []float64) float64 {
	if len(fit) == 0 {
		return 0
	}
	sorted := append([]float64(nil), fit...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
