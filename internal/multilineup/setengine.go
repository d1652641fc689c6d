package multilineup

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/lineup-ga/internal/ga"
	"github.com/stitts-dev/lineup-ga/internal/pool"
	"github.com/stitts-dev/lineup-ga/internal/pospool"
	"github.com/stitts-dev/lineup-ga/internal/profiler"
)

// MutationIntensity selects the mix of single-swap vs. pool-injection
// mutation (spec.md §4.9.4).
type MutationIntensity string

const (
	IntensityLow      MutationIntensity = "low"
	IntensityMedium   MutationIntensity = "medium"
	IntensityHigh     MutationIntensity = "high"
	IntensityAdaptive MutationIntensity = "adaptive"
)

// SetOptions configures the set-based generational loop (spec.md §4.9.5).
type SetOptions struct {
	PopulationSize  int // K: number of candidate sets
	NLineups        int // N: lineups per set
	LineupPoolSize  int // M: size of the seed lineup pool LP
	NumClusters     int // C in spec.md §4.9.1; typical 8*N
	NGenerations    int
	StopCriteria    int
	EliteDivisor    int
	MutationRate    int // legacy field name kept for parity; unused directly
	MutationProb    float64
	Intensity       MutationIntensity
	DiversityWeight float64
	RefreshInterval int // pool-evolution cadence; 0 disables it
	SalaryCap       int
	FlexPositions   []string
}

// SetResult is the outcome of the set-based loop (spec.md §6 multilineup
// fields).
type SetResult struct {
	BestSet        [][]int
	BestSetFit     float64
	Generations    int
	Stagnated      bool
	Aborted        bool
	BestGeneration int
}

// SeedLineupPool builds LP: a pool of validated lineups drawn by weighted
// sampling, large enough (M >> N, spec.md §4.9.1 typical 25k-100k) to seed
// the fingerprint sampler. It stops early, returning fewer than size lineups
// (possibly none), once 10 consecutive batches validate to zero rows.
func SeedLineupPool(pl *pool.Pool, pools *pospool.Pools, layout ga.SlotLayout, size, salaryCap int, flexPositions []string, rng *rand.Rand) [][]int {
	validator := ga.NewValidator(pl, layout, salaryCap, flexPositions)
	out := make([][]int, 0, size)
	emptyBatches := 0
	for len(out) < size && emptyBatches < 10 {
		batch := ga.Populate(pools, layout, size, rng)
		batch = validator.Validate(batch)
		if batch.K() == 0 {
			emptyBatches++
			continue
		}
		emptyBatches = 0
		for _, row := range batch.Rows() {
			out = append(out, append([]int(nil), row...))
			if len(out) >= size {
				break
			}
		}
	}
	return out
}

// setFitness computes spec.md §4.9.2: sum of points across every lineup in
// the set, minus w * mean pairwise Jaccard similarity within the set
// (skipped when w == 0).
func setFitness(set [][]int, pl *pool.Pool, weight float64) float64 {
	total := 0.0
	for _, lineup := range set {
		for _, id := range lineup {
			total += pl.Player(id).Points
		}
	}
	if weight == 0 || len(set) < 2 {
		return total
	}
	penalty := meanPairwiseJaccard(set)
	return total - weight*penalty
}

func meanPairwiseJaccard(set [][]int) float64 {
	n := len(set)
	if n < 2 {
		return 0
	}
	total := 0.0
	count := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			total += jaccardSimilarity(set[i], set[j])
			count++
		}
	}
	return total / float64(count)
}

// setCrossover swaps a random subset of lineup-slots between two parent
// sets (spec.md §4.9.3's "faster alternative"), then dedupes the result,
// replacing any duplicate lineup with a fresh draw from LP.
func setCrossover(a, b [][]int, lp [][]int, rng *rand.Rand) [][]int {
	n := len(a)
	child := make([][]int, n)
	for i := 0; i < n; i++ {
		if rng.Float64() < 0.5 {
			child[i] = append([]int(nil), a[i]...)
		} else {
			child[i] = append([]int(nil), b[i]...)
		}
	}
	dedupeSet(child, lp, rng)
	return child
}

// dedupeSet replaces duplicate lineups (as sequences) within a set with
// fresh draws from LP, maintaining spec.md §3's intra-set distinctness
// invariant.
func dedupeSet(set [][]int, lp [][]int, rng *rand.Rand) {
	seen := make(map[string]bool, len(set))
	for i, lineup := range set {
		key := sequenceKey(lineup)
		if !seen[key] {
			seen[key] = true
			continue
		}
		for attempt := 0; attempt < len(lp); attempt++ {
			candidate := lp[rng.Intn(len(lp))]
			key = sequenceKey(candidate)
			if !seen[key] {
				set[i] = append([]int(nil), candidate...)
				seen[key] = true
				break
			}
		}
	}
}

func sequenceKey(lineup []int) string {
	b := make([]byte, 0, len(lineup)*5)
	for _, id := range lineup {
		b = append(b, byte(id), byte(id>>8), byte(id>>16), byte(id>>24), ',')
	}
	return string(b)
}

// setMutate mutates a set per spec.md §4.9.4: per lineup, with probability
// mutationProb, either swap one player for a position-compatible id (low
// intensity) or replace the whole lineup with a high-fitness LP sample
// (pool injection, high intensity). Adaptive intensity rises with
// unimproved generation count.
func setMutate(set [][]int, layout ga.SlotLayout, pools *pospool.Pools, lp [][]int, lpFit []float64, mutationProb float64, intensity MutationIntensity, unimproved int, validator *ga.Validator, rng *rand.Rand) {
	injectProb := intensityInjectProb(intensity, unimproved)
	for i, lineup := range set {
		if rng.Float64() >= mutationProb {
			continue
		}
		if rng.Float64() < injectProb {
			set[i] = append([]int(nil), poolInjectionSample(lp, lpFit, rng)...)
			continue
		}
		slot := rng.Intn(len(lineup))
		view := pools.View(layout.Slots[slot])
		if view == nil {
			continue
		}
		swapped := append([]int(nil), lineup...)
		swapped[slot] = view.Sample(rng)
		// The single-swap is not validated by construction (unlike pool
		// injection, which draws from the already-validated LP) — a fresh id
		// can blow the salary cap or collide with another slot in the same
		// lineup, so re-check it the same way §4.7's single-lineup loop
		// re-validates after every Mutate, falling back to a pool draw.
		if validator.ValidateOne(swapped) {
			set[i] = swapped
		} else {
			set[i] = append([]int(nil), poolInjectionSample(lp, lpFit, rng)...)
		}
	}
}

func intensityInjectProb(intensity MutationIntensity, unimproved int) float64 {
	switch intensity {
	case IntensityLow:
		return 0.1
	case IntensityMedium:
		return 0.4
	case IntensityHigh:
		return 0.8
	case IntensityAdaptive:
		p := 0.1 + 0.05*float64(unimproved)
		if p > 0.8 {
			p = 0.8
		}
		return p
	default:
		return 0.1
	}
}

// poolInjectionSample draws a lineup from LP biased toward high fitness: a
// simple tournament-of-3 over the pool's precomputed fitness.
func poolInjectionSample(lp [][]int, lpFit []float64, rng *rand.Rand) []int {
	best := rng.Intn(len(lp))
	for i := 0; i < 2; i++ {
		cand := rng.Intn(len(lp))
		if lpFit[cand] > lpFit[best] {
			best = cand
		}
	}
	return lp[best]
}

// Optimize drives the set-based generational loop (spec.md §4.9.5): same
// shape as the single-lineup loop, but every operator acts on whole sets,
// fitness is the set-level score (§4.9.2), and elitism preserves top-fitness
// sets. Pool evolution (spec.md §4.9.5) periodically refreshes LP's bottom
// fraction with the best lineups observed anywhere in Sets so far.
func Optimize(ctx context.Context, pl *pool.Pool, pools *pospool.Pools, layout ga.SlotLayout, opts SetOptions, rng *rand.Rand, prof profiler.Profiler, log *logrus.Entry) (*SetResult, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	if prof == nil {
		prof = profiler.Noop()
	}

	prof.SetupStarted()
	lp := SeedLineupPool(pl, pools, layout, opts.LineupPoolSize, opts.SalaryCap, opts.FlexPositions, rng)
	if len(lp) == 0 {
		return nil, fmt.Errorf("multilineup: infeasible: empty seed lineup pool")
	}
	lpFit := make([]float64, len(lp))
	for i, row := range lp {
		for _, id := range row {
			lpFit[i] += pl.Player(id).Points
		}
	}

	validator := ga.NewValidator(pl, layout, opts.SalaryCap, opts.FlexPositions)

	numClusters := opts.NumClusters
	if numClusters <= 0 {
		numClusters = 8 * opts.NLineups
	}
	sampler := NewFingerprintSampler(lp, numClusters)

	sets := SetsFromNested(sampler.SampleSets(opts.PopulationSize, opts.NLineups, rng))
	prof.SetupDone()

	fit := make([]float64, sets.K())
	for i := range fit {
		fit[i] = setFitness(sets.LineupsOf(i), pl, opts.DiversityWeight)
	}

	bestIdx := argmaxFloat(fit)
	best := cloneSet(sets.LineupsOf(bestIdx))
	bestFit := fit[bestIdx]
	bestGeneration := 0
	unimproved := 0
	aborted := false

	eliteCount := opts.PopulationSize / maxInt(opts.EliteDivisor, 1)
	if eliteCount < 1 {
		eliteCount = 1
	}

	prof.LoopStarted()
	prof.RecordBestSolution(0)

	generation := 0
	for ; generation < opts.NGenerations; generation++ {
		if unimproved >= opts.StopCriteria {
			break
		}
		select {
		case <-ctx.Done():
			aborted = true
		default:
		}
		if aborted {
			break
		}

		eliteIdx := topKFloat(fit, eliteCount)
		newSets := NewLineupSets(opts.PopulationSize, opts.NLineups, layout.L())
		writeIdx := 0
		for _, idx := range eliteIdx {
			newSets.SetLineups(writeIdx, sets.LineupsOf(idx))
			writeIdx++
		}

		for writeIdx < opts.PopulationSize {
			a := tournamentPick(fit, rng)
			b := tournamentPick(fit, rng)
			child := setCrossover(sets.LineupsOf(a), sets.LineupsOf(b), lp, rng)
			setMutate(child, layout, pools, lp, lpFit, opts.MutationProb, opts.Intensity, unimproved, validator, rng)
			newSets.SetLineups(writeIdx, child)
			writeIdx++
		}
		sets = newSets

		fit = make([]float64, sets.K())
		for i := range fit {
			fit[i] = setFitness(sets.LineupsOf(i), pl, opts.DiversityWeight)
		}

		genBestIdx := argmaxFloat(fit)
		if fit[genBestIdx] > bestFit {
			bestFit = fit[genBestIdx]
			best = cloneSet(sets.LineupsOf(genBestIdx))
			bestGeneration = generation + 1
			unimproved = 0
			prof.RecordBestSolution(bestGeneration)
		} else {
			unimproved++
		}

		if opts.RefreshInterval > 0 && (generation+1)%opts.RefreshInterval == 0 {
			refreshPool(lp, lpFit, sets, fit, pl)
		}

		log.WithFields(logrus.Fields{
			"generation": generation + 1,
			"best_fit":   bestFit,
			"unimproved": unimproved,
		}).Debug("set generation complete")
	}
	prof.LoopDone()

	stagnated := unimproved >= opts.StopCriteria
	log.WithFields(logrus.Fields{
		"generations": generation,
		"best_fit":    bestFit,
		"stagnated":   stagnated,
		"aborted":     aborted,
	}).Info("set-based optimization finished")

	return &SetResult{
		BestSet:        best,
		BestSetFit:     bestFit,
		Generations:    generation,
		Stagnated:      stagnated,
		Aborted:        aborted,
		BestGeneration: bestGeneration,
	}, nil
}

// refreshPool replaces the worst-fitness third of LP with the best lineups
// observed anywhere in the current Sets population (spec.md §4.9.5 "pool
// evolution").
func refreshPool(lp [][]int, lpFit []float64, sets *LineupSets, setFit []float64, pl *pool.Pool) {
	worstCount := len(lp) / 3
	if worstCount == 0 {
		return
	}
	worstIdx := bottomKFloat(lpFit, worstCount)

	type candidate struct {
		lineup []int
		fit    float64
	}
	var candidates []candidate
	for k := 0; k < sets.K(); k++ {
		for _, lineup := range sets.LineupsOf(k) {
			f := 0.0
			for _, id := range lineup {
				f += pl.Player(id).Points
			}
			candidates = append(candidates, candidate{append([]int(nil), lineup...), f})
		}
	}
	topOrder := make([]int, len(candidates))
	for i := range topOrder {
		topOrder[i] = i
	}
	for i := 0; i < len(worstIdx) && i < len(topOrder); i++ {
		best := i
		for j := i + 1; j < len(topOrder); j++ {
			if candidates[topOrder[j]].fit > candidates[topOrder[best]].fit {
				best = j
			}
		}
		topOrder[i], topOrder[best] = topOrder[best], topOrder[i]
		slot := worstIdx[i]
		lp[slot] = append([]int(nil), candidates[topOrder[i]].lineup...)
		lpFit[slot] = candidates[topOrder[i]].fit
	}
}

func cloneSet(s [][]int) [][]int {
	out := make([][]int, len(s))
	for i, l := range s {
		out[i] = append([]int(nil), l...)
	}
	return out
}

func argmaxFloat(fit []float64) int {
	best := 0
	for i, f := range fit {
		if f > fit[best] {
			best = i
		}
	}
	return best
}

func topKFloat(fit []float64, k int) []int {
	idx := make([]int, len(fit))
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k && i < len(idx); i++ {
		best := i
		for j := i + 1; j < len(idx); j++ {
			if fit[idx[j]] > fit[idx[best]] {
				best = j
			}
		}
		idx[i], idx[best] = idx[best], idx[i]
	}
	if k > len(idx) {
		k = len(idx)
	}
	return idx[:k]
}

func bottomKFloat(fit []float64, k int) []int {
	idx := make([]int, len(fit))
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k && i < len(idx); i++ {
		worst := i
		for j := i + 1; j < len(idx); j++ {
			if fit[idx[j]] < fit[idx[worst]] {
				worst = j
			}
		}
		idx[i], idx[worst] = idx[worst], idx[i]
	}
	if k > len(idx) {
		k = len(idx)
	}
	return idx[:k]
}

func tournamentPick(fit []float64, rng *rand.Rand) int {
	best := rng.Intn(len(fit))
	for i := 0; i < 2; i++ {
		cand := rng.Intn(len(fit))
		if fit[cand] > fit[best] {
			best = cand
		}
	}
	return best
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
