package multilineup

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/lineup-ga/internal/ga"
)

func toySetOptions() SetOptions {
	return SetOptions{
		PopulationSize:  20,
		NLineups:        3,
		LineupPoolSize:  200,
		NumClusters:     24,
		NGenerations:    15,
		StopCriteria:    8,
		EliteDivisor:    4,
		MutationProb:    0.1,
		Intensity:       IntensityMedium,
		DiversityWeight: 0.2,
		RefreshInterval: 5,
		SalaryCap:       12000,
	}
}

func TestSeedLineupPoolProducesValidatedLineups(t *testing.T) {
	pl := toyPool(t)
	pools := toyPools(t, pl)
	layout := toyLayout()

	lp := SeedLineupPool(pl, pools, layout, 100, 12000, nil, rand.New(rand.NewSource(1)))
	require.NotEmpty(t, lp)
	for _, lineup := range lp {
		total := 0
		for _, id := range lineup {
			total += pl.Player(id).Salary
		}
		assert.LessOrEqual(t, total, 12000)
	}
}

func TestSetFitnessPenalizesOverlap(t *testing.T) {
	pl := toyPool(t)
	overlapping := [][]int{{0, 2, 6}, {0, 2, 6}} // identical lineups: full overlap
	disjoint := [][]int{{0, 2, 6}, {1, 4, 8}}    // disjoint rosters: zero overlap

	rawOverlapping := setFitness(overlapping, pl, 0)
	rawDisjoint := setFitness(disjoint, pl, 0)

	penalizedOverlapping := setFitness(overlapping, pl, 0.5)
	penalizedDisjoint := setFitness(disjoint, pl, 0.5)

	assert.Less(t, penalizedOverlapping, rawOverlapping)
	assert.Equal(t, rawDisjoint, penalizedDisjoint) // zero overlap, no penalty applied
}

func TestSetCrossoverProducesDistinctLineupsWithinChild(t *testing.T) {
	lp := buildLineupPool(50)
	a := [][]int{{1000, 1001, 1002}, {1, 2, 3}, {10, 11, 12}}
	b := [][]int{{2000, 2001, 2002}, {4, 5, 6}, {13, 14, 15}}

	child := setCrossover(a, b, lp, rand.New(rand.NewSource(3)))
	require.Len(t, child, 3)
	seen := make(map[string]bool)
	for _, lineup := range child {
		key := sequenceKey(lineup)
		assert.False(t, seen[key], "set must not contain duplicate lineups")
		seen[key] = true
	}
}

func TestSetMutateNeverLeavesAnOverCapOrDuplicateLineup(t *testing.T) {
	pl := toyPool(t)
	pools := toyPools(t, pl)
	layout := toyLayout()
	const salaryCap = 10500 // cheapest lineup is 10100: tight enough that most single-player swaps blow the cap

	validator := ga.NewValidator(pl, layout, salaryCap, nil)
	lp := SeedLineupPool(pl, pools, layout, 50, salaryCap, nil, rand.New(rand.NewSource(1)))
	require.NotEmpty(t, lp)
	lpFit := make([]float64, len(lp))
	for i, row := range lp {
		for _, id := range row {
			lpFit[i] += pl.Player(id).Points
		}
	}

	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 200; trial++ {
		set := [][]int{append([]int(nil), lp[rng.Intn(len(lp))]...)}
		// mutationProb=1 and IntensityLow bias most trials toward the
		// single-swap branch, the one the set-based loop used to leave
		// unvalidated.
		setMutate(set, layout, pools, lp, lpFit, 1.0, IntensityLow, 0, validator, rng)
		for _, lineup := range set {
			assert.True(t, validator.ValidateOne(lineup))
		}
	}
}

func TestSetOptimizeReturnsFeasibleSet(t *testing.T) {
	pl := toyPool(t)
	pools := toyPools(t, pl)
	layout := toyLayout()

	res, err := Optimize(context.Background(), pl, pools, layout, toySetOptions(), rand.New(rand.NewSource(7)), nil, nil)
	require.NoError(t, err)
	require.Len(t, res.BestSet, 3)

	for _, lineup := range res.BestSet {
		total := 0
		for _, id := range lineup {
			total += pl.Player(id).Salary
		}
		assert.LessOrEqual(t, total, 12000)
	}
}

func TestSetOptimizeIsReproducibleForIdenticalSeed(t *testing.T) {
	pl := toyPool(t)
	pools := toyPools(t, pl)
	layout := toyLayout()
	opts := toySetOptions()

	resA, errA := Optimize(context.Background(), pl, pools, layout, opts, rand.New(rand.NewSource(42)), nil, nil)
	resB, errB := Optimize(context.Background(), pl, pools, layout, opts, rand.New(rand.NewSource(42)), nil, nil)
	require.NoError(t, errA)
	require.NoError(t, errB)

	assert.Equal(t, resA.BestSet, resB.BestSet)
	assert.Equal(t, resA.BestSetFit, resB.BestSetFit)
}

func TestSetOptimizeHonorsCancellation(t *testing.T) {
	pl := toyPool(t)
	pools := toyPools(t, pl)
	layout := toyLayout()

	opts := toySetOptions()
	opts.NGenerations = 100000
	opts.StopCriteria = 100000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Optimize(ctx, pl, pools, layout, opts, rand.New(rand.NewSource(9)), nil, nil)
	require.NoError(t, err)
	assert.True(t, res.Aborted)
}
