package ga

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toyOptions() Options {
	return Options{
		PopulationSize:   64,
		NGenerations:     30,
		StopCriteria:     10,
		EliteDivisor:     4,
		SelectMethod:     SelectTournamentMethod,
		TournamentSize:   3,
		MutationRate:     0.05,
		SalaryCap:        12000,
		TopUpRetryBudget: 5,
	}
}

func TestOptimizeFindsAFeasibleLineupOnToyPool(t *testing.T) {
	pl := toyPool(t)
	pools := toyPools(t, pl)
	layout := toyLayout()

	res, err := Optimize(context.Background(), pl, pools, layout, toyOptions(), rand.New(rand.NewSource(1)), nil, nil)
	require.NoError(t, err)
	require.Len(t, res.BestLineup, 3)

	total := 0
	for _, id := range res.BestLineup {
		total += pl.Player(id).Salary
	}
	assert.LessOrEqual(t, total, 12000)
}

func TestOptimizeStopsOnStagnation(t *testing.T) {
	pl := toyPool(t)
	pools := toyPools(t, pl)
	layout := toyLayout()

	opts := toyOptions()
	opts.NGenerations = 10000
	opts.StopCriteria = 3

	res, err := Optimize(context.Background(), pl, pools, layout, opts, rand.New(rand.NewSource(2)), nil, nil)
	require.NoError(t, err)
	assert.True(t, res.Stagnated)
	assert.Less(t, res.Generations, opts.NGenerations)
}

func TestOptimizeIsReproducibleForIdenticalSeed(t *testing.T) {
	pl := toyPool(t)
	pools := toyPools(t, pl)
	layout := toyLayout()
	opts := toyOptions()

	resA, errA := Optimize(context.Background(), pl, pools, layout, opts, rand.New(rand.NewSource(123)), nil, nil)
	resB, errB := Optimize(context.Background(), pl, pools, layout, opts, rand.New(rand.NewSource(123)), nil, nil)
	require.NoError(t, errA)
	require.NoError(t, errB)

	assert.Equal(t, resA.BestLineup, resB.BestLineup)
	assert.Equal(t, resA.BestFit, resB.BestFit)
	assert.Equal(t, resA.Generations, resB.Generations)
}

func TestOptimizeHonorsCancellation(t *testing.T) {
	pl := toyPool(t)
	pools := toyPools(t, pl)
	layout := toyLayout()

	opts := toyOptions()
	opts.NGenerations = 100000
	opts.StopCriteria = 100000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Optimize(ctx, pl, pools, layout, opts, rand.New(rand.NewSource(4)), nil, nil)
	require.NoError(t, err)
	assert.True(t, res.Aborted)
}
