package ga

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/lineup-ga/internal/pool"
	"github.com/stitts-dev/lineup-ga/internal/pospool"
	"github.com/stitts-dev/lineup-ga/internal/profiler"
)

// SelectMethod names a selection policy for the parent-selection step
// (spec.md §4.6). Elite selection is always "fittest", independent of this.
type SelectMethod string

const (
	SelectFittestMethod   SelectMethod = "fittest"
	SelectRouletteMethod  SelectMethod = "roulette"
	SelectTournamentMethod SelectMethod = "tournament"
)

// Options configures the single-lineup generational loop (spec.md §4.7).
type Options struct {
	PopulationSize int
	NGenerations   int
	StopCriteria   int
	EliteDivisor   int
	SelectMethod   SelectMethod
	TournamentSize int
	MutationRate   float64
	SalaryCap      int
	FlexPositions  []string
	Coeffs         []float64 // nil for plain sum-of-points fitness

	TopUpRetryBudget int // bounded retries when topping up a shrunk population
}

// Result is the outcome of Optimize (spec.md §4.7 return value / §6 output).
type Result struct {
	BestLineup []int
	BestFit    float64
	Population *Population
	Fitness    []float64

	Generations    int
	Stagnated      bool
	Aborted        bool
	BestGeneration int
}

// Optimize drives the single-lineup generational loop described in spec.md
// §4.7: elitism + roulette/tournament/fittest parent selection, uniform
// crossover, per-cell mutation, validate, top-up, and stop-on-stagnation.
func Optimize(ctx context.Context, pl *pool.Pool, pools *pospool.Pools, layout SlotLayout, opts Options, rng *rand.Rand, prof profiler.Profiler, log *logrus.Entry) (*Result, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	if prof == nil {
		prof = profiler.Noop()
	}

	validator := NewValidator(pl, layout, opts.SalaryCap, opts.FlexPositions)

	prof.SetupStarted()
	pop := Populate(pools, layout, opts.PopulationSize, rng)
	pop = validator.Validate(pop)
	pop, err := topUp(ctx, pop, opts.PopulationSize, pools, layout, validator, opts.TopUpRetryBudget, rng)
	if err != nil {
		return nil, err
	}
	if pop.K() == 0 {
		return nil, fmt.Errorf("ga: infeasible: no valid lineups after initial populate+validate")
	}
	prof.SetupDone()

	fit := Fitness(pop, pl, opts.Coeffs)
	bestIdx := argmax(fit)
	best := append([]int(nil), pop.Row(bestIdx)...)
	bestFit := fit[bestIdx]
	bestGeneration := 0
	unimproved := 0
	aborted := false

	eliteCount := opts.EliteDivisor
	if eliteCount <= 0 {
		eliteCount = 1
	}
	elites := opts.PopulationSize / eliteCount
	if elites < 1 {
		elites = 1
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

		prof.Start("select_elite")
		eliteIdx := SelectFittest(fit, elites)
		elitePop := pop.Select(eliteIdx)
		prof.Stop("select_elite")

		prof.Start("select_parents")
		var parentIdx []int
		switch opts.SelectMethod {
		case SelectRouletteMethod:
			parentIdx = SelectRoulette(fit, pop.K(), rng)
		case SelectTournamentMethod:
			parentIdx = SelectTournament(fit, pop.K(), opts.TournamentSize, rng)
		default:
			parentIdx = SelectFittest(fit, pop.K())
		}
		parents := pop.Select(parentIdx)
		prof.Stop("select_parents")

		prof.Start("crossover")
		children := Crossover(parents, rng)
		prof.Stop("crossover")

		prof.Start("mutate")
		Mutate(children, layout, pools, opts.MutationRate, rng)
		prof.Stop("mutate")

		prof.Start("validate")
		pop = validator.Validate(Concat(elitePop, children))
		prof.Stop("validate")

		select {
		case <-ctx.Done():
			aborted = true
		default:
		}
		if aborted {
			break
		}

		pop, err = topUp(ctx, pop, opts.PopulationSize, pools, layout, validator, opts.TopUpRetryBudget, rng)
		if err != nil {
			return nil, err
		}
		if pop.K() > opts.PopulationSize {
			fitTrim := Fitness(pop, pl, opts.Coeffs)
			keep := SelectFittest(fitTrim, opts.PopulationSize)
			pop = pop.Select(keep)
		}
		if pop.K() == 0 {
			return nil, fmt.Errorf("ga: infeasible: population collapsed to zero at generation %d", generation+1)
		}

		prof.Start("fitness")
		fit = Fitness(pop, pl, opts.Coeffs)
		prof.Stop("fitness")

		genBestIdx := argmax(fit)
		if fit[genBestIdx] > bestFit {
			bestFit = fit[genBestIdx]
			best = append([]int(nil), pop.Row(genBestIdx)...)
			bestGeneration = generation + 1
			unimproved = 0
			prof.RecordBestSolution(bestGeneration)
		} else {
			unimproved++
		}

		log.WithFields(logrus.Fields{
			"generation":  generation + 1,
			"best_fit":    bestFit,
			"unimproved":  unimproved,
			"pop_size":    pop.K(),
		}).Debug("generation complete")
	}
	prof.LoopDone()

	stagnated := unimproved >= opts.StopCriteria

	log.WithFields(logrus.Fields{
		"generations": generation,
		"best_fit":    bestFit,
		"stagnated":   stagnated,
		"aborted":     aborted,
	}).Info("optimization loop finished")

	return &Result{
		BestLineup:     best,
		BestFit:        bestFit,
		Population:     pop,
		Fitness:        fit,
		Generations:    generation,
		Stagnated:      stagnated,
		Aborted:        aborted,
		BestGeneration: bestGeneration,
	}, nil
}

// topUp rebuilds a shrunk population back toward target size using the same
// Populate+Validate path (spec.md §4.7 step 7, §9: "Top-up must use the same
// Populate+Validate path to preserve the stationary distribution over valid
// lineups"), bounded by retryBudget attempts.
func topUp(ctx context.Context, pop *Population, target int, pools *pospool.Pools, layout SlotLayout, validator *Validator, retryBudget int, rng *rand.Rand) (*Population, error) {
	if retryBudget <= 0 {
		retryBudget = 10
	}
	for attempt := 0; pop.K() < target && attempt < retryBudget; attempt++ {
		select {
		case <-ctx.Done():
			return pop, nil
		default:
		}
		need := target - pop.K()
		fresh := Populate(pools, layout, need*2+1, rng)
		fresh = validator.Validate(fresh)
		pop = Concat(pop, fresh)
		pop = validator.noGlobalDuplicates(pop)
	}
	return pop, nil
}

func argmax(fit []float64) int {
	best := 0
	for i, f := range fit {
		if f > fit[best] {
			best = i
		}
	}
	return best
}
