package engine

import (
	"context"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/lineup-ga/internal/config"
	"github.com/stitts-dev/lineup-ga/internal/ga"
	"github.com/stitts-dev/lineup-ga/internal/multilineup"
	"github.com/stitts-dev/lineup-ga/internal/pool"
	"github.com/stitts-dev/lineup-ga/internal/pospool"
	"github.com/stitts-dev/lineup-ga/internal/profiler"
)

// largeScaleThreshold is the pool_size * target_lineups heuristic from
// spec.md §4.9.6: past this, fingerprint sampling is preferred over building
// the full similarity machinery the post-processing path relies on.
const largeScaleThreshold = 1000

// Run dispatches a single optimization request per spec.md §4.9.6:
//   - target_lineups == 1                       -> single-lineup loop
//   - mode == post_processing (and scale is small) -> single loop + post-selector
//   - otherwise (mode == set_based, the default)  -> set-based engine
//
// Run owns the run's single *rand.Rand, seeded once from cfg.Seed, so that
// identical seeds reproduce identical populations at every generation
// (spec.md §5) — no operator below this point touches the package-level
// math/rand source.
func Run(ctx context.Context, cfg *config.Config, pl *pool.Pool, log *logrus.Entry) (*Result, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Reason: err.Error()}
	}

	pools, err := pospool.Build(pl, cfg.PosFilter, cfg.FlexPositions, log)
	if err != nil {
		return nil, &InfeasibleError{Reason: err.Error()}
	}
	layout := ga.BuildSlotLayout(cfg.PosMap)
	for pos, count := range cfg.PosMap {
		if view := pools.View(pos); count > 0 && (view == nil || view.Len() == 0) {
			return nil, &ConfigError{Reason: "posmap position " + pos + " has no players in the pool"}
		}
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	var prof profiler.Profiler
	if cfg.EnableProfiling {
		prof = profiler.New()
	} else {
		prof = profiler.Noop()
	}

	if cfg.TargetLineups == 1 {
		return runSingle(ctx, cfg, pl, pools, layout, rng, prof, log)
	}

	mode := cfg.Mode
	scale := cfg.LineupPoolSize * cfg.TargetLineups
	if mode == config.ModePostProcessing && scale > largeScaleThreshold {
		log.WithFields(logrus.Fields{
			"lineup_pool_size": cfg.LineupPoolSize,
			"target_lineups":   cfg.TargetLineups,
		}).Warn("post_processing requested but scale exceeds heuristic threshold; using set_based engine")
		mode = config.ModeSetBased
	}

	if mode == config.ModePostProcessing {
		return runPostProcessing(ctx, cfg, pl, pools, layout, rng, prof, log)
	}
	return runSetBased(ctx, cfg, pl, pools, layout, rng, prof, log)
}

func toGASelectMethod(m config.SelectMethod) ga.SelectMethod {
	switch m {
	case config.SelectRoulette:
		return ga.SelectRouletteMethod
	case config.SelectTournament:
		return ga.SelectTournamentMethod
	default:
		return ga.SelectFittestMethod
	}
}

func toMultilineupMethod(m config.DiversityMethod) multilineup.Method {
	if m == config.DiversityHamming {
		return multilineup.Hamming
	}
	return multilineup.Jaccard
}

func gaOptions(cfg *config.Config) ga.Options {
	return ga.Options{
		PopulationSize:   cfg.PopulationSize,
		NGenerations:     cfg.NGenerations,
		StopCriteria:     cfg.StopCriteria,
		EliteDivisor:     cfg.EliteDivisor,
		SelectMethod:     toGASelectMethod(cfg.SelectMethod),
		TournamentSize:   cfg.TournamentSize,
		MutationRate:     cfg.MutationRate,
		SalaryCap:        cfg.SalaryCap,
		FlexPositions:    cfg.FlexPositions,
		TopUpRetryBudget: 10,
	}
}

func runSingle(ctx context.Context, cfg *config.Config, pl *pool.Pool, pools *pospool.Pools, layout ga.SlotLayout, rng *rand.Rand, prof profiler.Profiler, log *logrus.Entry) (*Result, error) {
	res, err := ga.Optimize(ctx, pl, pools, layout, gaOptions(cfg), rng, prof, log)
	if err != nil {
		return nil, &InfeasibleError{Reason: err.Error()}
	}
	out := &Result{
		BestLineup:     res.BestLineup,
		BestScore:      res.BestFit,
		Population:     res.Population.Rows(),
		Fitness:        res.Fitness,
		Generations:    res.Generations,
		Stagnated:      res.Stagnated,
		Aborted:        res.Aborted,
		BestGeneration: res.BestGeneration,
	}
	if cfg.EnableProfiling {
		snap := prof.Snapshot()
		out.Profiling = &snap
	}
	return out, nil
}

func runPostProcessing(ctx context.Context, cfg *config.Config, pl *pool.Pool, pools *pospool.Pools, layout ga.SlotLayout, rng *rand.Rand, prof profiler.Profiler, log *logrus.Entry) (*Result, error) {
	res, err := ga.Optimize(ctx, pl, pools, layout, gaOptions(cfg), rng, prof, log)
	if err != nil {
		return nil, &InfeasibleError{Reason: err.Error()}
	}

	selCfg := multilineup.PostSelectConfig{
		TargetLineups:       cfg.TargetLineups,
		DiversityWeight:     cfg.DiversityWeight,
		MinOverlapThreshold: cfg.MinOverlapThreshold,
		Method:              toMultilineupMethod(cfg.DiversityMethod),
	}
	selected := multilineup.PostSelect(res.Population.Rows(), res.Fitness, selCfg)

	out := &Result{
		BestLineup:  res.BestLineup,
		BestScore:   res.BestFit,
		Population:  res.Population.Rows(),
		Fitness:     res.Fitness,
		Lineups:     selected.Lineups,
		Scores:      selected.Scores,
		Generations: res.Generations,
		Stagnated:   res.Stagnated,
		Aborted:     res.Aborted,
		Diversity: &DiversityMetrics{
			AvgOverlap: selected.AvgOverlap,
			MinOverlap: selected.MinOverlap,
			Pairwise:   selected.Pairwise,
			Relaxed:    selected.Relaxed,
			Shortfall:  selected.Shortfall,
		},
		BestGeneration: res.BestGeneration,
	}
	if cfg.EnableProfiling {
		snap := prof.Snapshot()
		out.Profiling = &snap
	}
	return out, nil
}

func runSetBased(ctx context.Context, cfg *config.Config, pl *pool.Pool, pools *pospool.Pools, layout ga.SlotLayout, rng *rand.Rand, prof profiler.Profiler, log *logrus.Entry) (*Result, error) {
	opts := multilineup.SetOptions{
		PopulationSize:  cfg.PopulationSize,
		NLineups:        cfg.TargetLineups,
		LineupPoolSize:  cfg.LineupPoolSize,
		NGenerations:    cfg.NGenerations,
		StopCriteria:    cfg.StopCriteria,
		EliteDivisor:    cfg.EliteDivisor,
		MutationProb:    cfg.MutationRate,
		Intensity:       multilineup.IntensityAdaptive,
		DiversityWeight: cfg.DiversityWeight,
		RefreshInterval: cfg.StopCriteria, // refresh LP roughly once per stagnation window
		SalaryCap:       cfg.SalaryCap,
		FlexPositions:   cfg.FlexPositions,
	}
	res, err := multilineup.Optimize(ctx, pl, pools, layout, opts, rng, prof, log)
	if err != nil {
		return nil, &InfeasibleError{Reason: err.Error()}
	}

	method := toMultilineupMethod(cfg.DiversityMethod)
	pairwise := multilineup.PairwiseMatrix(method, res.BestSet)
	avg, min := multilineup.AvgMinPairwise(pairwise)

	scores := make([]float64, len(res.BestSet))
	for i, lineup := range res.BestSet {
		for _, id := range lineup {
			scores[i] += pl.Player(id).Points
		}
	}

	flatPopulation := make([][]int, 0, len(res.BestSet))
	flatPopulation = append(flatPopulation, res.BestSet...)

	out := &Result{
		BestLineup:  res.BestSet[argmaxScore(scores)],
		BestScore:   res.BestSetFit,
		Population:  flatPopulation,
		Fitness:     scores,
		Lineups:     res.BestSet,
		Scores:      scores,
		Generations: res.Generations,
		Stagnated:   res.Stagnated,
		Aborted:     res.Aborted,
		Diversity: &DiversityMetrics{
			AvgOverlap: avg,
			MinOverlap: min,
			Pairwise:   pairwise,
			Shortfall:  len(res.BestSet) < cfg.TargetLineups,
		},
		BestGeneration: res.BestGeneration,
	}
	if cfg.EnableProfiling {
		snap := prof.Snapshot()
		out.Profiling = &snap
	}
	return out, nil
}

func argmaxScore(scores []float64) int {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best
}
