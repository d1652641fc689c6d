// Package pospool builds per-position weighted-sampling views (spec.md §3,
// §4.2): probability proportional to points-per-dollar, with a synthetic FLEX
// view concatenating FLEX-eligible positions. It generalizes the teacher's
// organizeByPosition (internal/optimizer/algorithm.go), which sorted players
// by value but sampled none of them — spec.md requires an actual categorical
// distribution, built here with the alias method spec.md §9 calls for.
package pospool

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/lineup-ga/internal/pool"
)

// FlexName is the canonical synthetic position spec.md §3 describes.
const FlexName = "FLEX"

// View is a per-position weighted-sampling distribution: {ids, salary,
// points, prob}, where prob is a true distribution over the view's rows.
type View struct {
	IDs     []int
	Salary  []int
	Points  []float64
	Prob    []float64
	sampler *aliasSampler
}

// Sample draws one id according to Prob, using rng for determinism
// (spec.md §5: identical seed ⇒ identical draws).
func (v *View) Sample(rng *rand.Rand) int {
	if len(v.IDs) == 0 {
		return -1
	}
	i := v.sampler.draw(rng)
	return v.IDs[i]
}

// Len reports the number of players in the view.
func (v *View) Len() int { return len(v.IDs) }

// Pools maps each configured position (plus the synthetic FLEX position) to
// its View.
type Pools struct {
	views map[string]*View
}

// View returns the named position's view, or nil if absent (e.g. every
// player in that position was filtered out).
func (p *Pools) View(position string) *View { return p.views[position] }

// Build constructs per-position views from a Pool, a minimum-projected-points
// filter per position (spec.md §4.2 posfilter), and the set of FLEX-eligible
// positions.
func Build(pl *pool.Pool, posFilter map[string]float64, flexPositions []string, log *logrus.Entry) (*Pools, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}

	views := make(map[string]*View)
	for _, position := range pl.PositionNames() {
		threshold := posFilter[position]
		view, err := buildView(pl.Positions(position), threshold)
		if err != nil {
			return nil, fmt.Errorf("pospool: position %s: %w", position, err)
		}
		if view.Len() == 0 {
			log.WithField("position", position).Warn("position view is empty after filtering")
			continue
		}
		views[position] = view
	}

	if len(flexPositions) > 0 {
		var flexPlayers []pool.Player
		for _, position := range flexPositions {
			flexPlayers = append(flexPlayers, pl.Positions(position)...)
		}
		flexView, err := buildView(flexPlayers, 0)
		if err != nil {
			return nil, fmt.Errorf("pospool: flex: %w", err)
		}
		views[FlexName] = flexView
	}

	return &Pools{views: views}, nil
}

// buildView computes prob[i] = (points[i]/salary[i]) / sum(points[j]/salary[j])
// over players passing the min-points threshold and carrying salary > 0
// (spec.md §4.2: zero-salary rows are dropped, division by zero undefined).
func buildView(players []pool.Player, minPoints float64) (*View, error) {
	ids := make([]int, 0, len(players))
	salaries := make([]int, 0, len(players))
	points := make([]float64, 0, len(players))
	values := make([]float64, 0, len(players))

	for _, p := range players {
		if p.Salary <= 0 {
			continue
		}
		if p.Points < minPoints {
			continue
		}
		value := p.Points / float64(p.Salary)
		if value <= 0 {
			continue
		}
		ids = append(ids, p.ID)
		salaries = append(salaries, p.Salary)
		points = append(points, p.Points)
		values = append(values, value)
	}

	if len(ids) == 0 {
		return &View{}, nil
	}

	total := 0.0
	for _, v := range values {
		total += v
	}
	prob := make([]float64, len(values))
	for i, v := range values {
		prob[i] = v / total
	}

	return &View{
		IDs:     ids,
		Salary:  salaries,
		Points:  points,
		Prob:    prob,
		sampler: newAliasSampler(prob),
	}, nil
}

// aliasSampler implements Walker's alias method for O(1) weighted sampling
// from a fixed categorical distribution, as spec.md §9 recommends over
// repeated cumulative-probability binary search.
type aliasSampler struct {
	prob  []float64 // per-slot acceptance probability
	alias []int     // per-slot alias index
}

func newAliasSampler(weights []float64) *aliasSampler {
	n := len(weights)
	scaled := make([]float64, n)
	for i, w := range weights {
		scaled[i] = w * float64(n)
	}

	prob := make([]float64, n)
	alias := make([]int, n)

	var small, large []int
	for i, s := range scaled {
		if s < 1.0 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		prob[s] = scaled[s]
		alias[s] = l

		scaled[l] = scaled[l] + scaled[s] - 1.0
		if scaled[l] < 1.0 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}

	for _, l := range large {
		prob[l] = 1.0
	}
	for _, s := range small {
		prob[s] = 1.0
	}

	return &aliasSampler{prob: prob, alias: alias}
}

func (a *aliasSampler) draw(rng *rand.Rand) int {
	n := len(a.prob)
	i := rng.Intn(n)
	if rng.Float64() < a.prob[i] {
		return i
	}
	return a.alias[i]
}
