package ga

import "github.com/stitts-dev/lineup-ga/internal/pool"

// Fitness computes fit[r] = sum of points[Pop[r,c]] for every row (spec.md
// §4.5): a gather over the pool's points table followed by a row sum, O(K*L).
// coeffs, when non-nil, scales each column (Captain Mode's 1.5x on slot 0).
func Fitness(p *Population, pl *pool.Pool, coeffs []float64) []float64 {
	fit := make([]float64, p.K())
	for r := 0; r < p.K(); r++ {
		row := p.Row(r)
		total := 0.0
		for c, id := range row {
			points := pl.Player(id).Points
			if coeffs != nil {
				points *= coeffs[c]
			}
			total += points
		}
		fit[r] = total
	}
	return fit
}

// CaptainModeCoeffs returns a coefficient vector with a 1.5x multiplier on
// slot 0 (the captain/MVP slot) and 1.0 elsewhere, per spec.md §4.5's
// "Captain Mode" variant.
func CaptainModeCoeffs(l int) []float64 {
	c := make([]float64, l)
	for i := range c {
		c[i] = 1.0
	}
	if l > 0 {
		c[0] = 1.5
	}
	return c
}
