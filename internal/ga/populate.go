package ga

import (
	"math/rand"

	"github.com/stitts-dev/lineup-ga/internal/pospool"
)

// Populate builds an initial [K x L] population by weighted sampling
// (spec.md §4.3): for each slot, draw an id from the slot's position view
// (or the FLEX view for FLEX slots), independently across rows. This biases
// the initial population toward efficient points-per-dollar players without
// fixing any particular lineup — the same rationale spec.md §9 gives for
// requiring weighted sampling over uniform.
func Populate(pools *pospool.Pools, layout SlotLayout, k int, rng *rand.Rand) *Population {
	pop := NewPopulation(k, layout.L())
	views := make([]*pospool.View, layout.L())
	for c, slot := range layout.Slots {
		views[c] = pools.View(slot)
	}

	for r := 0; r < k; r++ {
		row := pop.Row(r)
		for c, view := range views {
			if view == nil {
				row[c] = -1 // no players available for this slot; Validate drops the row
				continue
			}
			row[c] = view.Sample(rng)
		}
	}
	return pop
}
