package ga

import (
	"math/rand"

	"github.com/stitts-dev/lineup-ga/internal/pospool"
)

// Mutate overwrites cell (r, c) with a freshly sampled id from the slot's
// position view (or the FLEX view) with per-cell probability rate (spec.md
// §4.6). This preserves slot invariants; duplicates and cap violations
// introduced by mutation are caught by the next Validate pass.
func Mutate(p *Population, layout SlotLayout, pools *pospool.Pools, rate float64, rng *rand.Rand) {
	views := make([]*pospool.View, layout.L())
	for c, slot := range layout.Slots {
		views[c] = pools.View(slot)
	}

	for r := 0; r < p.K(); r++ {
		row := p.Row(r)
		for c := range row {
			if rng.Float64() >= rate {
				continue
			}
			view := views[c]
			if view == nil {
				continue
			}
			row[c] = view.Sample(rng)
		}
	}
}
