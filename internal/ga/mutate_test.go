package ga

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutateRateZeroLeavesPopulationUnchanged(t *testing.T) {
	pl := toyPool(t)
	pools := toyPools(t, pl)
	layout := toyLayout()

	pop := PopulationFromRows([][]int{{0, 2, 5}})
	before := append([]int(nil), pop.Row(0)...)
	Mutate(pop, layout, pools, 0.0, rand.New(rand.NewSource(1)))
	assert.Equal(t, before, pop.Row(0))
}

func TestMutateRateOneChangesEverySlotToPositionCompatibleID(t *testing.T) {
	pl := toyPool(t)
	pools := toyPools(t, pl)
	layout := toyLayout()

	pop := PopulationFromRows([][]int{{0, 2, 5}})
	Mutate(pop, layout, pools, 1.0, rand.New(rand.NewSource(1)))

	row := pop.Row(0)
	for c, id := range row {
		assert.Equal(t, layout.Slots[c], pl.Player(id).Position)
	}
}
