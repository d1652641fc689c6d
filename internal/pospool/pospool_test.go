package pospool

import (
	"io"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/lineup-ga/internal/pool"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func samplePool(t *testing.T) *pool.Pool {
	t.Helper()
	rows := []pool.Row{
		{Position: "QB", Salary: 8000, Points: 24},
		{Position: "RB", Salary: 7000, Points: 18},
		{Position: "RB", Salary: 5000, Points: 10},
		{Position: "WR", Salary: 6000, Points: 16},
		{Position: "WR", Salary: 4000, Points: 8},
	}
	pl, errs := pool.Build(rows, testLog())
	require.Empty(t, errs)
	return pl
}

func TestBuildCreatesPerPositionViews(t *testing.T) {
	pl := samplePool(t)
	pools, err := Build(pl, nil, []string{"RB", "WR"}, testLog())
	require.NoError(t, err)

	qb := pools.View("QB")
	require.NotNil(t, qb)
	assert.Equal(t, 1, qb.Len())

	flex := pools.View(FlexName)
	require.NotNil(t, flex)
	assert.Equal(t, 4, flex.Len())
}

func TestBuildAppliesPosFilterThreshold(t *testing.T) {
	pl := samplePool(t)
	pools, err := Build(pl, map[string]float64{"RB": 15}, nil, testLog())
	require.NoError(t, err)

	rb := pools.View("RB")
	require.NotNil(t, rb)
	assert.Equal(t, 1, rb.Len())
}

func TestViewAbsentWhenEntirelyFiltered(t *testing.T) {
	pl := samplePool(t)
	pools, err := Build(pl, map[string]float64{"QB": 1000}, nil, testLog())
	require.NoError(t, err)
	assert.Nil(t, pools.View("QB"))
}

func TestSampleIsDeterministicForFixedSeed(t *testing.T) {
	pl := samplePool(t)
	pools, err := Build(pl, nil, nil, testLog())
	require.NoError(t, err)
	view := pools.View("RB")
	require.NotNil(t, view)

	rngA := rand.New(rand.NewSource(42))
	rngB := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		assert.Equal(t, view.Sample(rngA), view.Sample(rngB))
	}
}

func TestAliasSamplerCoversAllIndices(t *testing.T) {
	weights := []float64{0.1, 0.2, 0.3, 0.4}
	s := newAliasSampler(weights)
	rng := rand.New(rand.NewSource(7))

	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		seen[s.draw(rng)] = true
	}
	assert.Len(t, seen, len(weights))
}
