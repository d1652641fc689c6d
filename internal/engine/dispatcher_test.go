package engine

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/lineup-ga/internal/config"
	"github.com/stitts-dev/lineup-ga/internal/pool"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func toyPool(t *testing.T) *pool.Pool {
	t.Helper()
	rows := []pool.Row{
		{Position: "QB", Salary: 5000, Points: 20, Name: "QB1"},
		{Position: "QB", Salary: 4500, Points: 18, Name: "QB2"},
		{Position: "RB", Salary: 4000, Points: 14, Name: "RB1"},
		{Position: "RB", Salary: 3500, Points: 12, Name: "RB2"},
		{Position: "RB", Salary: 3000, Points: 10, Name: "RB3"},
		{Position: "RB", Salary: 2800, Points: 9, Name: "RB4"},
		{Position: "WR", Salary: 4000, Points: 13, Name: "WR1"},
		{Position: "WR", Salary: 3500, Points: 11, Name: "WR2"},
		{Position: "WR", Salary: 3000, Points: 9, Name: "WR3"},
		{Position: "WR", Salary: 2800, Points: 8, Name: "WR4"},
	}
	pl, errs := pool.Build(rows, testLog())
	require.Empty(t, errs)
	return pl
}

func baseConfig() *config.Config {
	return &config.Config{
		PopulationSize:  64,
		NGenerations:    25,
		StopCriteria:    8,
		EliteDivisor:    4,
		SelectMethod:    config.SelectTournament,
		TournamentSize:  3,
		MutationRate:    0.05,
		Seed:            1,
		SalaryCap:       12000,
		PosMap:          map[string]int{"QB": 1, "RB": 1, "WR": 1},
		TargetLineups:   1,
		Mode:            config.ModeSetBased,
		DiversityWeight: 0.2,
		MinOverlapThreshold: 0.2,
		DiversityMethod: config.DiversityJaccard,
		LineupPoolSize:  150,
	}
}

func TestRunSingleLineupPath(t *testing.T) {
	cfg := baseConfig()
	cfg.TargetLineups = 1
	pl := toyPool(t)

	res, err := Run(context.Background(), cfg, pl, testLog())
	require.NoError(t, err)
	require.Len(t, res.BestLineup, 3)
	assert.Nil(t, res.Lineups)
}

func TestRunPostProcessingPath(t *testing.T) {
	cfg := baseConfig()
	cfg.TargetLineups = 3
	cfg.Mode = config.ModePostProcessing
	cfg.LineupPoolSize = 5 // keep pool_size*target_lineups small so the heuristic doesn't override
	pl := toyPool(t)

	res, err := Run(context.Background(), cfg, pl, testLog())
	require.NoError(t, err)
	require.NotNil(t, res.Diversity)
	assert.LessOrEqual(t, len(res.Lineups), 3)
}

func TestRunSetBasedPath(t *testing.T) {
	cfg := baseConfig()
	cfg.TargetLineups = 3
	cfg.Mode = config.ModeSetBased
	pl := toyPool(t)

	res, err := Run(context.Background(), cfg, pl, testLog())
	require.NoError(t, err)
	require.Len(t, res.Lineups, 3)
	require.NotNil(t, res.Diversity)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.EliteDivisor = 0
	pl := toyPool(t)

	_, err := Run(context.Background(), cfg, pl, testLog())
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRunIsReproducibleForIdenticalSeed(t *testing.T) {
	cfg := baseConfig()
	pl := toyPool(t)

	resA, errA := Run(context.Background(), cfg, pl, testLog())
	resB, errB := Run(context.Background(), cfg, pl, testLog())
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, resA.BestLineup, resB.BestLineup)
}
