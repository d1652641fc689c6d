package ga

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/lineup-ga/internal/pool"
	"github.com/stitts-dev/lineup-ga/internal/pospool"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// toyPool builds a small, deterministic pool: 2 QBs, 3 RBs, 3 WRs, cheap
// enough that a 3-slot QB/RB/WR lineup can exist under a small salary cap.
func toyPool(t *testing.T) *pool.Pool {
	t.Helper()
	rows := []pool.Row{
		{Position: "QB", Salary: 5000, Points: 20, Name: "QB1"},
		{Position: "QB", Salary: 4500, Points: 18, Name: "QB2"},
		{Position: "RB", Salary: 4000, Points: 14, Name: "RB1"},
		{Position: "RB", Salary: 3500, Points: 12, Name: "RB2"},
		{Position: "RB", Salary: 3000, Points: 10, Name: "RB3"},
		{Position: "WR", Salary: 4000, Points: 13, Name: "WR1"},
		{Position: "WR", Salary: 3500, Points: 11, Name: "WR2"},
		{Position: "WR", Salary: 3000, Points: 9, Name: "WR3"},
	}
	pl, errs := pool.Build(rows, testLog())
	require.Empty(t, errs)
	return pl
}

func toyLayout() SlotLayout {
	return BuildSlotLayout(map[string]int{"QB": 1, "RB": 1, "WR": 1})
}

func toyPools(t *testing.T, pl *pool.Pool) *pospool.Pools {
	t.Helper()
	pools, err := pospool.Build(pl, nil, nil, testLog())
	require.NoError(t, err)
	return pools
}
