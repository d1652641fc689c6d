package pool

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestBuildDropsInvalidRows(t *testing.T) {
	rows := []Row{
		{Position: "QB", Salary: 8000, Points: 20, Name: "A"},
		{Position: "", Salary: 5000, Points: 10, Name: "B"},        // missing position
		{Position: "RB", Salary: -100, Points: 10, Name: "C"},      // negative salary
		{Position: "WR", Salary: 6000, Points: -5, Name: "D"},      // negative points
		{Position: "WR", Salary: 6000, Points: 15, Name: "E"},
	}

	pl, errs := Build(rows, testLog())
	require.Len(t, errs, 3)
	assert.Equal(t, 2, pl.Len())
}

func TestBuildAssignsDenseIDsSortedByPosition(t *testing.T) {
	rows := []Row{
		{Position: "WR", Salary: 6000, Points: 15, Name: "W1"},
		{Position: "QB", Salary: 8000, Points: 20, Name: "Q1"},
		{Position: "WR", Salary: 5500, Points: 12, Name: "W2"},
	}
	pl, errs := Build(rows, testLog())
	require.Empty(t, errs)
	require.Equal(t, 3, pl.Len())

	for i, p := range pl.Players() {
		assert.Equal(t, i, p.ID)
	}

	qbs := pl.Positions("QB")
	require.Len(t, qbs, 1)
	assert.Equal(t, "Q1", qbs[0].Name)

	wrs := pl.Positions("WR")
	require.Len(t, wrs, 2)
}

func TestPositionsUnknownReturnsNil(t *testing.T) {
	pl, _ := Build([]Row{{Position: "QB", Salary: 8000, Points: 20}}, testLog())
	assert.Nil(t, pl.Positions("RB"))
}

func TestPositionNamesSortedAndDistinct(t *testing.T) {
	rows := []Row{
		{Position: "WR", Salary: 6000, Points: 15},
		{Position: "QB", Salary: 8000, Points: 20},
		{Position: "WR", Salary: 5500, Points: 12},
	}
	pl, _ := Build(rows, testLog())
	assert.Equal(t, []string{"QB", "WR"}, pl.PositionNames())
}
