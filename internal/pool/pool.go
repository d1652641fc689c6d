// Package pool builds the canonical Player Pool (spec.md §3, §4.1): a typed,
// dense-indexed, position-sorted table of players. It mirrors the validation
// style of the teacher's organizeByPosition/filterPlayers in
// internal/optimizer/algorithm.go, generalized from a fixed sport's position
// set to the configurable position set spec.md requires.
package pool

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Player is a single row of the pool. ID is the dense canonical index used
// throughout the GA (spec.md invariant: unique, dense, stable through a run).
// External carries an optional originating identity for presentation, not
// read by the core.
type Player struct {
	ID       int
	Position string
	Salary   int
	Points   float64

	Team      string
	Name      string
	Ownership float64
	External  uuid.UUID
}

// Row is the shape a RowSource yields before dense-id assignment.
type Row struct {
	Position string
	Salary   int
	Points   float64
	Team     string
	Name     string
}

// RowSource lets a caller hand in already-parsed rows (e.g. from a CSV reader)
// without this module depending on a CSV library — ingestion is an external
// collaborator per spec.md §1.
type RowSource interface {
	Rows() ([]Row, error)
}

// Pool is the immutable Player Pool described in spec.md §3: ordered by
// position, with dense ids assigned after validation and sorting.
type Pool struct {
	players       []Player
	positionStart map[string]int // first index of each position group
	positionEnd   map[string]int // one past the last index of each position group
}

// DataError signals a malformed input row (spec.md §7): missing required
// field or non-numeric salary. Rows carrying a DataError are dropped by
// Build, not escalated, unless the remaining pool cannot satisfy a caller's
// posmap (the caller escalates that to a ConfigError).
type DataError struct {
	Index  int
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("pool: row %d: %s", e.Index, e.Reason)
}

// Build validates rows and produces a position-sorted, densely-indexed Pool.
// Invalid rows (negative salary, negative points, empty position) are
// dropped; the caller receives the list of DataErrors for logging but Build
// itself never fails. An empty resulting pool is returned as is, and it is
// up to the caller to reject it.
func Build(rows []Row, log *logrus.Entry) (*Pool, []error) {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}

	var dataErrors []error
	valid := make([]Row, 0, len(rows))
	for i, r := range rows {
		if r.Position == "" {
			dataErrors = append(dataErrors, &DataError{Index: i, Reason: "missing position"})
			continue
		}
		if r.Salary < 0 {
			dataErrors = append(dataErrors, &DataError{Index: i, Reason: "negative salary"})
			continue
		}
		if r.Points < 0 {
			dataErrors = append(dataErrors, &DataError{Index: i, Reason: "negative points"})
			continue
		}
		valid = append(valid, r)
	}

	if len(dataErrors) > 0 {
		log.WithFields(logrus.Fields{
			"total_rows":   len(rows),
			"dropped_rows": len(dataErrors),
		}).Warn("dropped invalid player rows")
	}

	// Sort by position for cache-friendly per-position slicing (spec.md §3
	// invariant), stable so ties keep input order.
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Position < valid[j].Position })

	players := make([]Player, len(valid))
	positionStart := make(map[string]int)
	positionEnd := make(map[string]int)
	for i, r := range valid {
		players[i] = Player{
			ID:       i,
			Position: r.Position,
			Salary:   r.Salary,
			Points:   r.Points,
			Team:     r.Team,
			Name:     r.Name,
		}
		if _, ok := positionStart[r.Position]; !ok {
			positionStart[r.Position] = i
		}
		positionEnd[r.Position] = i + 1
	}

	log.WithFields(logrus.Fields{
		"player_count":   len(players),
		"position_count": len(positionStart),
	}).Info("player pool built")

	return &Pool{players: players, positionStart: positionStart, positionEnd: positionEnd}, dataErrors
}

// Players returns the full dense-indexed player table. Callers must not
// mutate the returned slice; the Pool is immutable for the run.
func (p *Pool) Players() []Player { return p.players }

// Len returns the number of players in the pool.
func (p *Pool) Len() int { return len(p.players) }

// Positions returns the contiguous slice of players for a position.
func (p *Pool) Positions(position string) []Player {
	start, ok := p.positionStart[position]
	if !ok {
		return nil
	}
	return p.players[start:p.positionEnd[position]]
}

// Player returns the player at dense index id.
func (p *Pool) Player(id int) Player { return p.players[id] }

// PositionNames returns every distinct position present in the pool.
func (p *Pool) PositionNames() []string {
	names := make([]string, 0, len(p.positionStart))
	for name := range p.positionStart {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
