// Command optimize is a thin entrypoint wiring config, logging, CSV
// ingestion, and the engine dispatcher together — not a full CLI, just
// enough surface to run the optimizer described in spec.md end to end, the
// way backend/cmd/server/main.go wires the teacher's HTTP service together.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/lineup-ga/internal/config"
	"github.com/stitts-dev/lineup-ga/internal/engine"
	"github.com/stitts-dev/lineup-ga/internal/logging"
	"github.com/stitts-dev/lineup-ga/internal/pool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log := logging.New()
	runID := uuid.NewString()
	entry := logging.WithRun(log, runID)

	entry.WithFields(logrus.Fields{
		"csv_path":        cfg.CSVPath,
		"population_size": cfg.PopulationSize,
		"target_lineups":  cfg.TargetLineups,
		"mode":            cfg.Mode,
	}).Info("starting lineup optimization run")

	rows, rowErrors, err := loadRows(cfg)
	if err != nil {
		entry.Fatalf("failed to load player rows: %v", err)
	}
	for _, e := range rowErrors {
		entry.WithError(e).Debug("dropped player row")
	}

	pl, dataErrors := pool.Build(rows, entry)
	for _, e := range dataErrors {
		entry.WithError(e).Debug("dropped player row")
	}
	if pl.Len() == 0 {
		entry.Fatal("player pool is empty after validation; nothing to optimize")
	}

	ctx := context.Background()
	result, err := engine.Run(ctx, cfg, pl, entry)
	if err != nil {
		entry.Fatalf("optimization failed: %v", err)
	}

	output := map[string]interface{}{
		"run_id":          runID,
		"best_lineup":     result.BestLineup,
		"best_score":      result.BestScore,
		"generations":     result.Generations,
		"stagnated":       result.Stagnated,
		"aborted":         result.Aborted,
		"best_generation": result.BestGeneration,
	}
	if result.Lineups != nil {
		output["lineups"] = result.Lineups
		output["scores"] = result.Scores
	}
	if result.Diversity != nil {
		output["diversity_metrics"] = map[string]interface{}{
			"avg_overlap": result.Diversity.AvgOverlap,
			"min_overlap": result.Diversity.MinOverlap,
			"relaxed":     result.Diversity.Relaxed,
			"shortfall":   result.Diversity.Shortfall,
		}
	}
	if result.Profiling != nil {
		output["profiling"] = map[string]interface{}{
			"total_time":            result.Profiling.TotalTime.String(),
			"setup_time":            result.Profiling.SetupTime.String(),
			"loop_time":             result.Profiling.LoopTime.String(),
			"time_to_best_solution": result.Profiling.TimeToBestSolution.String(),
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		entry.Fatalf("failed to encode result: %v", err)
	}
}

// loadRows reads the configured CSV into pool.Row values. CSV ingestion is
// an external collaborator to the core module (spec.md §1 out-of-scope); it
// lives here, at the composition root, rather than inside internal/pool. A
// row whose salary or points column doesn't parse as numeric is rejected
// outright — spec.md §7 names "non-numeric salary" as its own DataError, so
// a parse failure must never fall through as a zeroed Salary/Points that
// pool.Build's range checks would then silently accept.
func loadRows(cfg *config.Config) ([]pool.Row, []error, error) {
	f, err := os.Open(cfg.CSVPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("csv has no rows")
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	required := []string{cfg.PlayerColumn, cfg.PointsColumn, cfg.SalaryColumn, cfg.PositionColumn}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, nil, fmt.Errorf("csv missing required column %q", name)
		}
	}

	rows := make([]pool.Row, 0, len(records)-1)
	var rowErrors []error
	for i, rec := range records[1:] {
		salary, err := strconv.Atoi(rec[col[cfg.SalaryColumn]])
		if err != nil {
			rowErrors = append(rowErrors, &pool.DataError{Index: i, Reason: "non-numeric salary"})
			continue
		}
		points, err := strconv.ParseFloat(rec[col[cfg.PointsColumn]], 64)
		if err != nil {
			rowErrors = append(rowErrors, &pool.DataError{Index: i, Reason: "non-numeric points"})
			continue
		}
		rows = append(rows, pool.Row{
			Position: rec[col[cfg.PositionColumn]],
			Salary:   salary,
			Points:   points,
			Name:     rec[col[cfg.PlayerColumn]],
		})
	}
	return rows, rowErrors, nil
}
