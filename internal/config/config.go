// Package config loads genetic-algorithm run configuration via viper, following
// the same mapstructure + SetDefault + AutomaticEnv pattern the rest of the
// dfs-sim services use for their own Config structs.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/viper"
)

// SelectMethod names a selection policy (spec.md §4.6).
type SelectMethod string

const (
	SelectFittest   SelectMethod = "fittest"
	SelectRoulette  SelectMethod = "roulette"
	SelectTournament SelectMethod = "tournament"
)

// DiversityMethod names a lineup-similarity measure (spec.md §4.8).
type DiversityMethod string

const (
	DiversityJaccard DiversityMethod = "jaccard"
	DiversityHamming DiversityMethod = "hamming"
)

// Mode selects the multilineup strategy (spec.md §4.9.6).
type Mode string

const (
	ModePostProcessing Mode = "post_processing"
	ModeSetBased       Mode = "set_based"
)

// Config mirrors the option table in spec.md §6.
type Config struct {
	// Player pool / data mapping. CSV ingestion itself is an external
	// collaborator (spec.md §1 Out-of-scope) — these fields only steer it.
	CSVPath         string `mapstructure:"CSV_PATH"`
	PlayerColumn    string `mapstructure:"PLAYER_COLUMN"`
	PointsColumn    string `mapstructure:"POINTS_COLUMN"`
	SalaryColumn    string `mapstructure:"SALARY_COLUMN"`
	PositionColumn  string `mapstructure:"POSITION_COLUMN"`

	// GA loop.
	PopulationSize int          `mapstructure:"POPULATION_SIZE"`
	NGenerations   int          `mapstructure:"N_GENERATIONS"`
	StopCriteria   int          `mapstructure:"STOP_CRITERIA"`
	EliteDivisor   int          `mapstructure:"ELITE_DIVISOR"`
	SelectMethod   SelectMethod `mapstructure:"SELECT_METHOD"`
	TournamentSize int          `mapstructure:"TOURNAMENT_SIZE"`
	MutationRate   float64      `mapstructure:"MUTATION_RATE"`
	Seed           int64        `mapstructure:"SEED"`

	// Constraints.
	SalaryCap int                `mapstructure:"SALARY_CAP"`
	PosMap    map[string]int     `mapstructure:"-"`
	FlexPositions []string       `mapstructure:"-"`
	PosFilter     map[string]float64 `mapstructure:"-"`

	// Multilineup.
	TargetLineups       int             `mapstructure:"TARGET_LINEUPS"`
	Mode                Mode            `mapstructure:"MODE"`
	DiversityWeight     float64         `mapstructure:"DIVERSITY_WEIGHT"`
	MinOverlapThreshold float64         `mapstructure:"MIN_OVERLAP_THRESHOLD"`
	DiversityMethod     DiversityMethod `mapstructure:"DIVERSITY_METHOD"`
	LineupPoolSize      int             `mapstructure:"LINEUP_POOL_SIZE"`

	// Profiling.
	EnableProfiling bool `mapstructure:"ENABLE_PROFILING"`
}

// Load reads configuration with viper, applying the same defaults-then-env
// precedence as backend/pkg/config.LoadConfig.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.SetDefault("POPULATION_SIZE", 256)
	viper.SetDefault("N_GENERATIONS", 200)
	viper.SetDefault("STOP_CRITERIA", 20)
	viper.SetDefault("ELITE_DIVISOR", 10)
	viper.SetDefault("SELECT_METHOD", string(SelectTournament))
	viper.SetDefault("TOURNAMENT_SIZE", 4)
	viper.SetDefault("MUTATION_RATE", 0.05)
	viper.SetDefault("SEED", 0)
	viper.SetDefault("SALARY_CAP", 50000)
	viper.SetDefault("TARGET_LINEUPS", 1)
	viper.SetDefault("MODE", string(ModeSetBased))
	viper.SetDefault("DIVERSITY_WEIGHT", 0.2)
	viper.SetDefault("MIN_OVERLAP_THRESHOLD", 0.2)
	viper.SetDefault("DIVERSITY_METHOD", string(DiversityJaccard))
	viper.SetDefault("LINEUP_POOL_SIZE", 25000)
	viper.SetDefault("ENABLE_PROFILING", false)
	viper.SetDefault("POSMAP_JSON", "")
	viper.SetDefault("FLEX_POSITIONS_JSON", "")
	viper.SetDefault("POSFILTER_JSON", "")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// PosMap, FlexPositions, and PosFilter are maps/slices keyed by slot
	// position name, not scalars, so they don't fit viper's flat env-var
	// decoding (hence mapstructure:"-" above) — decode them from their own
	// JSON-encoded env vars instead, the same way the rest of Config reads
	// from the environment.
	if err := decodeJSONEnv("POSMAP_JSON", &cfg.PosMap); err != nil {
		return nil, err
	}
	if err := decodeJSONEnv("FLEX_POSITIONS_JSON", &cfg.FlexPositions); err != nil {
		return nil, err
	}
	if err := decodeJSONEnv("POSFILTER_JSON", &cfg.PosFilter); err != nil {
		return nil, err
	}

	return &cfg, cfg.Validate()
}

// decodeJSONEnv unmarshals the JSON string viper read for key into dst,
// leaving dst untouched when the var is unset (empty string).
func decodeJSONEnv(key string, dst interface{}) error {
	raw := viper.GetString(key)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("config: %s is not valid JSON: %w", key, err)
	}
	return nil
}

// Validate enforces the ConfigError edges from spec.md §7 that need no player
// pool: elite_divisor == 0, negative salary cap, non-positive population size
// or target_lineups, empty posmap, and FLEX slots requested with no
// flex_positions. Posmap positions are not checked against the pool here;
// engine.Run does that after building the position views.
func (c *Config) Validate() error {
	if c.EliteDivisor == 0 {
		return fmt.Errorf("config: elite_divisor must not be zero")
	}
	if c.SalaryCap < 0 {
		return fmt.Errorf("config: salary_cap must not be negative")
	}
	if c.PopulationSize <= 0 {
		return fmt.Errorf("config: population_size must be positive")
	}
	if c.TargetLineups <= 0 {
		return fmt.Errorf("config: target_lineups must be positive")
	}
	if len(c.PosMap) == 0 {
		return fmt.Errorf("config: posmap must not be empty")
	}
	if flexCount, ok := c.PosMap["FLEX"]; ok && flexCount > 0 && len(c.FlexPositions) == 0 {
		return fmt.Errorf("config: posmap requests FLEX slots but flex_positions is empty")
	}
	return nil
}

// EliteCount clamps K/elite_divisor to at least 1 (spec.md §8 boundary case:
// population_size < elite_divisor).
func (c *Config) EliteCount() int {
	n := c.PopulationSize / c.EliteDivisor
	if n < 1 {
		n = 1
	}
	return n
}
