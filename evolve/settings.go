package evolve

import (
	"log/slog"

	"github.com/pthm-cable/hexflake/fitness"
)

// Settings is the per-run record consumed by the driver. Values are assumed
// valid; config.Validate checks them before a run starts.
type Settings struct {
	PopulationSize        int            `yaml:"population_sz" json:"population_sz"`
	NumChildren           int            `yaml:"num_children" json:"num_children"`
	NumStates             int            `yaml:"num_states" json:"num_states"`
	PrimordialSoupDensity float64        `yaml:"primordial_soup_density" json:"primordial_soup_density"`
	PrimordialSoupRadius  int            `yaml:"primordial_soup_radius" json:"primordial_soup_radius"`
	StateTableDensity     float64        `yaml:"state_table_density" json:"state_table_density"`
	MaxGenerations        int            `yaml:"max_generations" json:"max_generations"`
	TriesPerGeneration    int            `yaml:"tries_per_generation" json:"tries_per_generation"`
	NumIterations         int            `yaml:"num_iterations" json:"num_iterations"`
	NumOutputSnowflakes   int            `yaml:"num_output_snowflakes" json:"num_output_snowflakes"`
	Workers               int            `yaml:"workers" json:"workers"` // evaluation goroutines, 0 = GOMAXPROCS
	ScoreParams           fitness.Params `yaml:"score_params" json:"score_params"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s Settings) LogValue() slog.Value {
	p := s.ScoreParams
	return slog.GroupValue(
		slog.Int("population_sz", s.PopulationSize),
		slog.Int("num_children", s.NumChildren),
		slog.Int("num_states", s.NumStates),
		slog.Float64("primordial_soup_density", s.PrimordialSoupDensity),
		slog.Int("primordial_soup_radius", s.PrimordialSoupRadius),
		slog.Float64("state_table_density", s.StateTableDensity),
		slog.Int("max_generations", s.MaxGenerations),
		slog.Int("tries_per_generation", s.TriesPerGeneration),
		slog.Int("num_iterations", s.NumIterations),
		slog.Int("num_output_snowflakes", s.NumOutputSnowflakes),
		slog.Int("workers", s.Workers),
		slog.Group("score_params",
			slog.Float64("connectedness_weight", p.ConnectednessWeight),
			slog.Float64("airiness_weight", p.AirinessWeight),
			slog.Float64("spikiness_weight", p.SpikinessWeight),
			slog.Float64("cragginess_weight", p.CragginessWeight),
			slog.Float64("min_density", p.MinDensity),
			slog.Float64("max_density", p.MaxDensity),
			slog.Int("min_radius", p.MinRadius),
			slog.Int("max_radius", p.MaxRadius),
		),
	)
}
