package main

import (
	"math"

	"github.com/pthm-cable/hexflake/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config key for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Integer bool    // Rounded before use
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Seed grid
			{Name: "soup_density", Path: "primordial_soup_density", Min: 0.05, Max: 0.9},
			{Name: "soup_radius", Path: "primordial_soup_radius", Min: 1, Max: 12, Integer: true},
			// Rule tables
			{Name: "table_density", Path: "state_table_density", Min: 0.05, Max: 0.9},
			// Growth
			{Name: "iterations", Path: "num_iterations", Min: 2, Max: 40, Integer: true},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds and integer parameters are whole.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := max(spec.Min, min(spec.Max, v[i]))
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.PrimordialSoupDensity = clamped[0]
	cfg.PrimordialSoupRadius = int(clamped[1])
	cfg.StateTableDensity = clamped[2]
	cfg.NumIterations = int(clamped[3])
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.PrimordialSoupDensity,
		float64(cfg.PrimordialSoupRadius),
		cfg.StateTableDensity,
		float64(cfg.NumIterations),
	}
}
