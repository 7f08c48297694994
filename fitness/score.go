// Package fitness scores finished grids on how snowflake-like they look.
package fitness

import (
	"log/slog"

	"github.com/pthm-cable/hexflake/hex"
)

// Params holds the metric weights and the acceptance bounds.
type Params struct {
	ConnectednessWeight float64 `yaml:"connectedness_weight" json:"connectedness_weight"`
	AirinessWeight      float64 `yaml:"airiness_weight" json:"airiness_weight"`
	SpikinessWeight     float64 `yaml:"spikiness_weight" json:"spikiness_weight"`
	CragginessWeight    float64 `yaml:"cragginess_weight" json:"cragginess_weight"`
	MinDensity          float64 `yaml:"min_density" json:"min_density"`
	MaxDensity          float64 `yaml:"max_density" json:"max_density"`
	MinRadius           int     `yaml:"min_radius" json:"min_radius"`
	MaxRadius           int     `yaml:"max_radius" json:"max_radius"`
}

// Reject says which check zeroed a score.
type Reject uint8

const (
	RejectNone Reject = iota
	RejectDisconnected
	RejectRadius
	RejectDensity
	RejectEmpty
)

func (r Reject) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectDisconnected:
		return "disconnected"
	case RejectRadius:
		return "radius"
	case RejectDensity:
		return "density"
	case RejectEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Metrics is the breakdown behind a score. Fields after the rejecting check
// are left at zero.
type Metrics struct {
	Connectedness float64
	Radius        int
	Airiness      float64
	Density       float64
	Cragginess    float64
	Spikiness     float64
	Score         float64
	Reject        Reject
}

// Evaluate runs the full scoring pipeline on g.
func Evaluate(g hex.Grid, p Params) Metrics {
	var m Metrics

	// Nothing survived; no bounds setting makes that a snowflake.
	if len(g) == 0 {
		m.Reject = RejectEmpty
		return m
	}

	m.Connectedness = Connectedness(g)
	if m.Connectedness == 0 {
		m.Reject = RejectDisconnected
		return m
	}

	m.Radius = hex.Radius(g)
	if m.Radius < p.MinRadius || m.Radius > p.MaxRadius {
		m.Reject = RejectRadius
		return m
	}

	m.Airiness = Airiness(g, m.Radius)
	m.Density = 1.0 - m.Airiness
	if m.Density < p.MinDensity || m.Density > p.MaxDensity {
		m.Reject = RejectDensity
		return m
	}

	m.Cragginess = Cragginess(g)
	m.Spikiness = Spikiness(g, m.Radius)

	m.Score = p.ConnectednessWeight*m.Connectedness +
		p.AirinessWeight*m.Airiness +
		p.CragginessWeight*m.Cragginess +
		p.SpikinessWeight*m.Spikiness
	return m
}

// Score returns the weighted fitness of g, or 0 if any check rejects it.
func Score(g hex.Grid, p Params) float64 {
	return Evaluate(g, p).Score
}

// LogValue implements slog.LogValuer for structured logging.
func (m Metrics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("score", m.Score),
		slog.String("reject", m.Reject.String()),
		slog.Float64("connectedness", m.Connectedness),
		slog.Int("radius", m.Radius),
		slog.Float64("density", m.Density),
		slog.Float64("cragginess", m.Cragginess),
		slog.Float64("spikiness", m.Spikiness),
	)
}
