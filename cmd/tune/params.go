package main

import (
	"github.com/pthm-cable/swarm/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of movement and contact parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "steer_force", Path: "steering.force", Min: 0.02, Max: 0.3, Default: 0.1},
			{Name: "arrive_distance", Path: "steering.arrive_distance", Min: 0.5, Max: 20, Default: 1},
			{Name: "damping", Path: "steering.damping", Min: 0.85, Max: 0.995, Default: 0.95},
			{Name: "bounce_strength", Path: "harvest.bounce_strength", Min: 1, Max: 10, Default: 5},
			{Name: "clearance", Path: "harvest.clearance", Min: 0, Max: 8, Default: 4},
			{Name: "query_factor", Path: "collision.query_factor", Min: 1, Max: 4, Default: 2},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
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

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg. Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.Steering.Force = c[0]
	cfg.Steering.ArriveDistance = c[1]
	cfg.Steering.Damping = c[2]
	cfg.Harvest.BounceStrength = c[3]
	cfg.Harvest.Clearance = c[4]
	cfg.Collision.QueryFactor = c[5]
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Steering.Force,
		cfg.Steering.ArriveDistance,
		cfg.Steering.Damping,
		cfg.Harvest.BounceStrength,
		cfg.Harvest.Clearance,
		cfg.Collision.QueryFactor,
	}
}
