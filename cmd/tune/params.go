package main

import (
	"fmt"

	"github.com/pthm-cable/homeostat/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters: the left and right
// avoidance weights of every sensor, then the seek speed.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	var specs []ParamSpec
	for _, wheel := range []string{"left", "right"} {
		for i := 0; i < config.NumSensors; i++ {
			specs = append(specs, ParamSpec{
				Name: fmt.Sprintf("%s_%d", wheel, i),
				Path: fmt.Sprintf("behavior.avoid_weights.%s[%d]", wheel, i),
				Min:  -8,
				Max:  8,
			})
		}
	}
	specs = append(specs, ParamSpec{Name: "seek_speed", Path: "behavior.seek_speed", Min: 0.2, Max: 1.0, Default: 0.8})
	return &ParamVector{Specs: specs}
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
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return out
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return out
}

// Clamp restricts each value to its bounds.
func (pv *ParamVector) Clamp(raw []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = min(max(raw[i], spec.Min), spec.Max)
	}
	return out
}

// ApplyToConfig writes the clamped values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, raw []float64) {
	v := pv.Clamp(raw)
	n := config.NumSensors
	cfg.Behavior.AvoidWeights.Left = append([]float64(nil), v[:n]...)
	cfg.Behavior.AvoidWeights.Right = append([]float64(nil), v[n:2*n]...)
	cfg.Behavior.SeekSpeed = v[2*n]
}
