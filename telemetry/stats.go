package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	RunID           string  `csv:"run_id"`
	WindowStartTick int     `csv:"-"`
	WindowEndTick   int     `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Ticks           int     `csv:"ticks"`

	// Drive levels at window end
	Energy    float64 `csv:"energy"`
	Tegument  float64 `csv:"tegument"`
	Integrity float64 `csv:"integrity"`

	// Level distribution over the window
	EnergyMean    float64 `csv:"energy_mean"`
	TegumentMean  float64 `csv:"tegument_mean"`
	IntegrityMean float64 `csv:"integrity_mean"`
	IntegrityMin  float64 `csv:"integrity_min"`

	// Mean motivation over the window
	EnergyMotivation    float64 `csv:"energy_motivation"`
	TegumentMotivation  float64 `csv:"tegument_motivation"`
	IntegrityMotivation float64 `csv:"integrity_motivation"`

	// Fraction of ticks each behavioral group was active
	FaultFrac     float64 `csv:"fault_frac"`
	EnergyFrac    float64 `csv:"energy_frac"`
	TegumentFrac  float64 `csv:"tegument_frac"`
	IntegrityFrac float64 `csv:"integrity_frac"`
	Switches      int     `csv:"switches"` // behavior changes within the window

	// Damage
	SpreadHits    int     `csv:"spread_hits"`
	RateHits      int     `csv:"rate_hits"`
	IntegrityLoss float64 `csv:"integrity_loss"`
	RateMeanP90   float64 `csv:"rate_mean_p90"` // 90th percentile of the normalized approach speed

	// Backend health
	SensorErrors   int `csv:"sensor_errors"`
	ActuatorErrors int `csv:"actuator_errors"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeLevelStats calculates mean, minimum and the 90th percentile of a
// series of samples.
func ComputeLevelStats(values []float64) (mean, min, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	min = floats.Min(values)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	p90 = Percentile(sorted, 0.90)

	return mean, min, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Float64("energy", s.Energy),
		slog.Float64("tegument", s.Tegument),
		slog.Float64("integrity", s.Integrity),
		slog.Float64("integrity_min", s.IntegrityMin),
		slog.Float64("fault_frac", s.FaultFrac),
		slog.Float64("energy_frac", s.EnergyFrac),
		slog.Float64("tegument_frac", s.TegumentFrac),
		slog.Float64("integrity_frac", s.IntegrityFrac),
		slog.Int("switches", s.Switches),
		slog.Int("spread_hits", s.SpreadHits),
		slog.Int("rate_hits", s.RateHits),
		slog.Float64("integrity_loss", s.IntegrityLoss),
		slog.Int("sensor_errors", s.SensorErrors),
		slog.Int("actuator_errors", s.ActuatorErrors),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "run_id", s.RunID, "window", s)
}
