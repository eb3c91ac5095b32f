package telemetry

import "github.com/pthm-cable/homeostat/components"

// TickSample is what the control loop reports to the collector after each tick.
type TickSample struct {
	Tick        int
	Behavior    components.Behavior
	Levels      [3]float64 // energy, tegument, integrity
	Motivations [3]float64

	SpreadHits int
	RateHits   int
	Loss       float64
	RateMean   float64

	SensorDegraded bool
	ActuatorFailed bool
}

// Collector accumulates tick samples within windows and produces WindowStats.
type Collector struct {
	runID       string
	windowTicks int
	periodSec   float64

	// Current window tracking
	windowStartTick int
	lastBehavior    components.Behavior
	hasLast         bool

	// Counters for current window
	ticks          int
	behaviorTicks  []int
	switches       int
	spreadHits     int
	rateHits       int
	loss           float64
	sensorErrors   int
	actuatorErrors int

	// Per-tick series for the current window
	energy     []float64
	tegument   []float64
	integrity  []float64
	motivation [3][]float64
	rateMean   []float64

	last TickSample
}

// NewCollector creates a new stats collector.
// windowTicks: number of ticks per stats window
// periodSec: seconds per tick (used for tick-to-time conversion)
func NewCollector(runID string, windowTicks int, periodSec float64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		runID:         runID,
		windowTicks:   windowTicks,
		periodSec:     periodSec,
		behaviorTicks: make([]int, components.BehaviorCount()),
	}
}

// Record adds one tick to the current window.
func (c *Collector) Record(s TickSample) {
	c.ticks++
	if int(s.Behavior) < len(c.behaviorTicks) {
		c.behaviorTicks[s.Behavior]++
	}
	if c.hasLast && s.Behavior != c.lastBehavior {
		c.switches++
	}
	c.lastBehavior = s.Behavior
	c.hasLast = true

	c.spreadHits += s.SpreadHits
	c.rateHits += s.RateHits
	c.loss += s.Loss
	if s.SensorDegraded {
		c.sensorErrors++
	}
	if s.ActuatorFailed {
		c.actuatorErrors++
	}

	c.energy = append(c.energy, s.Levels[0])
	c.tegument = append(c.tegument, s.Levels[1])
	c.integrity = append(c.integrity, s.Levels[2])
	for i := range c.motivation {
		c.motivation[i] = append(c.motivation[i], s.Motivations[i])
	}
	c.rateMean = append(c.rateMean, s.RateMean)

	c.last = s
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Pending reports whether the current window holds unflushed ticks.
func (c *Collector) Pending() bool {
	return c.ticks > 0
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int) WindowStats {
	energyMean, _, _ := ComputeLevelStats(c.energy)
	tegumentMean, _, _ := ComputeLevelStats(c.tegument)
	integrityMean, integrityMin, _ := ComputeLevelStats(c.integrity)
	_, _, rateP90 := ComputeLevelStats(c.rateMean)

	var motivation [3]float64
	for i := range motivation {
		motivation[i], _, _ = ComputeLevelStats(c.motivation[i])
	}

	frac := func(b components.Behavior) float64 {
		if c.ticks == 0 {
			return 0
		}
		return float64(c.behaviorTicks[b]) / float64(c.ticks)
	}

	stats := WindowStats{
		RunID:           c.runID,
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.periodSec,
		Ticks:           c.ticks,

		Energy:    c.last.Levels[0],
		Tegument:  c.last.Levels[1],
		Integrity: c.last.Levels[2],

		EnergyMean:    energyMean,
		TegumentMean:  tegumentMean,
		IntegrityMean: integrityMean,
		IntegrityMin:  integrityMin,

		EnergyMotivation:    motivation[0],
		TegumentMotivation:  motivation[1],
		IntegrityMotivation: motivation[2],

		FaultFrac:     frac(components.BehaviorFault),
		EnergyFrac:    frac(components.BehaviorEnergy),
		TegumentFrac:  frac(components.BehaviorTegument),
		IntegrityFrac: frac(components.BehaviorIntegrity),
		Switches:      c.switches,

		SpreadHits:    c.spreadHits,
		RateHits:      c.rateHits,
		IntegrityLoss: c.loss,
		RateMeanP90:   rateP90,

		SensorErrors:   c.sensorErrors,
		ActuatorErrors: c.actuatorErrors,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.ticks = 0
	for i := range c.behaviorTicks {
		c.behaviorTicks[i] = 0
	}
	c.switches = 0
	c.spreadHits = 0
	c.rateHits = 0
	c.loss = 0
	c.sensorErrors = 0
	c.actuatorErrors = 0
	c.energy = c.energy[:0]
	c.tegument = c.tegument[:0]
	c.integrity = c.integrity[:0]
	for i := range c.motivation {
		c.motivation[i] = c.motivation[i][:0]
	}
	c.rateMean = c.rateMean[:0]

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int {
	return c.windowTicks
}
