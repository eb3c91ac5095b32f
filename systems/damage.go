package systems

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/homeostat/components"
	"github.com/pthm-cable/homeostat/config"
)

// HitKind identifies which damage check produced a hit.
type HitKind uint8

const (
	HitSpread HitKind = iota // contact spreading between neighbouring sensors
	HitRate                  // fast approach on a single sensor
)

// String returns the hit kind name.
func (k HitKind) String() string {
	if k == HitRate {
		return "rate"
	}
	return "spread"
}

// Hit is one integrity decrement applied by the detector.
type Hit struct {
	Kind      HitKind
	Sensor    int
	Magnitude float64 // damage amount before scaling
	Loss      float64 // integrity actually removed
}

// DamageReport lists the decrements applied during one tick.
// It is recomputed from scratch every tick.
type DamageReport struct {
	Spread   []Hit
	Rate     []Hit
	RateMean float64 // normalized mean approach speed
}

// Fired reports whether either check applied at least one decrement.
func (r DamageReport) Fired() bool {
	return len(r.Spread) > 0 || len(r.Rate) > 0
}

// Loss returns the total integrity removed this tick.
func (r DamageReport) Loss() float64 {
	var total float64
	for _, h := range r.Spread {
		total += h.Loss
	}
	for _, h := range r.Rate {
		total += h.Loss
	}
	return total
}

// DamageDetector derives contact damage from the difference between the
// current and previous sensor snapshots.
type DamageDetector struct {
	cfg         config.DamageConfig
	physio      *Physiology
	periodS     float64
	sensorRange float64
	maxSpeed    float64
	circUnit    float64 // circular speed of one contact, cm per µs
}

// NewDamageDetector creates a detector that applies damage through physio.
func NewDamageDetector(cfg *config.Config, physio *Physiology) *DamageDetector {
	d := &DamageDetector{
		cfg:         cfg.Damage,
		physio:      physio,
		periodS:     cfg.Derived.PeriodSeconds,
		sensorRange: cfg.Derived.SensorRange,
		maxSpeed:    cfg.Derived.MaxSensorSpeed,
	}
	if cfg.Derived.PeriodMicros > 0 {
		d.circUnit = math.Pi * cfg.Damage.BodyRadiusCM / cfg.Derived.PeriodMicros
	}
	return d
}

// Detect runs the spread and rate checks and applies every decrement to
// Integrity immediately. Both checks always run over the full sensor set.
func (d *DamageDetector) Detect(frame *components.SensorFrame, drives *components.Drives) DamageReport {
	var report DamageReport

	circ := d.CircularSpeeds(frame)
	for i, c := range circ {
		if c == 0 {
			continue
		}
		loss := d.physio.ApplyDamage(drives, c)
		report.Spread = append(report.Spread, Hit{Kind: HitSpread, Sensor: i, Magnitude: c, Loss: loss})
	}

	norm, mean := d.updateSpeeds(frame)
	report.RateMean = mean
	if mean > d.cfg.RateThreshold/config.NumSensors {
		for i, n := range norm {
			if n <= d.cfg.RateThreshold {
				continue
			}
			loss := d.physio.ApplyDamage(drives, n)
			report.Rate = append(report.Rate, Hit{Kind: HitRate, Sensor: i, Magnitude: n, Loss: loss})
		}
	}

	return report
}

// CircularSpeeds computes the spreading pattern. Sensor i is compared with
// the previous reading of its neighbour i-1: a contact sliding around the
// body shows up as a reading that moved one sensor over. Neighbouring
// contacts of similar speed reinforce each other.
func (d *DamageDetector) CircularSpeeds(frame *components.SensorFrame) [config.NumSensors - 1]float64 {
	var circ [config.NumSensors - 1]float64

	for i := 1; i < config.NumSensors-1; i++ {
		ref := frame.Previous[i-1]
		if d.cfg.SameIndex {
			ref = frame.Previous[i]
		}
		diff := frame.Current[i] - ref
		if math.Abs(diff) < d.cfg.SpreadRatio*frame.Current[i] {
			circ[i] = d.circUnit
		}
	}

	// Sequential on purpose: a pair doubled at i feeds the comparison at i+1.
	for i := 1; i < len(circ); i++ {
		if math.Abs(circ[i]-circ[i-1]) < d.cfg.SpreadRatio*circ[i] {
			circ[i-1] *= d.cfg.PropagationFactor
			circ[i] *= d.cfg.PropagationFactor
		}
	}

	return circ
}

// updateSpeeds advances the per-sensor smoothed approach speed and returns
// the speeds normalized against the maximum sensor speed, with their mean.
// A sensor whose change stays under the threshold is reset and unseeded;
// the first change over the threshold seeds the average directly.
func (d *DamageDetector) updateSpeeds(frame *components.SensorFrame) ([config.NumSensors]float64, float64) {
	var norm [config.NumSensors]float64
	threshold := d.cfg.RateThreshold * d.sensorRange

	for i := 0; i < config.NumSensors; i++ {
		diff := frame.Current[i] - frame.Previous[i]
		if math.Abs(diff) > threshold {
			v := diff / d.periodS
			if frame.Seeded[i] {
				frame.Speed[i] = (frame.Speed[i] + v) / 2
			} else {
				frame.Speed[i] = v
				frame.Seeded[i] = true
			}
		} else {
			frame.Speed[i] = 0
			frame.Seeded[i] = false
		}
		if d.maxSpeed > 0 {
			norm[i] = frame.Speed[i] / d.maxSpeed
		}
	}

	return norm, stat.Mean(norm[:], nil)
}
