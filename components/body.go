package components

import "github.com/pthm-cable/homeostat/config"

// SensorFrame holds the current and previous proximity snapshots.
// Values are already mapped into [0, MaxDist] by the sensor refresh.
//
// Speed and Seeded belong to the rate damage check: the smoothed
// per-sensor approach speed (units per second) and whether that average
// has a first sample yet. They are history, so they live with the frame.
type SensorFrame struct {
	Current  [config.NumSensors]float64
	Previous [config.NumSensors]float64

	Speed  [config.NumSensors]float64
	Seeded [config.NumSensors]bool
}

// RotateHistory copies Current into Previous.
// Call exactly once per tick, after damage detection and behavior computation.
func (f *SensorFrame) RotateHistory() {
	f.Previous = f.Current
}
