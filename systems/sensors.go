package systems

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/homeostat/components"
	"github.com/pthm-cable/homeostat/config"
)

// ErrFrameSize is returned when a sensor backend delivers the wrong number of readings.
var ErrFrameSize = errors.New("sensor frame size mismatch")

// SensorMapping converts raw proximity readings into frame values.
type SensorMapping struct {
	MinDist       int
	MaxDist       int
	ExactDivision bool
}

// NewSensorMapping returns the mapping described by the sensor config.
func NewSensorMapping(cfg config.SensorsConfig) SensorMapping {
	return SensorMapping{
		MinDist:       cfg.MinDist,
		MaxDist:       cfg.MaxDist,
		ExactDivision: cfg.ExactDivision,
	}
}

// Map converts one raw reading. Readings above the ceiling saturate at
// MaxDist, readings under the noise floor become 0, everything else is
// offset by the floor and halved.
func (m SensorMapping) Map(raw int) float64 {
	switch {
	case raw > m.MaxDist:
		return float64(m.MaxDist)
	case raw < m.MinDist:
		return 0
	case m.ExactDivision:
		return float64(raw-m.MinDist) / 2
	default:
		return float64((raw - m.MinDist) >> 1)
	}
}

// RefreshFrame replaces frame.Current with the mapped readings.
// On a size mismatch the frame is left untouched.
func RefreshFrame(frame *components.SensorFrame, raw []int, m SensorMapping) error {
	if len(raw) != config.NumSensors {
		return fmt.Errorf("%w: got %d readings, want %d", ErrFrameSize, len(raw), config.NumSensors)
	}
	for i, r := range raw {
		frame.Current[i] = m.Map(r)
	}
	return nil
}
