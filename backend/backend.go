// Package backend defines the hardware boundary of the controller and the
// implementations used when no robot is attached.
package backend

import (
	"context"
	"errors"
	"fmt"
)

// ErrShortBuffer is returned when a device buffer is smaller than its format.
var ErrShortBuffer = errors.New("backend: short buffer")

// SensorSource reads one raw proximity frame.
type SensorSource interface {
	ReadProximity(ctx context.Context) ([]int, error)
}

// Actuator drives the two wheels. Speeds are in backend units.
type Actuator interface {
	SetWheelSpeeds(ctx context.Context, left, right float64) error
	// Stop halts both wheels. It must be safe to call more than once.
	Stop(ctx context.Context) error
}

// Indicator sets the three status LEDs.
type Indicator interface {
	SetLEDs(ctx context.Context, left, right, back Color) error
}

// BatteryReader returns the raw battery status buffer.
type BatteryReader interface {
	ReadBattery(ctx context.Context) ([]byte, error)
}

// Color is the closed set of LED colors.
type Color uint8

const (
	Off Color = iota
	White
	Green
	Blue
	Red
)

// RGB returns the LED intensities for the color, each in [0, 63].
func (c Color) RGB() (r, g, b uint8) {
	switch c {
	case White:
		return 63, 63, 63
	case Green:
		return 0, 63, 0
	case Blue:
		return 0, 0, 63
	case Red:
		return 63, 0, 0
	}
	return 0, 0, 0
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case Off:
		return "off"
	case White:
		return "white"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Red:
		return "red"
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}
