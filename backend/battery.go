package backend

import (
	"encoding/binary"
	"fmt"
	"log/slog"
)

// BatteryBufferSize is the length of the battery status buffer.
const BatteryBufferSize = 12

// Battery is a decoded battery status.
type Battery struct {
	ChargePct   int     // remaining capacity, percent
	CurrentMA   float64 // positive while charging
	Temperature float64 // degrees Celsius
	VoltageMV   float64
}

// DecodeBattery decodes the little-endian battery status buffer:
// byte 3 is the charge, bytes 4-5 the current (78.13 µA/LSB), bytes 8-9 the
// temperature (1/256 °C/LSB) and bytes 10-11 the voltage (9.76 mV/LSB).
func DecodeBattery(buf []byte) (Battery, error) {
	if len(buf) < BatteryBufferSize {
		return Battery{}, fmt.Errorf("battery status needs %d bytes, got %d: %w", BatteryBufferSize, len(buf), ErrShortBuffer)
	}

	le := binary.LittleEndian
	return Battery{
		ChargePct:   int(buf[3]),
		CurrentMA:   float64(int16(le.Uint16(buf[4:6]))) * 0.07813,
		Temperature: float64(int16(le.Uint16(buf[8:10]))) * 0.003906,
		VoltageMV:   float64(int16(le.Uint16(buf[10:12]))) * 9.76,
	}, nil
}

// EncodeBattery is the inverse of DecodeBattery, used by simulated backends.
func EncodeBattery(b Battery) []byte {
	buf := make([]byte, BatteryBufferSize)
	le := binary.LittleEndian
	buf[3] = byte(b.ChargePct)
	le.PutUint16(buf[4:6], uint16(int16(b.CurrentMA/0.07813)))
	le.PutUint16(buf[8:10], uint16(int16(b.Temperature/0.003906)))
	le.PutUint16(buf[10:12], uint16(int16(b.VoltageMV/9.76)))
	return buf
}

// LogValue implements slog.LogValuer for structured logging.
func (b Battery) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("charge_pct", b.ChargePct),
		slog.Float64("current_ma", b.CurrentMA),
		slog.Float64("temperature_c", b.Temperature),
		slog.Float64("voltage_mv", b.VoltageMV),
	)
}
