// Package telemetry provides run statistics, event logging, bookmarks and CSV output.
package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/homeostat/components"
)

// EventType identifies telemetry events.
type EventType uint8

const (
	EventDamage EventType = iota
	EventFault
	EventSensorDegraded
	EventActuatorFailed
	EventTerminal
)

var eventNames = [...]string{"damage", "fault", "sensor_degraded", "actuator_failed", "terminal"}

// String returns the event name used in events.csv.
func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event represents a single telemetry event.
type Event struct {
	Type EventType
	Tick int

	// Optional fields depending on event type
	Drive     components.DriveKind // winning or exhausted drive
	Sensor    int                  // sensor index for damage, -1 otherwise
	Magnitude float64              // damage magnitude before scaling
	Detail    string
}

// EventRecord is the flat CSV form of an Event.
type EventRecord struct {
	Tick      int     `csv:"tick"`
	Event     string  `csv:"event"`
	Drive     string  `csv:"drive"`
	Sensor    int     `csv:"sensor"`
	Magnitude float64 `csv:"magnitude"`
	Detail    string  `csv:"detail"`
}

// Record converts the event for CSV export.
func (e Event) Record() EventRecord {
	return EventRecord{
		Tick:      e.Tick,
		Event:     e.Type.String(),
		Drive:     e.Drive.String(),
		Sensor:    e.Sensor,
		Magnitude: e.Magnitude,
		Detail:    e.Detail,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("event", e.Type.String()),
		slog.Int("tick", e.Tick),
	}
	if e.Drive != components.DriveNone {
		attrs = append(attrs, slog.String("drive", e.Drive.String()))
	}
	if e.Sensor >= 0 {
		attrs = append(attrs, slog.Int("sensor", e.Sensor))
	}
	if e.Magnitude != 0 {
		attrs = append(attrs, slog.Float64("magnitude", e.Magnitude))
	}
	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}
	return slog.GroupValue(attrs...)
}

// NewDamageEvent creates an event for one integrity decrement.
// kind is the check that fired ("spread" or "rate").
func NewDamageEvent(tick, sensor int, magnitude float64, kind string) Event {
	return Event{
		Type:      EventDamage,
		Tick:      tick,
		Sensor:    sensor,
		Magnitude: magnitude,
		Detail:    kind,
	}
}

// NewFaultEvent creates an event for a tick where no drive won arbitration.
func NewFaultEvent(tick int) Event {
	return Event{Type: EventFault, Tick: tick, Sensor: -1}
}

// NewSensorDegradedEvent creates an event for a failed sensor read.
func NewSensorDegradedEvent(tick int, err error) Event {
	return Event{Type: EventSensorDegraded, Tick: tick, Sensor: -1, Detail: errString(err)}
}

// NewActuatorFailedEvent creates an event for a failed wheel command.
func NewActuatorFailedEvent(tick int, err error) Event {
	return Event{Type: EventActuatorFailed, Tick: tick, Sensor: -1, Detail: errString(err)}
}

// NewTerminalEvent creates the event emitted once when the run ends.
// drive is the exhausted drive, or DriveNone when the run was stopped for
// another reason.
func NewTerminalEvent(tick int, drive components.DriveKind, reason string) Event {
	return Event{Type: EventTerminal, Tick: tick, Drive: drive, Sensor: -1, Detail: reason}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
