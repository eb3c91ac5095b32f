package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/homeostat/components"
)

func TestCollector_Window(t *testing.T) {
	c := NewCollector("run-1", 4, 0.1)

	behaviors := []components.Behavior{
		components.BehaviorEnergy,
		components.BehaviorEnergy,
		components.BehaviorFault,
		components.BehaviorIntegrity,
	}
	for i, b := range behaviors {
		tick := i + 1
		if c.ShouldFlush(tick - 1) {
			t.Fatalf("flush requested early at tick %d", tick)
		}
		c.Record(TickSample{
			Tick:       tick,
			Behavior:   b,
			Levels:     [3]float64{1 - 0.1*float64(tick), 1, 1 - 0.01*float64(tick)},
			SpreadHits: 1,
			Loss:       0.01,
		})
	}

	if !c.ShouldFlush(4) {
		t.Fatal("expected flush after 4 ticks")
	}
	s := c.Flush(4)

	if s.RunID != "run-1" || s.WindowEndTick != 4 || s.Ticks != 4 {
		t.Errorf("window header = %+v", s)
	}
	if math.Abs(s.SimTimeSec-0.4) > 1e-12 {
		t.Errorf("sim time = %v, want 0.4", s.SimTimeSec)
	}
	if s.EnergyFrac != 0.5 || s.FaultFrac != 0.25 || s.IntegrityFrac != 0.25 {
		t.Errorf("fractions = %v %v %v", s.EnergyFrac, s.FaultFrac, s.IntegrityFrac)
	}
	if s.Switches != 2 {
		t.Errorf("switches = %d, want 2", s.Switches)
	}
	if s.SpreadHits != 4 || math.Abs(s.IntegrityLoss-0.04) > 1e-12 {
		t.Errorf("damage = %d hits, %v loss", s.SpreadHits, s.IntegrityLoss)
	}
	if math.Abs(s.Energy-0.6) > 1e-12 {
		t.Errorf("end energy = %v, want 0.6", s.Energy)
	}
	if math.Abs(s.IntegrityMin-0.96) > 1e-12 {
		t.Errorf("integrity min = %v, want 0.96", s.IntegrityMin)
	}

	if c.Pending() {
		t.Error("collector should be empty after flush")
	}
	if c.ShouldFlush(5) {
		t.Error("new window should start at the flush tick")
	}
}

func TestCollector_BackendErrors(t *testing.T) {
	c := NewCollector("", 10, 0.1)
	c.Record(TickSample{Tick: 1, SensorDegraded: true})
	c.Record(TickSample{Tick: 2, ActuatorFailed: true})
	c.Record(TickSample{Tick: 3, SensorDegraded: true, ActuatorFailed: true})

	s := c.Flush(3)
	if s.SensorErrors != 2 || s.ActuatorErrors != 2 {
		t.Errorf("errors = %d sensor, %d actuator", s.SensorErrors, s.ActuatorErrors)
	}
}
