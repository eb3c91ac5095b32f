package systems

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/homeostat/components"
	"github.com/pthm-cable/homeostat/config"
)

func newTestBehaviors(t *testing.T) (*Behaviors, *config.Config) {
	t.Helper()
	cfg := config.Default()
	return NewBehaviors(cfg, NewPhysiology(cfg.Drives, cfg.Sensors)), cfg
}

func always(*components.SensorFrame, *components.Drives) bool { return true }

func TestCompute_Seek(t *testing.T) {
	b, _ := newTestBehaviors(t)
	var frame components.SensorFrame
	drives := components.NewDrives(0.5)

	for _, beh := range []components.Behavior{components.BehaviorEnergy, components.BehaviorTegument} {
		cmd := b.Compute(beh, &frame, &drives)
		if cmd.Left != 0.8 || cmd.Right != 0.8 {
			t.Errorf("%s: got (%v, %v), want seek (0.8, 0.8)", beh, cmd.Left, cmd.Right)
		}
		if len(cmd.Pulses) != 0 {
			t.Errorf("%s: unexpected pulses without a gate", beh)
		}
	}
	if drives.Energy.Level != 0.5 || drives.Tegument.Level != 0.5 {
		t.Error("closed gates must not restore")
	}
}

func TestCompute_Fault(t *testing.T) {
	b, _ := newTestBehaviors(t)
	var frame components.SensorFrame
	drives := components.NewDrives(1)

	cmd := b.Compute(components.BehaviorFault, &frame, &drives)
	if cmd.Left != 0 || cmd.Right != 0 || len(cmd.Pulses) != 0 {
		t.Errorf("fault command = %+v, want zero", cmd)
	}
}

func TestCompute_Eat(t *testing.T) {
	b, _ := newTestBehaviors(t)
	b.CanEat = always
	var frame components.SensorFrame
	drives := components.NewDrives(0.5)

	b.Compute(components.BehaviorEnergy, &frame, &drives)

	if math.Abs(drives.Energy.Level-0.55) > 1e-12 {
		t.Errorf("energy = %v, want 0.55", drives.Energy.Level)
	}
	if drives.Tegument.Level != 0.5 {
		t.Errorf("eating touched tegument: %v", drives.Tegument.Level)
	}
}

func TestCompute_Groom(t *testing.T) {
	b, _ := newTestBehaviors(t)
	b.CanGroom = always
	var frame components.SensorFrame
	drives := components.NewDrives(0.5)

	cmd := b.Compute(components.BehaviorTegument, &frame, &drives)

	if len(cmd.Pulses) != 2 {
		t.Fatalf("pulses = %d, want 2", len(cmd.Pulses))
	}
	want := []components.Pulse{
		{Left: -1, Right: 1, Duration: 200 * time.Millisecond},
		{Left: 1, Right: -1, Duration: 200 * time.Millisecond},
	}
	for i, p := range cmd.Pulses {
		if p != want[i] {
			t.Errorf("pulse %d = %+v, want %+v", i, p, want[i])
		}
	}
	if cmd.Left != 0.8 || cmd.Right != 0.8 {
		t.Errorf("final pair = (%v, %v), want seek", cmd.Left, cmd.Right)
	}
	if math.Abs(drives.Tegument.Level-0.55) > 1e-12 {
		t.Errorf("tegument = %v, want 0.55", drives.Tegument.Level)
	}
	if drives.Energy.Level != 0.5 {
		t.Errorf("grooming touched energy: %v", drives.Energy.Level)
	}
}

func TestAvoid_ZeroWeights(t *testing.T) {
	b, _ := newTestBehaviors(t)
	frame := uniformFrame(0, 500)

	cmd := b.Compute(components.BehaviorIntegrity, &frame, nil)
	if cmd.Left != 0 || cmd.Right != 0 {
		t.Errorf("zero weights should not steer, got (%v, %v)", cmd.Left, cmd.Right)
	}
}

func TestAvoid_Weighted(t *testing.T) {
	b, _ := newTestBehaviors(t)
	var left, right [config.NumSensors]float64
	// Obstacle on the left side pushes the left wheel forward.
	left[0] = 4
	right[0] = -4
	b.SetAvoidWeights(left, right)

	var frame components.SensorFrame
	frame.Current[0] = 1023

	cmd := b.Avoid(&frame)
	if math.Abs(cmd.Left-0.5) > 1e-12 || math.Abs(cmd.Right+0.5) > 1e-12 {
		t.Errorf("avoid = (%v, %v), want (0.5, -0.5)", cmd.Left, cmd.Right)
	}

	// Weights are per sensor, not accumulated across ticks.
	again := b.Avoid(&frame)
	if again.Left != cmd.Left || again.Right != cmd.Right {
		t.Errorf("avoid is not stable: %+v then %+v", cmd, again)
	}
}
