package backend

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/homeostat/components"
	"github.com/pthm-cable/homeostat/config"
)

func newTestArena(t *testing.T) *Arena {
	t.Helper()
	return NewArena(config.Default(), rand.New(rand.NewSource(1)))
}

// proximity is the expected reading for a surface d cm from the body edge.
func proximity(d float64) int {
	return int(1023 * (1 - d/25))
}

func TestArena_CenterIsQuiet(t *testing.T) {
	a := newTestArena(t)
	a.SetPose(components.Pose{Position: components.Position{X: 100, Y: 100}})

	raw, err := a.ReadProximity(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != config.NumSensors {
		t.Fatalf("got %d readings", len(raw))
	}
	for i, v := range raw {
		if v != 0 {
			t.Errorf("sensor %d = %d in open floor, want 0", i, v)
		}
	}
}

func TestArena_WallFacingSensor(t *testing.T) {
	a := newTestArena(t)
	// Heading +X, 10cm from the east wall: body edge is 4cm away.
	a.SetPose(components.Pose{Position: components.Position{X: 190, Y: 100}})

	raw, _ := a.ReadProximity(context.Background())

	front := config.NumSensors / 2
	if raw[front] <= 0 {
		t.Fatalf("front sensor = %d, want a reading", raw[front])
	}
	want := proximity(4)
	if raw[front] != want {
		t.Errorf("front sensor = %d, want %d", raw[front], want)
	}
	if raw[0] != 0 {
		t.Errorf("back sensor = %d, want 0", raw[0])
	}
}

func TestArena_ObstacleBlocksRay(t *testing.T) {
	a := newTestArena(t)
	a.SetPose(components.Pose{Position: components.Position{X: 100, Y: 100}})
	a.SetObstacles([]Obstacle{{X: 120, Y: 100, Radius: 5}})

	raw, _ := a.ReadProximity(context.Background())
	front := config.NumSensors / 2
	// Body edge at 106, obstacle surface at 115.
	want := proximity(9)
	if raw[front] != want {
		t.Errorf("front sensor = %d, want %d", raw[front], want)
	}
}

func TestArena_Kinematics(t *testing.T) {
	cfg := config.Default()
	a := NewArena(cfg, rand.New(rand.NewSource(1)))
	a.SetPose(components.Pose{Position: components.Position{X: 100, Y: 100}})
	ctx := context.Background()

	// Full forward: 30 cm/s for 0.1s.
	a.SetWheelSpeeds(ctx, cfg.Actuator.SpeedScale, cfg.Actuator.SpeedScale)
	a.ReadProximity(ctx)
	p := a.Pose()
	if math.Abs(p.X-103) > 1e-9 || math.Abs(p.Y-100) > 1e-9 {
		t.Errorf("pose after forward step = %+v, want (103, 100)", p.Position)
	}

	// Spin in place: position unchanged, heading advances.
	a.SetWheelSpeeds(ctx, -cfg.Actuator.SpeedScale, cfg.Actuator.SpeedScale)
	a.ReadProximity(ctx)
	q := a.Pose()
	if math.Abs(q.X-p.X) > 1e-9 || math.Abs(q.Y-p.Y) > 1e-9 {
		t.Errorf("spin moved the robot: %+v", q.Position)
	}
	wantHeading := 2 * 30 / 10.5 * 0.1
	if math.Abs(q.Heading-wantHeading) > 1e-9 {
		t.Errorf("heading = %v, want %v", q.Heading, wantHeading)
	}

	a.Stop(ctx)
	a.ReadProximity(ctx)
	if r := a.Pose(); r.Position != q.Position {
		t.Error("stopped robot moved")
	}
	if a.Stops() != 1 {
		t.Errorf("stops = %d", a.Stops())
	}
}

func TestArena_WallsContainBody(t *testing.T) {
	cfg := config.Default()
	a := NewArena(cfg, rand.New(rand.NewSource(7)))
	ctx := context.Background()
	a.SetWheelSpeeds(ctx, cfg.Actuator.SpeedScale, cfg.Actuator.SpeedScale)

	for i := 0; i < 200; i++ {
		a.ReadProximity(ctx)
	}
	p := a.Pose()
	r := cfg.Damage.BodyRadiusCM
	if p.X < r || p.X > cfg.Arena.SizeCM-r || p.Y < r || p.Y > cfg.Arena.SizeCM-r {
		t.Errorf("robot escaped the arena: %+v", p.Position)
	}
}

func TestArena_Battery(t *testing.T) {
	a := newTestArena(t)
	buf, err := a.ReadBattery(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := DecodeBattery(buf)
	if err != nil {
		t.Fatal(err)
	}
	if b.ChargePct != 100 {
		t.Errorf("fresh battery charge = %d", b.ChargePct)
	}
}

func TestArena_ScatterKeepsClearance(t *testing.T) {
	a := newTestArena(t)
	a.SetPose(components.Pose{Position: components.Position{X: 100, Y: 100}})

	a.Scatter(rand.New(rand.NewSource(7)), 12)

	obs := a.Obstacles()
	if len(obs) != 12 {
		t.Fatalf("got %d obstacles, want 12", len(obs))
	}
	for i, o := range obs {
		if d := math.Hypot(o.X-100, o.Y-100); d < o.Radius+a.BodyRadius()+a.SensorRange() {
			t.Errorf("obstacle %d is %.1fcm from the robot, inside its clearance", i, d)
		}
	}

	raw, _ := a.ReadProximity(context.Background())
	for i, v := range raw {
		if v != 0 {
			t.Errorf("sensor %d = %d, want 0 with obstacles out of range", i, v)
		}
	}
	last := a.LastReadings()
	if len(last) != len(raw) {
		t.Errorf("LastReadings() has %d values, want %d", len(last), len(raw))
	}
}
