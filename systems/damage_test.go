package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/homeostat/components"
	"github.com/pthm-cable/homeostat/config"
)

func newTestDetector(t *testing.T, mutate func(*config.Config)) (*DamageDetector, *config.Config) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
		cfg.ComputeDerived()
	}
	physio := NewPhysiology(cfg.Drives, cfg.Sensors)
	return NewDamageDetector(cfg, physio), cfg
}

func uniformFrame(prev, cur float64) components.SensorFrame {
	var f components.SensorFrame
	for i := 0; i < config.NumSensors; i++ {
		f.Previous[i] = prev
		f.Current[i] = cur
	}
	return f
}

func TestDetect_RateThreshold(t *testing.T) {
	// Range is 420, so the rate threshold is a change of 21 units.
	tests := []struct {
		name     string
		k        float64
		wantHits int
	}{
		{"no change", 0, 0},
		{"below threshold", 20, 0},
		{"at threshold", 21, 0},
		{"above threshold", 22, config.NumSensors},
		{"well above threshold", 80, config.NumSensors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det, _ := newTestDetector(t, nil)
			frame := uniformFrame(100, 100+tt.k)
			drives := components.NewDrives(1.0)

			report := det.Detect(&frame, &drives)

			if len(report.Rate) != tt.wantHits {
				t.Errorf("rate hits = %d, want %d", len(report.Rate), tt.wantHits)
			}
			if tt.wantHits == 0 {
				for i, s := range frame.Speed {
					if s != 0 || frame.Seeded[i] {
						t.Errorf("sensor %d speed = %v seeded = %v, want reset", i, s, frame.Seeded[i])
					}
				}
			}
		})
	}
}

func TestDetect_RateSingleSensor(t *testing.T) {
	det, _ := newTestDetector(t, nil)
	frame := uniformFrame(100, 100)
	frame.Current[3] = 150
	drives := components.NewDrives(1.0)

	report := det.Detect(&frame, &drives)

	if len(report.Rate) != 1 {
		t.Fatalf("rate hits = %d, want 1: %+v", len(report.Rate), report.Rate)
	}
	hit := report.Rate[0]
	if hit.Sensor != 3 {
		t.Errorf("hit sensor = %d, want 3", hit.Sensor)
	}
	// 50 units in 0.1s against a max of 4200 units/s
	want := 500.0 / 4200.0
	if math.Abs(hit.Magnitude-want) > 1e-12 {
		t.Errorf("magnitude = %v, want %v", hit.Magnitude, want)
	}
	if !report.Fired() {
		t.Error("report should have fired")
	}
	if drives.Integrity.Level >= 1.0 {
		t.Error("integrity should have been reduced")
	}
}

func TestDetect_RateSmoothing(t *testing.T) {
	det, _ := newTestDetector(t, nil)
	frame := uniformFrame(100, 100)
	drives := components.NewDrives(1.0)

	frame.Current[0] = 200
	det.Detect(&frame, &drives)
	if frame.Speed[0] != 1000 {
		t.Fatalf("first speed = %v, want 1000", frame.Speed[0])
	}

	frame.RotateHistory()
	frame.Current[0] = 260
	det.Detect(&frame, &drives)
	if frame.Speed[0] != 800 {
		t.Errorf("smoothed speed = %v, want (1000+600)/2", frame.Speed[0])
	}

	frame.RotateHistory()
	det.Detect(&frame, &drives)
	if frame.Speed[0] != 0 || frame.Seeded[0] {
		t.Errorf("still sensor should reset, got %v", frame.Speed[0])
	}
}

func TestCircularSpeeds_Pattern(t *testing.T) {
	det, _ := newTestDetector(t, nil)
	frame := uniformFrame(150, 150)
	u := math.Pi * 6 / 100000

	got := det.CircularSpeeds(&frame)

	want := [config.NumSensors - 1]float64{0, 2 * u, 2 * u, 2 * u, 2 * u, 2 * u, 2 * u}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-15 {
			t.Errorf("circ[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCircularSpeeds_NeighbourOffset(t *testing.T) {
	det, _ := newTestDetector(t, nil)
	var frame components.SensorFrame
	// A contact that was on sensor 2 and is now on sensor 3.
	frame.Previous[2] = 200
	frame.Current[3] = 200

	got := det.CircularSpeeds(&frame)
	for i, c := range got {
		if i == 3 {
			if c == 0 {
				t.Error("circ[3] should be set")
			}
			continue
		}
		if c != 0 {
			t.Errorf("circ[%d] = %v, want 0", i, c)
		}
	}

	sameIdx, _ := newTestDetector(t, func(c *config.Config) { c.Damage.SameIndex = true })
	got = sameIdx.CircularSpeeds(&frame)
	if got[3] != 0 {
		t.Errorf("same-index circ[3] = %v, want 0", got[3])
	}
}

func TestDetect_ZeroFrameNoDamage(t *testing.T) {
	det, _ := newTestDetector(t, nil)
	var frame components.SensorFrame
	drives := components.NewDrives(1.0)

	report := det.Detect(&frame, &drives)

	if report.Fired() {
		t.Errorf("zero frame fired: %+v", report)
	}
	if drives.Integrity.Level != 1.0 {
		t.Errorf("integrity = %v, want 1.0", drives.Integrity.Level)
	}
}

func TestDetect_LossMatchesIntegrity(t *testing.T) {
	det, _ := newTestDetector(t, nil)
	frame := uniformFrame(100, 160)
	drives := components.NewDrives(1.0)

	report := det.Detect(&frame, &drives)

	if len(report.Spread) == 0 || len(report.Rate) == 0 {
		t.Fatalf("expected both checks to fire: %+v", report)
	}
	if math.Abs((1.0-drives.Integrity.Level)-report.Loss()) > 1e-12 {
		t.Errorf("loss %v does not match integrity drop %v", report.Loss(), 1.0-drives.Integrity.Level)
	}
}
