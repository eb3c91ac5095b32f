package systems

import (
	"errors"
	"testing"

	"github.com/pthm-cable/homeostat/components"
	"github.com/pthm-cable/homeostat/config"
)

func defaultMapping() SensorMapping {
	return NewSensorMapping(config.Default().Sensors)
}

func TestSensorMapping_Map(t *testing.T) {
	m := defaultMapping()
	tests := []struct {
		name string
		raw  int
		want float64
	}{
		{"below floor", 79, 0},
		{"zero", 0, 0},
		{"at floor", 80, 0},
		{"odd offset floors", 81, 0},
		{"mid range", 180, 50},
		{"odd mid range", 181, 50},
		{"at ceiling", 500, 210},
		{"above ceiling saturates", 501, 500},
		{"far above ceiling", 1023, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Map(tt.raw); got != tt.want {
				t.Errorf("Map(%d) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSensorMapping_ExactDivision(t *testing.T) {
	m := defaultMapping()
	m.ExactDivision = true

	if got := m.Map(181); got != 50.5 {
		t.Errorf("Map(181) = %v, want 50.5", got)
	}
}

func TestRefreshFrame_Idempotent(t *testing.T) {
	m := defaultMapping()
	raw := []int{0, 79, 80, 150, 333, 500, 501, 1023}

	var a, b components.SensorFrame
	if err := RefreshFrame(&a, raw, m); err != nil {
		t.Fatalf("RefreshFrame: %v", err)
	}
	if err := RefreshFrame(&b, raw, m); err != nil {
		t.Fatalf("RefreshFrame: %v", err)
	}
	if err := RefreshFrame(&b, raw, m); err != nil {
		t.Fatalf("RefreshFrame: %v", err)
	}
	if a.Current != b.Current {
		t.Errorf("refreshing twice changed the frame: %v vs %v", a.Current, b.Current)
	}

	for i, v := range a.Current {
		if v < 0 || v > float64(m.MaxDist) {
			t.Errorf("sensor %d = %v outside [0, %d]", i, v, m.MaxDist)
		}
	}
}

func TestRefreshFrame_SizeMismatch(t *testing.T) {
	m := defaultMapping()
	var f components.SensorFrame
	f.Current[0] = 42

	err := RefreshFrame(&f, []int{100, 200, 300}, m)
	if !errors.Is(err, ErrFrameSize) {
		t.Fatalf("expected ErrFrameSize, got %v", err)
	}
	if f.Current[0] != 42 {
		t.Error("frame should be untouched on size mismatch")
	}
}

func TestSensorFrame_RotateHistory(t *testing.T) {
	var f components.SensorFrame
	for i := range f.Current {
		f.Current[i] = float64(i * 10)
	}
	f.RotateHistory()
	if f.Previous != f.Current {
		t.Errorf("Previous = %v, want %v", f.Previous, f.Current)
	}

	f.Current[0] = 99
	if f.Previous[0] == 99 {
		t.Error("Previous must be a copy, not an alias")
	}
}
