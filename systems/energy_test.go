package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/homeostat/components"
	"github.com/pthm-cable/homeostat/config"
)

func newTestPhysiology(t *testing.T) (*Physiology, *config.Config) {
	t.Helper()
	cfg := config.Default()
	return NewPhysiology(cfg.Drives, cfg.Sensors), cfg
}

func TestDecay_IntegrityUntouched(t *testing.T) {
	p, _ := newTestPhysiology(t)
	d := components.NewDrives(1.0)

	p.Decay(&d)

	if math.Abs(d.Energy.Level-0.996) > 1e-12 {
		t.Errorf("energy = %v, want 0.996", d.Energy.Level)
	}
	if math.Abs(d.Tegument.Level-0.9985) > 1e-12 {
		t.Errorf("tegument = %v, want 0.9985", d.Tegument.Level)
	}
	if d.Integrity.Level != 1.0 {
		t.Errorf("integrity should not decay, got %v", d.Integrity.Level)
	}
}

func TestDecay_EnergyExhaustsAfter250Ticks(t *testing.T) {
	p, _ := newTestPhysiology(t)
	d := components.NewDrives(1.0)

	for i := 0; i < 249; i++ {
		p.Decay(&d)
		if _, done := p.Exhausted(&d); done {
			t.Fatalf("exhausted early at tick %d (energy %v)", i+1, d.Energy.Level)
		}
	}
	p.Decay(&d)

	kind, done := p.Exhausted(&d)
	if !done || kind != components.DriveEnergy {
		t.Fatalf("expected energy exhaustion after 250 ticks, got %v %v", kind, done)
	}
	if math.Abs(d.Energy.Level) > 1e-9 {
		t.Errorf("energy = %v, want ~0", d.Energy.Level)
	}
}

func TestApplyDamage_Scaled(t *testing.T) {
	p, _ := newTestPhysiology(t)
	d := components.NewDrives(1.0)

	loss := p.ApplyDamage(&d, 2.0)
	if math.Abs(loss-0.02) > 1e-12 {
		t.Errorf("loss = %v, want 0.02", loss)
	}
	if math.Abs(d.Integrity.Level-0.98) > 1e-12 {
		t.Errorf("integrity = %v, want 0.98", d.Integrity.Level)
	}
}

func TestComputeDeficits_ExactComplement(t *testing.T) {
	levels := []float64{-0.5, 0, 0.25, 1, 1.5, 7}
	for _, lvl := range levels {
		d := components.Drives{
			Energy:    components.Drive{Level: lvl},
			Tegument:  components.Drive{Level: lvl},
			Integrity: components.Drive{Level: lvl},
		}
		ComputeDeficits(&d)
		for _, kind := range components.AllDrives() {
			if got := d.Get(kind).Deficit; got != 1.0-lvl {
				t.Errorf("%s deficit for level %v = %v, want %v", kind, lvl, got, 1.0-lvl)
			}
		}
	}
}

func TestComputeCues(t *testing.T) {
	p, _ := newTestPhysiology(t)
	d := components.NewDrives(1.0)
	var f components.SensorFrame

	p.ComputeCues(&d, &f)
	if d.Energy.Cue != 0.06 || d.Tegument.Cue != 0.055 {
		t.Errorf("fixed cues = %v, %v", d.Energy.Cue, d.Tegument.Cue)
	}
	if d.Integrity.Cue != 0 {
		t.Errorf("empty frame integrity cue = %v, want 0", d.Integrity.Cue)
	}

	for i := range f.Current {
		f.Current[i] = 290 // (290-80)/420 = 0.5
	}
	p.ComputeCues(&d, &f)
	if math.Abs(d.Integrity.Cue-0.5) > 1e-12 {
		t.Errorf("integrity cue = %v, want 0.5", d.Integrity.Cue)
	}

	for i := range f.Current {
		f.Current[i] = 500
	}
	p.ComputeCues(&d, &f)
	if d.Integrity.Cue != 1 {
		t.Errorf("saturated integrity cue = %v, want 1", d.Integrity.Cue)
	}
}

func TestComputeMotivations(t *testing.T) {
	d := components.Drives{
		Energy:    components.Drive{Deficit: 0.5, Cue: 0.06},
		Tegument:  components.Drive{Deficit: 0.2, Cue: 0.055},
		Integrity: components.Drive{Deficit: 0, Cue: 1},
	}
	ComputeMotivations(&d)

	if math.Abs(d.Energy.Motivation-0.53) > 1e-12 {
		t.Errorf("energy motivation = %v, want 0.53", d.Energy.Motivation)
	}
	if math.Abs(d.Tegument.Motivation-0.211) > 1e-12 {
		t.Errorf("tegument motivation = %v, want 0.211", d.Tegument.Motivation)
	}
	if d.Integrity.Motivation != 0 {
		t.Errorf("integrity motivation = %v, want 0", d.Integrity.Motivation)
	}
}

func TestRestore_ClampPolicy(t *testing.T) {
	p, cfg := newTestPhysiology(t)
	d := components.NewDrives(0.98)

	p.Restore(&d, components.DriveEnergy, 0.05)
	if d.Energy.Level != 1.0 {
		t.Errorf("clamped restore = %v, want 1.0", d.Energy.Level)
	}

	cfg.Drives.ClampUpper = false
	unclamped := NewPhysiology(cfg.Drives, cfg.Sensors)
	d = components.NewDrives(0.98)
	unclamped.Restore(&d, components.DriveTegument, 0.05)
	if math.Abs(d.Tegument.Level-1.03) > 1e-12 {
		t.Errorf("unclamped restore = %v, want 1.03", d.Tegument.Level)
	}

	// DriveNone is ignored
	unclamped.Restore(&d, components.DriveNone, 1)
}
