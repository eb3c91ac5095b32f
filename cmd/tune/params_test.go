package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/homeostat/config"
)

func TestParamVectorRoundtrip(t *testing.T) {
	pv := NewParamVector()
	if pv.Dim() != 2*config.NumSensors+1 {
		t.Fatalf("Dim() = %d, want %d", pv.Dim(), 2*config.NumSensors+1)
	}

	raw := pv.DefaultVector()
	raw[3] = 2.5
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("param %s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	raw[0] = 100                // left_0 above max
	raw[config.NumSensors] = -3 // right_0
	raw[pv.Dim()-1] = 0         // seek below min

	cfg := config.Default()
	pv.ApplyToConfig(cfg, raw)

	if got := cfg.Behavior.AvoidWeights.Left[0]; got != 8 {
		t.Errorf("left[0] = %v, want 8", got)
	}
	if got := cfg.Behavior.AvoidWeights.Right[0]; got != -3 {
		t.Errorf("right[0] = %v, want -3", got)
	}
	if got := cfg.Behavior.SeekSpeed; got != 0.2 {
		t.Errorf("seek_speed = %v, want 0.2", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("tuned config should validate: %v", err)
	}
}

func TestFitnessPrefersIntactRuns(t *testing.T) {
	intact := fitness(runResult{ticks: 250, integrity: 1})
	damaged := fitness(runResult{ticks: 250, integrity: 0.5})
	short := fitness(runResult{ticks: 100, integrity: 1})

	if !(intact < damaged) {
		t.Errorf("intact %v should beat damaged %v", intact, damaged)
	}
	if !(intact < short) {
		t.Errorf("long run %v should beat short run %v", intact, short)
	}
}
