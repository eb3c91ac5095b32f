package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/homeostat/components"
)

func TestSelectWinner(t *testing.T) {
	tests := []struct {
		name    string
		e, t, i float64
		want    components.DriveKind
	}{
		{"energy max", 0.5, 0.2, 0.1, components.DriveEnergy},
		{"tegument max", 0.1, 0.5, 0.2, components.DriveTegument},
		{"integrity max", 0.1, 0.2, 0.5, components.DriveIntegrity},
		{"negative motivations", -0.1, -0.5, -0.3, components.DriveEnergy},
		{"all zero", 0, 0, 0, components.DriveNone},
		{"energy tegument tie", 0.4, 0.4, 0.1, components.DriveNone},
		{"tegument integrity tie", 0.1, 0.4, 0.4, components.DriveNone},
		{"energy integrity tie", 0.4, 0.1, 0.4, components.DriveNone},
		{"tie below max is fine", 0.5, 0.1, 0.1, components.DriveEnergy},
		{"nan", math.NaN(), 0.2, 0.1, components.DriveNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectWinner(tt.e, tt.t, tt.i); got != tt.want {
				t.Errorf("SelectWinner(%v, %v, %v) = %v, want %v", tt.e, tt.t, tt.i, got, tt.want)
			}
		})
	}
}

func TestBehaviorFor(t *testing.T) {
	tests := []struct {
		kind components.DriveKind
		want components.Behavior
	}{
		{components.DriveEnergy, components.BehaviorEnergy},
		{components.DriveTegument, components.BehaviorTegument},
		{components.DriveIntegrity, components.BehaviorIntegrity},
		{components.DriveNone, components.BehaviorFault},
	}
	for _, tt := range tests {
		if got := BehaviorFor(tt.kind); got != tt.want {
			t.Errorf("BehaviorFor(%v) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}
