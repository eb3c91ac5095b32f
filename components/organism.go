package components

import "fmt"

// DriveKind identifies one of the physiological variables.
type DriveKind uint8

const (
	// DriveNone is the arbitration result when no drive strictly dominates.
	DriveNone DriveKind = iota
	DriveEnergy
	DriveTegument
	DriveIntegrity
)

// String returns the lowercase drive name.
func (k DriveKind) String() string {
	switch k {
	case DriveEnergy:
		return "energy"
	case DriveTegument:
		return "tegument"
	case DriveIntegrity:
		return "integrity"
	case DriveNone:
		return "none"
	}
	return fmt.Sprintf("drive(%d)", uint8(k))
}

// AllDrives returns the three drives in arbitration order.
func AllDrives() []DriveKind {
	return []DriveKind{DriveEnergy, DriveTegument, DriveIntegrity}
}

// Drive is one physiological variable and the values derived from it each tick.
// Deficit, Cue and Motivation are recomputed every tick from Level.
type Drive struct {
	Level      float64
	Deficit    float64
	Cue        float64
	Motivation float64
}

// Drives is the physiological state of the robot.
type Drives struct {
	Energy    Drive
	Tegument  Drive
	Integrity Drive
}

// NewDrives returns drives with every level set to initial.
func NewDrives(initial float64) Drives {
	return Drives{
		Energy:    Drive{Level: initial},
		Tegument:  Drive{Level: initial},
		Integrity: Drive{Level: initial},
	}
}

// Get returns a pointer to the drive of the given kind, or nil for DriveNone.
func (d *Drives) Get(kind DriveKind) *Drive {
	switch kind {
	case DriveEnergy:
		return &d.Energy
	case DriveTegument:
		return &d.Tegument
	case DriveIntegrity:
		return &d.Integrity
	}
	return nil
}

// Levels returns the three levels in arbitration order.
func (d *Drives) Levels() [3]float64 {
	return [3]float64{d.Energy.Level, d.Tegument.Level, d.Integrity.Level}
}

// Motivations returns the three motivations in arbitration order.
func (d *Drives) Motivations() [3]float64 {
	return [3]float64{d.Energy.Motivation, d.Tegument.Motivation, d.Integrity.Motivation}
}
