package systems

import "github.com/pthm-cable/homeostat/components"

// SelectWinner is winner-take-all over the three motivations. It returns
// the drive whose motivation strictly exceeds both others, or DriveNone
// when the maximum is shared (or a motivation is NaN).
func SelectWinner(energy, tegument, integrity float64) components.DriveKind {
	switch {
	case energy > tegument && energy > integrity:
		return components.DriveEnergy
	case tegument > energy && tegument > integrity:
		return components.DriveTegument
	case integrity > energy && integrity > tegument:
		return components.DriveIntegrity
	}
	return components.DriveNone
}

// Arbitrate selects the winning drive from the current motivations.
func Arbitrate(d *components.Drives) components.DriveKind {
	return SelectWinner(d.Energy.Motivation, d.Tegument.Motivation, d.Integrity.Motivation)
}

// BehaviorFor maps an arbitration result to its behavioral group.
// No winner routes to the fault group.
func BehaviorFor(kind components.DriveKind) components.Behavior {
	switch kind {
	case components.DriveEnergy:
		return components.BehaviorEnergy
	case components.DriveTegument:
		return components.BehaviorTegument
	case components.DriveIntegrity:
		return components.BehaviorIntegrity
	case components.DriveNone:
		return components.BehaviorFault
	}
	return components.BehaviorFault
}
