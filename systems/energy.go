package systems

import (
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/homeostat/components"
	"github.com/pthm-cable/homeostat/config"
)

// Physiology owns the dynamics of the three drives: passive decay, damage,
// restoration and the per-tick deficit/cue/motivation pipeline.
type Physiology struct {
	cfg     config.DrivesConfig
	minDist float64
	maxDist float64
}

// NewPhysiology creates the drive dynamics from config.
func NewPhysiology(drives config.DrivesConfig, sensors config.SensorsConfig) *Physiology {
	return &Physiology{
		cfg:     drives,
		minDist: float64(sensors.MinDist),
		maxDist: float64(sensors.MaxDist),
	}
}

// Decay applies the fixed per-tick drain. Integrity never decays passively.
func (p *Physiology) Decay(d *components.Drives) {
	d.Energy.Level -= p.cfg.EnergyDecay
	d.Tegument.Level -= p.cfg.TegumentDecay
}

// ApplyDamage lowers Integrity by amount scaled by the damage scale and
// returns the level actually removed.
func (p *Physiology) ApplyDamage(d *components.Drives, amount float64) float64 {
	loss := amount * p.cfg.DamageScale
	d.Integrity.Level -= loss
	return loss
}

// Restore raises the level of one drive. With clamp_upper set the level
// never goes above 1.0; a level already above it is left alone.
func (p *Physiology) Restore(d *components.Drives, kind components.DriveKind, amount float64) {
	drive := d.Get(kind)
	if drive == nil {
		return
	}
	if p.cfg.ClampUpper && drive.Level >= 1.0 {
		return
	}
	drive.Level += amount
	if p.cfg.ClampUpper && drive.Level > 1.0 {
		drive.Level = 1.0
	}
}

// ComputeDeficits sets deficit = 1 - level for every drive, with no clamping.
func ComputeDeficits(d *components.Drives) {
	d.Energy.Deficit = 1.0 - d.Energy.Level
	d.Tegument.Deficit = 1.0 - d.Tegument.Level
	d.Integrity.Deficit = 1.0 - d.Integrity.Level
}

// ComputeCues sets the environmental cues. Energy and tegument cues are
// constants; the integrity cue is the mean proximity normalized against
// the sensor range.
func (p *Physiology) ComputeCues(d *components.Drives, frame *components.SensorFrame) {
	d.Energy.Cue = p.cfg.EnergyCue
	d.Tegument.Cue = p.cfg.TegumentCue
	d.Integrity.Cue = p.IntegrityCue(frame)
}

// IntegrityCue returns the normalized mean proximity of the current frame.
func (p *Physiology) IntegrityCue(frame *components.SensorFrame) float64 {
	mean := stat.Mean(frame.Current[:], nil)
	return clamp01((mean - p.minDist) / (p.maxDist - p.minDist))
}

// ComputeMotivations sets motivation = deficit + deficit*cue for every drive.
func ComputeMotivations(d *components.Drives) {
	for _, kind := range components.AllDrives() {
		drive := d.Get(kind)
		drive.Motivation = drive.Deficit + drive.Deficit*drive.Cue
	}
}

// Update recomputes deficits, cues and motivations, in that order.
func (p *Physiology) Update(d *components.Drives, frame *components.SensorFrame) {
	ComputeDeficits(d)
	p.ComputeCues(d, frame)
	ComputeMotivations(d)
}

// Exhausted reports the first drive whose level has reached zero.
func (p *Physiology) Exhausted(d *components.Drives) (components.DriveKind, bool) {
	for _, kind := range components.AllDrives() {
		if d.Get(kind).Level <= p.cfg.ExhaustionEpsilon {
			return kind, true
		}
	}
	return components.DriveNone, false
}
