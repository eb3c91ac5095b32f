package systems

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/homeostat/components"
	"github.com/pthm-cable/homeostat/config"
)

// Gate decides whether a consummatory action (eating, grooming) is
// possible this tick.
type Gate func(frame *components.SensorFrame, drives *components.Drives) bool

// Never is the default gate: no food source or grooming spot is sensed.
func Never(*components.SensorFrame, *components.Drives) bool { return false }

// Behaviors computes wheel commands for the behavioral groups.
type Behaviors struct {
	cfg    config.BehaviorConfig
	period time.Duration
	physio *Physiology

	// weights is the 2xN avoidance matrix: row 0 drives the left wheel,
	// row 1 the right wheel.
	weights *mat.Dense

	CanEat   Gate
	CanGroom Gate
}

// NewBehaviors creates the behavioral groups from config.
func NewBehaviors(cfg *config.Config, physio *Physiology) *Behaviors {
	data := make([]float64, 0, 2*config.NumSensors)
	data = append(data, cfg.Behavior.AvoidWeights.Left...)
	data = append(data, cfg.Behavior.AvoidWeights.Right...)

	if floats.Norm(data, 1) == 0 {
		slog.Warn("avoidance weights are all zero; the integrity group will not steer")
	}

	return &Behaviors{
		cfg:      cfg.Behavior,
		period:   cfg.Control.Period,
		physio:   physio,
		weights:  mat.NewDense(2, config.NumSensors, data),
		CanEat:   Never,
		CanGroom: Never,
	}
}

// SetAvoidWeights replaces the avoidance matrix.
func (b *Behaviors) SetAvoidWeights(left, right [config.NumSensors]float64) {
	for i := 0; i < config.NumSensors; i++ {
		b.weights.Set(0, i, left[i])
		b.weights.Set(1, i, right[i])
	}
}

// Compute runs the behavioral group for one tick. Energy and tegument
// groups may restore their drive as a side effect.
func (b *Behaviors) Compute(behavior components.Behavior, frame *components.SensorFrame, drives *components.Drives) components.Command {
	switch behavior {
	case components.BehaviorEnergy:
		return b.energy(frame, drives)
	case components.BehaviorTegument:
		return b.tegument(frame, drives)
	case components.BehaviorIntegrity:
		return b.Avoid(frame)
	case components.BehaviorFault:
		return components.Command{}
	}
	return components.Command{}
}

func (b *Behaviors) energy(frame *components.SensorFrame, drives *components.Drives) components.Command {
	if b.CanEat(frame, drives) {
		b.physio.Restore(drives, components.DriveEnergy, b.cfg.EatAmount)
	}
	return b.seek()
}

func (b *Behaviors) tegument(frame *components.SensorFrame, drives *components.Drives) components.Command {
	cmd := b.seek()
	if b.CanGroom(frame, drives) {
		pulse := time.Duration(b.cfg.GroomPulsePeriods) * b.period
		cmd.Pulses = []components.Pulse{
			{Left: -1, Right: 1, Duration: pulse},
			{Left: 1, Right: -1, Duration: pulse},
		}
		b.physio.Restore(drives, components.DriveTegument, b.cfg.GroomAmount)
	}
	return cmd
}

// seek is the shared forward policy of the energy and tegument groups.
func (b *Behaviors) seek() components.Command {
	return components.Command{Left: b.cfg.SeekSpeed, Right: b.cfg.SeekSpeed}
}

// Avoid is the Braitenberg obstacle-avoidance policy: sensor readings are
// normalized into [0,1], weighted per wheel and averaged over the sensors.
func (b *Behaviors) Avoid(frame *components.SensorFrame) components.Command {
	span := b.cfg.AvoidMax - b.cfg.AvoidMin
	s := mat.NewVecDense(config.NumSensors, nil)
	for i, v := range frame.Current {
		s.SetVec(i, (v-b.cfg.AvoidMin)/span)
	}

	var out mat.VecDense
	out.MulVec(b.weights, s)

	return components.Command{
		Left:  out.AtVec(0) / config.NumSensors,
		Right: out.AtVec(1) / config.NumSensors,
	}
}
