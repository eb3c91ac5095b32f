// Package components defines the data shared by the controller systems.
package components

import (
	"fmt"
	"time"
)

// Behavior is the closed set of behavioral groups the arbiter can activate.
type Behavior uint8

const (
	BehaviorFault Behavior = iota // No winner: hold still
	BehaviorEnergy
	BehaviorTegument
	BehaviorIntegrity
)

// String returns the display name for a Behavior.
func (b Behavior) String() string {
	names := BehaviorNames()
	if int(b) < len(names) {
		return names[b]
	}
	return fmt.Sprintf("behavior(%d)", uint8(b))
}

// BehaviorNames returns the display names for all behaviors.
// The order matches the Behavior constants.
func BehaviorNames() []string {
	return []string{"fault", "energy", "tegument", "integrity"}
}

// BehaviorCount returns the number of behaviors.
func BehaviorCount() int {
	return len(BehaviorNames())
}

// Pulse is a timed wheel command executed before a Command's final pair.
type Pulse struct {
	Left, Right float64
	Duration    time.Duration
}

// Command is the output of one behavioral group for one tick.
// Left and Right are normalized wheel speeds in [-1, 1].
type Command struct {
	Left, Right float64
	Pulses      []Pulse
}

// Clamp returns the command with every wheel value limited to [-1, 1].
func (c Command) Clamp() Command {
	out := Command{Left: clampUnit(c.Left), Right: clampUnit(c.Right)}
	if len(c.Pulses) > 0 {
		out.Pulses = make([]Pulse, len(c.Pulses))
		for i, p := range c.Pulses {
			out.Pulses[i] = Pulse{Left: clampUnit(p.Left), Right: clampUnit(p.Right), Duration: p.Duration}
		}
	}
	return out
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
