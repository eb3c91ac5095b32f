package controller

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/pthm-cable/homeostat/components"
)

// Loop states.
const (
	stateRunning  statekit.StateID = "running"
	stateTerminal statekit.StateID = "terminal"
)

// Loop events. Every one of them ends the run.
const (
	eventExhausted      statekit.EventType = "EXHAUSTED"
	eventActuatorFailed statekit.EventType = "ACTUATOR_FAILED"
	eventStop           statekit.EventType = "STOP"
)

// Reason explains why a run ended.
type Reason string

const (
	ReasonExhausted      Reason = "exhausted"
	ReasonActuatorFailed Reason = "actuator_failed"
	ReasonMaxTicks       Reason = "max_ticks"
	ReasonCanceled       Reason = "canceled"
)

// terminalPayload travels with the event that ends the run.
type terminalPayload struct {
	Reason Reason
	Drive  components.DriveKind
	Tick   int
}

// loopState is the statekit context of the control loop.
type loopState struct {
	Reason Reason
	Drive  components.DriveKind
	Tick   int
}

// newLoopMachine builds the running -> terminal statechart. Terminal is
// final, so no event can leave it.
func newLoopMachine() (*statekit.MachineConfig[*loopState], error) {
	return statekit.NewMachine[*loopState]("homeostat").
		WithInitial(stateRunning).
		WithContext(&loopState{}).
		WithAction("recordEnd", recordEnd).
		State(stateRunning).
			On(eventExhausted).Target(stateTerminal).Do("recordEnd").
			On(eventActuatorFailed).Target(stateTerminal).Do("recordEnd").
			On(eventStop).Target(stateTerminal).Do("recordEnd").
			Done().
		State(stateTerminal).
			Final().
			Done().
		Build()
}

// recordEnd copies the terminal payload into the loop state.
// Since the context is *loopState, actions receive **loopState.
func recordEnd(ls **loopState, event statekit.Event) {
	if ls == nil || *ls == nil {
		return
	}
	p, ok := event.Payload.(terminalPayload)
	if !ok {
		return
	}
	(*ls).Reason = p.Reason
	(*ls).Drive = p.Drive
	(*ls).Tick = p.Tick
}

// loop wraps the statekit interpreter.
type loop struct {
	interp *statekit.Interpreter[*loopState]
	state  *loopState
}

func newLoop() (*loop, error) {
	machine, err := newLoopMachine()
	if err != nil {
		return nil, err
	}
	state := &loopState{}
	interp := statekit.NewInterpreter(machine)
	interp.UpdateContext(func(c **loopState) {
		*c = state
	})
	interp.Start()
	return &loop{interp: interp, state: state}, nil
}

// end moves the loop to terminal. It reports false when the loop had
// already ended; the first reason wins.
func (l *loop) end(event statekit.EventType, p terminalPayload) bool {
	if l.terminal() {
		return false
	}
	l.interp.Send(statekit.Event{Type: event, Payload: p})
	return l.terminal()
}

func (l *loop) terminal() bool {
	return l.interp.Done() || l.interp.Matches(stateTerminal)
}

// State returns the current state name.
func (l *loop) State() string {
	return string(l.interp.State().Value)
}
