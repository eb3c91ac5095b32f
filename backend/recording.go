package backend

import (
	"context"
	"errors"
	"sync"
)

// ErrInjected is the default error returned by injected failures.
var ErrInjected = errors.New("backend: injected failure")

// Scripted replays a fixed sequence of proximity frames. After the last
// frame it keeps returning that frame. Fail, when set, is consulted before
// every read with the zero-based call index.
type Scripted struct {
	mu     sync.Mutex
	frames [][]int
	calls  int

	Fail func(call int) error
}

// NewScripted creates a scripted source. At least one frame is required.
func NewScripted(frames ...[]int) *Scripted {
	return &Scripted{frames: frames}
}

// Constant returns a source that always reads the same frame.
func Constant(frame []int) *Scripted {
	return NewScripted(frame)
}

// ReadProximity returns the next scripted frame.
func (s *Scripted) ReadProximity(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	call := s.calls
	s.calls++
	if s.Fail != nil {
		if err := s.Fail(call); err != nil {
			return nil, err
		}
	}
	if len(s.frames) == 0 {
		return nil, errors.New("backend: no scripted frames")
	}
	idx := call
	if idx >= len(s.frames) {
		idx = len(s.frames) - 1
	}
	out := make([]int, len(s.frames[idx]))
	copy(out, s.frames[idx])
	return out, nil
}

// Calls returns the number of reads so far.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// WheelCommand is one recorded SetWheelSpeeds call.
type WheelCommand struct {
	Left, Right float64
}

// RecordingActuator records every wheel command. Fail, when set, is
// consulted on every SetWheelSpeeds with the zero-based call index.
type RecordingActuator struct {
	mu       sync.Mutex
	commands []WheelCommand
	calls    int
	stops    int

	Fail func(call int) error
}

// SetWheelSpeeds records the command unless an injected failure fires.
func (r *RecordingActuator) SetWheelSpeeds(ctx context.Context, left, right float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	call := r.calls
	r.calls++
	if r.Fail != nil {
		if err := r.Fail(call); err != nil {
			return err
		}
	}
	r.commands = append(r.commands, WheelCommand{Left: left, Right: right})
	return nil
}

// Stop records a stop.
func (r *RecordingActuator) Stop(ctx context.Context) error {
	r.mu.Lock()
	r.stops++
	r.mu.Unlock()
	return nil
}

// Commands returns a copy of the successful wheel commands.
func (r *RecordingActuator) Commands() []WheelCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]WheelCommand(nil), r.commands...)
}

// Calls returns the number of SetWheelSpeeds attempts, failed ones included.
func (r *RecordingActuator) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Stops returns how many times Stop was called.
func (r *RecordingActuator) Stops() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stops
}

// RecordingIndicator records every LED frame.
type RecordingIndicator struct {
	mu     sync.Mutex
	frames [][3]Color
}

// SetLEDs records the frame.
func (r *RecordingIndicator) SetLEDs(ctx context.Context, left, right, back Color) error {
	r.mu.Lock()
	r.frames = append(r.frames, [3]Color{left, right, back})
	r.mu.Unlock()
	return nil
}

// Frames returns a copy of the recorded frames.
func (r *RecordingIndicator) Frames() [][3]Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][3]Color(nil), r.frames...)
}

// StaticBattery returns a fixed battery buffer.
type StaticBattery []byte

// ReadBattery returns the buffer.
func (b StaticBattery) ReadBattery(ctx context.Context) ([]byte, error) {
	return b, nil
}
