package controller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode"

	"github.com/pthm-cable/homeostat/backend"
	"github.com/pthm-cable/homeostat/config"
)

// teleopKeys maps a key to a unit wheel command.
var teleopKeys = map[rune][2]float64{
	'z': {1, 1},   // forward
	'q': {-1, 1},  // turn left
	's': {-1, -1}, // backward
	'd': {1, -1},  // turn right
}

// Teleop drives the wheels from single-key commands.
type Teleop struct {
	act     backend.Actuator
	battery backend.BatteryReader
	scale   float64
	out     io.Writer
}

// NewTeleop returns a teleoperation session. Error lines for unknown keys
// go to out.
func NewTeleop(cfg *config.Config, act backend.Actuator, battery backend.BatteryReader, out io.Writer) *Teleop {
	if out == nil {
		out = io.Discard
	}
	return &Teleop{act: act, battery: battery, scale: cfg.Actuator.SpeedScale, out: out}
}

// Run reads keys from in until 'a', end of input or ctx is done. The
// wheels are stopped on every exit path.
func (t *Teleop) Run(ctx context.Context, in io.Reader) error {
	logBattery(ctx, t.battery)
	defer func() {
		if err := t.act.Stop(context.WithoutCancel(ctx)); err != nil {
			slog.Error("failed to stop wheels", "error", err)
		}
	}()

	r := bufio.NewReader(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		key, _, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading key: %w", err)
		}
		if unicode.IsSpace(key) {
			continue
		}

		done, err := t.Handle(ctx, key)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Handle applies one key. It reports true when the session should end.
func (t *Teleop) Handle(ctx context.Context, key rune) (bool, error) {
	switch key {
	case 'e':
		return false, t.act.Stop(ctx)
	case 'a':
		return true, nil
	}

	speeds, ok := teleopKeys[key]
	if !ok {
		fmt.Fprintf(t.out, "unknown command %q\n", key)
		return false, nil
	}
	if err := t.act.SetWheelSpeeds(ctx, speeds[0]*t.scale, speeds[1]*t.scale); err != nil {
		return false, fmt.Errorf("set wheel speeds: %w", err)
	}
	return false, nil
}
