package controller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/homeostat/backend"
)

// Frame is one LED state: left, right, back.
type Frame [3]backend.Color

// chase lights one LED at a time, left then right then back.
func chase(c backend.Color, rounds int) []Frame {
	out := make([]Frame, 0, 3*rounds)
	for i := 0; i < rounds; i++ {
		out = append(out,
			Frame{c, backend.Off, backend.Off},
			Frame{backend.Off, c, backend.Off},
			Frame{backend.Off, backend.Off, c},
		)
	}
	return out
}

// DamageFrames is the damage animation: all off, then five red chases.
func DamageFrames() []Frame {
	return append([]Frame{{}}, chase(backend.Red, 5)...)
}

// TerminalFrames is the end-of-run animation: all off, four green chases,
// four red chases, then six red blinks.
func TerminalFrames() []Frame {
	out := []Frame{{}}
	out = append(out, chase(backend.Green, 4)...)
	out = append(out, chase(backend.Red, 4)...)
	for i := 0; i < 6; i++ {
		out = append(out,
			Frame{backend.Red, backend.Red, backend.Red},
			Frame{},
		)
	}
	return out
}

// Animator plays LED animations. At most one damage animation runs at a
// time; damage reported while one is playing is dropped.
type Animator struct {
	ind   backend.Indicator
	frame time.Duration

	busy atomic.Bool
	wg   sync.WaitGroup
}

// NewAnimator creates an animator. A nil indicator disables animations.
func NewAnimator(ind backend.Indicator, frameDur time.Duration) *Animator {
	return &Animator{ind: ind, frame: frameDur}
}

// Damage starts the damage animation in the background. It returns false
// when another damage animation is still playing.
func (a *Animator) Damage(ctx context.Context) bool {
	if a == nil || a.ind == nil {
		return false
	}
	if !a.busy.CompareAndSwap(false, true) {
		return false
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.busy.Store(false)
		a.play(ctx, DamageFrames())
	}()
	return true
}

// Terminal waits for any damage animation, then plays the end-of-run
// animation synchronously.
func (a *Animator) Terminal(ctx context.Context) {
	if a == nil || a.ind == nil {
		return
	}
	a.wg.Wait()
	a.play(ctx, TerminalFrames())
}

// Busy reports whether a damage animation is playing.
func (a *Animator) Busy() bool {
	return a != nil && a.busy.Load()
}

// Close waits for the in-flight damage animation to finish.
func (a *Animator) Close() {
	if a == nil {
		return
	}
	a.wg.Wait()
}

func (a *Animator) play(ctx context.Context, frames []Frame) {
	for _, f := range frames {
		if err := a.ind.SetLEDs(ctx, f[0], f[1], f[2]); err != nil {
			slog.Debug("indicator write failed", "error", err)
			return
		}
		if a.frame > 0 {
			if err := sleep(ctx, a.frame); err != nil {
				return
			}
		}
	}
}
