package controller

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/pthm-cable/homeostat/backend"
	"github.com/pthm-cable/homeostat/components"
	"github.com/pthm-cable/homeostat/config"
)

// actuation writes wheel commands through a retry inside a circuit breaker.
// The breaker counts one failure per command that still fails after its
// retries; once it trips the loop must stop.
type actuation struct {
	act      backend.Actuator
	scale    float64
	realtime bool

	breaker circuitbreaker.CircuitBreaker[struct{}]
	retry   retry.Retry[struct{}]
	tripped atomic.Bool
}

func newActuation(act backend.Actuator, cfg config.ActuatorConfig, realtime bool) *actuation {
	threshold := cfg.FailureThreshold
	if threshold < 1 {
		threshold = 1
	}

	a := &actuation{
		act:      act,
		scale:    cfg.SpeedScale,
		realtime: realtime,
	}
	a.breaker = circuitbreaker.New[struct{}](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    cfg.BreakerTimeout,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- bounds checked above
			if trip {
				a.tripped.Store(true)
			}
			return trip
		},
	})
	a.retry = retry.New[struct{}](retry.Config{
		MaxAttempts:        cfg.RetryAttempts,
		InitialDelay:       cfg.RetryDelay,
		BackoffPolicy:      retry.BackoffExponential,
		Multiplier:         2.0,
		NonRetryableErrors: []error{context.Canceled, context.DeadlineExceeded},
	})
	return a
}

// Apply runs the command's pulses in order, then sets the final wheel pair.
func (a *actuation) Apply(ctx context.Context, cmd components.Command) error {
	for _, p := range cmd.Pulses {
		if err := a.set(ctx, p.Left, p.Right); err != nil {
			return err
		}
		if err := a.hold(ctx, p.Duration); err != nil {
			return err
		}
	}
	return a.set(ctx, cmd.Left, cmd.Right)
}

// Tripped reports whether repeated failures opened the breaker.
func (a *actuation) Tripped() bool {
	return a.tripped.Load()
}

// Stop halts the wheels directly; the breaker may already be open.
func (a *actuation) Stop(ctx context.Context) error {
	return a.act.Stop(ctx)
}

func (a *actuation) set(ctx context.Context, left, right float64) error {
	_, err := a.breaker.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		return a.retry.Do(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, a.act.SetWheelSpeeds(ctx, left*a.scale, right*a.scale)
		})
	})
	if err != nil {
		return fmt.Errorf("set wheel speeds (%.2f, %.2f): %w", left, right, err)
	}
	return nil
}

// hold waits for a pulse to finish. Outside realtime mode the wait is
// skipped and the pulse only shows up in the command stream.
func (a *actuation) hold(ctx context.Context, d time.Duration) error {
	if !a.realtime || d <= 0 {
		return nil
	}
	return sleep(ctx, d)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
