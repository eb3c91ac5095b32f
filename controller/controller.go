// Package controller runs the homeostatic control loop: it owns the drives
// and the sensor frame, and ticks the systems in a fixed order.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/felixgeelhaar/statekit"

	"github.com/pthm-cable/homeostat/backend"
	"github.com/pthm-cable/homeostat/components"
	"github.com/pthm-cable/homeostat/config"
	"github.com/pthm-cable/homeostat/systems"
	"github.com/pthm-cable/homeostat/telemetry"
)

// ErrTerminal is returned by Tick once the run has ended.
var ErrTerminal = errors.New("controller: run has ended")

// Backends are the devices the controller talks to. Sensors and Actuator
// are required; Indicator and Battery are optional.
type Backends struct {
	Sensors   backend.SensorSource
	Actuator  backend.Actuator
	Indicator backend.Indicator
	Battery   backend.BatteryReader
}

// Options configures a controller run.
type Options struct {
	RunID    string
	LogStats bool // log window stats and bookmarks via slog
	Realtime bool // pace ticks and pulses with the wall clock
	MaxTicks int  // overrides control.max_ticks when > 0

	// Output receives CSV telemetry; nil disables file output.
	Output *telemetry.OutputManager

	// StatsCallback, if set, is called with every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// TickResult reports what happened during one tick.
type TickResult struct {
	Tick     int
	Winner   components.DriveKind
	Behavior components.Behavior
	Command  components.Command
	Damage   systems.DamageReport

	// SensorErr is set when the read failed and the previous frame was reused.
	SensorErr error
	// Err is the actuator error, or ErrTerminal after the run ended.
	Err error

	Terminal bool
}

// RunSummary describes a finished run.
type RunSummary struct {
	RunID     string
	Ticks     int
	Reason    Reason
	Exhausted components.DriveKind
	Levels    [3]float64
	Duration  time.Duration
}

// LogValue implements slog.LogValuer for structured logging.
func (s RunSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("ticks", s.Ticks),
		slog.String("reason", string(s.Reason)),
		slog.String("exhausted", s.Exhausted.String()),
		slog.Float64("energy", s.Levels[0]),
		slog.Float64("tegument", s.Levels[1]),
		slog.Float64("integrity", s.Levels[2]),
		slog.Duration("duration", s.Duration),
	)
}

// Controller is the control loop. It is not safe for concurrent use;
// only the damage animation runs on its own goroutine.
type Controller struct {
	cfg  *config.Config
	opts Options
	b    Backends

	// Canonical state for the lifetime of the run
	drives components.Drives
	frame  components.SensorFrame

	mapping   systems.SensorMapping
	physio    *systems.Physiology
	detector  *systems.DamageDetector
	behaviors *systems.Behaviors

	loop      *loop
	actuation *actuation
	animator  *Animator

	// Telemetry
	collector  *telemetry.Collector
	perf       *telemetry.PerfCollector
	bookmarks  *telemetry.BookmarkDetector
	events     []telemetry.Event
	sensorWarn ratelimit.RateLimiter

	tick     int
	maxTicks int
	stopped  bool
	started  time.Time
}

// New validates cfg, builds the systems and performs the initial sensor
// refresh. Configuration errors are fatal and returned.
func New(cfg *config.Config, b Backends, opts Options) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if b.Sensors == nil || b.Actuator == nil {
		return nil, errors.New("controller: sensors and actuator are required")
	}
	cfg.ComputeDerived()

	l, err := newLoop()
	if err != nil {
		return nil, fmt.Errorf("building loop state machine: %w", err)
	}

	physio := systems.NewPhysiology(cfg.Drives, cfg.Sensors)

	warnRate := cfg.Telemetry.SensorWarnPerSec
	if warnRate < 1 {
		warnRate = 1
	}

	c := &Controller{
		cfg:       cfg,
		opts:      opts,
		b:         b,
		drives:    components.NewDrives(cfg.Drives.InitialLevel),
		mapping:   systems.NewSensorMapping(cfg.Sensors),
		physio:    physio,
		detector:  systems.NewDamageDetector(cfg, physio),
		behaviors: systems.NewBehaviors(cfg, physio),
		loop:      l,
		actuation: newActuation(b.Actuator, cfg.Actuator, opts.Realtime),
		collector: telemetry.NewCollector(opts.RunID, cfg.Telemetry.StatsWindow, cfg.Derived.PeriodSeconds),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarks: telemetry.NewBookmarkDetector(10),
		sensorWarn: ratelimit.New(&ratelimit.Config{
			Rate:     warnRate,
			Burst:    warnRate,
			FailOpen: true,
		}),
		maxTicks: cfg.Control.MaxTicks,
		started:  time.Now(),
	}
	if opts.MaxTicks > 0 {
		c.maxTicks = opts.MaxTicks
	}
	if cfg.Indicator.Enabled && b.Indicator != nil {
		c.animator = NewAnimator(b.Indicator, cfg.Indicator.Frame)
	}

	// Initial refresh; history starts from the first reading.
	if err := c.refresh(context.Background()); err != nil {
		slog.Warn("initial sensor read failed, starting from an empty frame", "error", err)
	}
	c.frame.RotateHistory()
	c.physio.Update(&c.drives, &c.frame)

	return c, nil
}

// Tick runs one control cycle: decay, sensor refresh, damage detection,
// drive update, arbitration, behavior, actuation and history rotation.
// Per-tick failures are reported in the result, never returned as panics.
func (c *Controller) Tick(ctx context.Context) TickResult {
	if c.loop.terminal() {
		return TickResult{Tick: c.tick, Terminal: true, Err: ErrTerminal}
	}

	c.tick++
	res := TickResult{Tick: c.tick}
	c.perf.StartTick()

	c.perf.StartPhase(telemetry.PhaseDecay)
	c.physio.Decay(&c.drives)

	c.perf.StartPhase(telemetry.PhaseSensors)
	if err := c.refresh(ctx); err != nil {
		res.SensorErr = err
		c.warnSensor(ctx, err)
		c.emit(telemetry.NewSensorDegradedEvent(c.tick, err))
	}

	c.perf.StartPhase(telemetry.PhaseDamage)
	res.Damage = c.detector.Detect(&c.frame, &c.drives)
	if res.Damage.Fired() {
		for _, h := range damageHits(res.Damage) {
			c.emit(telemetry.NewDamageEvent(c.tick, h.Sensor, h.Magnitude, h.Kind.String()))
		}
		c.animator.Damage(ctx)
	}

	c.perf.StartPhase(telemetry.PhaseDrives)
	c.physio.Update(&c.drives, &c.frame)

	c.perf.StartPhase(telemetry.PhaseArbitration)
	res.Winner = systems.Arbitrate(&c.drives)
	res.Behavior = systems.BehaviorFor(res.Winner)
	if res.Behavior == components.BehaviorFault {
		c.emit(telemetry.NewFaultEvent(c.tick))
	}

	c.perf.StartPhase(telemetry.PhaseBehavior)
	res.Command = c.behaviors.Compute(res.Behavior, &c.frame, &c.drives).Clamp()

	c.perf.StartPhase(telemetry.PhaseActuation)
	if err := c.actuation.Apply(ctx, res.Command); err != nil {
		res.Err = err
		c.emit(telemetry.NewActuatorFailedEvent(c.tick, err))
		slog.Warn("actuator write failed", "tick", c.tick, "error", err)
	}
	c.frame.RotateHistory()

	c.perf.StartPhase(telemetry.PhaseTelemetry)
	c.record(res)
	c.perf.EndTick()

	// End of tick: exhaustion first, then a tripped actuator.
	if kind, ok := c.physio.Exhausted(&c.drives); ok {
		c.end(ctx, eventExhausted, ReasonExhausted, kind)
	} else if c.actuation.Tripped() {
		c.end(ctx, eventActuatorFailed, ReasonActuatorFailed, components.DriveNone)
	}
	res.Terminal = c.loop.terminal()

	c.flushEvents()
	c.logState(res)

	return res
}

// Run ticks at the control period until the run ends, ctx is canceled or
// the tick limit is reached. The wheels are stopped on every exit path.
func (c *Controller) Run(ctx context.Context) (RunSummary, error) {
	c.started = time.Now()
	c.logBattery(ctx)

	var ticker *time.Ticker
	if c.opts.Realtime && c.cfg.Control.Period > 0 {
		ticker = time.NewTicker(c.cfg.Control.Period)
		defer ticker.Stop()
	}

	for !c.loop.terminal() {
		if err := ctx.Err(); err != nil {
			c.end(context.WithoutCancel(ctx), eventStop, ReasonCanceled, components.DriveNone)
			break
		}
		if c.maxTicks > 0 && c.tick >= c.maxTicks {
			c.end(ctx, eventStop, ReasonMaxTicks, components.DriveNone)
			break
		}

		if res := c.Tick(ctx); res.Terminal {
			break
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
			case <-ticker.C:
			}
		}
	}

	c.flushTelemetry(true)
	summary := c.Summary()
	slog.Info("run finished", "summary", summary)

	if summary.Reason == ReasonCanceled {
		return summary, ctx.Err()
	}
	return summary, nil
}

// Summary describes the run so far.
func (c *Controller) Summary() RunSummary {
	return RunSummary{
		RunID:     c.opts.RunID,
		Ticks:     c.tick,
		Reason:    c.loop.state.Reason,
		Exhausted: c.loop.state.Drive,
		Levels:    c.drives.Levels(),
		Duration:  time.Since(c.started),
	}
}

// Close waits for background animations to finish.
func (c *Controller) Close() {
	c.animator.Close()
}

// Drives returns a copy of the drive state.
func (c *Controller) Drives() components.Drives {
	return c.drives
}

// Frame returns a copy of the sensor frame.
func (c *Controller) Frame() components.SensorFrame {
	return c.frame
}

// TickCount returns the number of ticks run so far.
func (c *Controller) TickCount() int {
	return c.tick
}

// Terminal reports whether the run has ended.
func (c *Controller) Terminal() bool {
	return c.loop.terminal()
}

// State returns the loop state name ("running" or "terminal").
func (c *Controller) State() string {
	return c.loop.State()
}

// Behaviors exposes the behavioral groups so callers can install gates
// and avoidance weights.
func (c *Controller) Behaviors() *systems.Behaviors {
	return c.behaviors
}

// Perf returns the per-phase timing collector.
func (c *Controller) Perf() *telemetry.PerfCollector {
	return c.perf
}

// refresh reads the sensors into the frame. On failure the previous
// Current values are kept.
func (c *Controller) refresh(ctx context.Context) error {
	raw, err := c.b.Sensors.ReadProximity(ctx)
	if err != nil {
		return fmt.Errorf("reading proximity: %w", err)
	}
	return systems.RefreshFrame(&c.frame, raw, c.mapping)
}

// end moves the loop to terminal and performs the terminal actions once:
// stop the wheels, play the terminal animation and join the damage one.
func (c *Controller) end(ctx context.Context, event statekit.EventType, reason Reason, drive components.DriveKind) {
	if !c.loop.end(event, terminalPayload{Reason: reason, Drive: drive, Tick: c.tick}) {
		return
	}

	c.stopWheels(ctx)
	c.emit(telemetry.NewTerminalEvent(c.tick, drive, string(reason)))

	if reason == ReasonCanceled {
		c.animator.Close()
	} else {
		c.animator.Terminal(ctx)
	}
}

func (c *Controller) stopWheels(ctx context.Context) {
	if c.stopped {
		return
	}
	c.stopped = true
	if err := c.actuation.Stop(ctx); err != nil {
		slog.Error("failed to stop wheels", "error", err)
	}
}

func (c *Controller) emit(e telemetry.Event) {
	c.events = append(c.events, e)
}
