package controller

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/homeostat/backend"
	"github.com/pthm-cable/homeostat/components"
)

const sensorWarnKey = "sensors"

// logState dumps the drives every print_every ticks. The dump is at Info
// level when stats logging is on, Debug otherwise.
func (c *Controller) logState(res TickResult) {
	every := c.cfg.Telemetry.PrintEvery
	if every <= 0 || res.Tick%every != 0 {
		return
	}
	level := slog.LevelDebug
	if c.opts.LogStats {
		level = slog.LevelInfo
	}
	slog.Log(context.Background(), level, "state",
		"tick", res.Tick,
		"behavior", res.Behavior.String(),
		"energy", driveGroup(c.drives.Energy),
		"tegument", driveGroup(c.drives.Tegument),
		"integrity", driveGroup(c.drives.Integrity),
		"sensors", c.frame.Current,
	)
}

func driveGroup(d components.Drive) slog.Value {
	return slog.GroupValue(
		slog.Float64("level", d.Level),
		slog.Float64("deficit", d.Deficit),
		slog.Float64("cue", d.Cue),
		slog.Float64("motivation", d.Motivation),
	)
}

// warnSensor logs a failed sensor read, at most sensor_warn_per_sec times
// per second.
func (c *Controller) warnSensor(ctx context.Context, err error) {
	if !c.sensorWarn.Allow(ctx, sensorWarnKey) {
		return
	}
	slog.Warn("sensor read failed, reusing previous frame", "tick", c.tick, "error", err)
}

// logBattery reads and logs the battery status when a reader is attached.
func (c *Controller) logBattery(ctx context.Context) {
	logBattery(ctx, c.b.Battery)
}

func logBattery(ctx context.Context, r backend.BatteryReader) {
	if r == nil {
		return
	}
	buf, err := r.ReadBattery(ctx)
	if err != nil {
		slog.Warn("battery read failed", "error", err)
		return
	}
	status, err := backend.DecodeBattery(buf)
	if err != nil {
		slog.Warn("battery decode failed", "error", err)
		return
	}
	slog.Info("battery", "status", status)
}
