package controller

import (
	"log/slog"

	"github.com/pthm-cable/homeostat/systems"
	"github.com/pthm-cable/homeostat/telemetry"
)

// record adds the tick to the stats window and flushes it when full.
func (c *Controller) record(res TickResult) {
	c.collector.Record(telemetry.TickSample{
		Tick:           res.Tick,
		Behavior:       res.Behavior,
		Levels:         c.drives.Levels(),
		Motivations:    c.drives.Motivations(),
		SpreadHits:     len(res.Damage.Spread),
		RateHits:       len(res.Damage.Rate),
		Loss:           res.Damage.Loss(),
		RateMean:       res.Damage.RateMean,
		SensorDegraded: res.SensorErr != nil,
		ActuatorFailed: res.Err != nil,
	})
	c.flushTelemetry(false)
}

// flushTelemetry writes the stats window when it is due, or whatever is
// pending when final is set, and checks the window for bookmarks.
func (c *Controller) flushTelemetry(final bool) {
	if final {
		if !c.collector.Pending() {
			return
		}
	} else if !c.collector.ShouldFlush(c.tick) {
		return
	}

	stats := c.collector.Flush(c.tick)
	perfStats := c.perf.Stats()

	if c.opts.StatsCallback != nil {
		c.opts.StatsCallback(stats)
	}

	if c.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if c.opts.Output != nil {
		if err := c.opts.Output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := c.opts.Output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range c.bookmarks.Check(stats) {
		if c.opts.LogStats {
			bm.LogBookmark()
		}
		if c.opts.Output != nil {
			if err := c.opts.Output.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// flushEvents hands the tick's events to the output and clears them.
func (c *Controller) flushEvents() {
	if len(c.events) == 0 {
		return
	}
	if c.opts.Output != nil {
		if err := c.opts.Output.WriteEvents(c.events); err != nil {
			slog.Error("failed to write events", "error", err)
		}
	}
	for _, e := range c.events {
		if e.Type == telemetry.EventTerminal {
			slog.Info("run ended", "event", e)
		}
	}
	c.events = c.events[:0]
}

// damageHits flattens a report into one slice, spread hits first.
func damageHits(r systems.DamageReport) []systems.Hit {
	hits := make([]systems.Hit, 0, len(r.Spread)+len(r.Rate))
	hits = append(hits, r.Spread...)
	return append(hits, r.Rate...)
}
