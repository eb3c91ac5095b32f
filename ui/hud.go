package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/homeostat/backend"
	"github.com/pthm-cable/homeostat/telemetry"
)

// HUDData holds the run status shown in the top-left corner.
type HUDData struct {
	Title    string
	Tick     int
	Behavior string
	State    string
	Damage   int // damage hits this tick
	LEDs     [3]backend.Color
	Speed    int
	FPS      int32
	Paused   bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Behavior: %s | State: %s", data.Tick, data.Behavior, data.State),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Speed: %dx | FPS: %d", data.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	// LEDs: left, right, back
	for i, c := range data.LEDs {
		r, g, b := c.RGB()
		col := rl.Color{R: r * 4, G: g * 4, B: b * 4, A: 255}
		if c == backend.Off {
			col = rl.Color{R: 50, G: 50, B: 50, A: 255}
		}
		rl.DrawCircle(int32(20+i*22), 85, 8, col)
	}

	status := "Running"
	statusColor := rl.Yellow
	switch {
	case data.State == "terminal":
		status, statusColor = "STOPPED", rl.Red
	case data.Paused:
		status = "PAUSED"
	}
	rl.DrawText(status, 90, 78, 16, statusColor)
	if data.Damage > 0 {
		rl.DrawText(fmt.Sprintf("DAMAGE x%d", data.Damage), 180, 78, 16, rl.Red)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase tick timing.
type PerfPanel struct {
	x, y int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x, y := p.x, p.y

	rl.DrawText("Tick Phases", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Avg: %s  Max: %s", stats.AvgTickDuration.Round(time.Microsecond), stats.MaxTickDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, phase := range telemetry.Phases() {
		pct := stats.PhasePct[phase]
		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-12s %8s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
