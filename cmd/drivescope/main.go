// Drivescope runs the controller against the simulated arena and shows the
// drives, sensors and wheel commands live.
//
// Usage: go run ./cmd/drivescope [-config path] [-seed n]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"

	"github.com/pthm-cable/homeostat/backend"
	"github.com/pthm-cable/homeostat/camera"
	"github.com/pthm-cable/homeostat/components"
	"github.com/pthm-cable/homeostat/config"
	"github.com/pthm-cable/homeostat/controller"
	"github.com/pthm-cable/homeostat/ui"
)

const (
	windowWidth  = 1280
	windowHeight = 800
	viewSize     = 760
	panelX       = viewSize + 20
	panelWidth   = windowWidth - panelX - 10
)

// avoidLeft and avoidRight are a Braitenberg pattern for the eight sensors: an obstacle
// on one side slows the wheel on the other side, one in front backs off.
var avoidLeft = [config.NumSensors]float64{0, 0, -0.5, -1, -1, 1, 0.5, 0}
var avoidRight = [config.NumSensors]float64{0, 0, 0.5, 1, -1, -1, -0.5, 0}

// scope is one viewer session: an arena and the controller driving it.
type scope struct {
	cfg   *config.Config
	rng   *rand.Rand
	arena *backend.Arena
	ctrl  *controller.Controller
	last  controller.TickResult

	obstacles int
	avoidGain float32
	feeding   bool
	grooming  bool
}

func newScope(cfg *config.Config, seed int64, obstacles int, avoidGain float32) (*scope, error) {
	s := &scope{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(seed)),
		obstacles: obstacles,
		avoidGain: avoidGain,
	}
	s.arena = backend.NewArena(cfg, s.rng)
	s.scatter()

	ctrl, err := controller.New(cfg, controller.Backends{
		Sensors:   s.arena,
		Actuator:  s.arena,
		Indicator: s.arena,
		Battery:   s.arena,
	}, controller.Options{RunID: uuid.NewString()})
	if err != nil {
		return nil, err
	}
	s.ctrl = ctrl

	beh := ctrl.Behaviors()
	beh.CanEat = func(*components.SensorFrame, *components.Drives) bool { return s.feeding }
	beh.CanGroom = func(*components.SensorFrame, *components.Drives) bool { return s.grooming }
	s.applyAvoidGain()
	return s, nil
}

func (s *scope) scatter() {
	s.arena.Scatter(s.rng, s.obstacles)
}

func (s *scope) applyAvoidGain() {
	var left, right [config.NumSensors]float64
	for i := range left {
		left[i] = avoidLeft[i] * float64(s.avoidGain)
		right[i] = avoidRight[i] * float64(s.avoidGain)
	}
	s.ctrl.Behaviors().SetAvoidWeights(left, right)
}

func (s *scope) step(ctx context.Context) {
	if s.ctrl.Terminal() {
		return
	}
	s.last = s.ctrl.Tick(ctx)
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	s, err := newScope(cfg, rngSeed, 8, 8)
	if err != nil {
		slog.Error("failed to start controller", "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Drivescope")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	ctx := context.Background()
	cam := camera.New(viewSize, viewSize, float32(cfg.Arena.SizeCM))
	overlays := ui.NewOverlayRegistry()
	view := ui.NewArenaView(cam, overlays)
	hud := ui.NewHUD()
	drives := ui.NewDrivePanel(panelX, 10, panelWidth)
	controls := ui.NewControlsPanel(10, 110, 220)
	perfPanel := ui.NewPerfPanel(panelX, windowHeight-150)

	speed := 1
	paused := false
	var acc float64

	for !rl.WindowShouldClose() {
		s.ctrl.Perf().RecordFrame()
		overlays.HandleInput()

		if rl.IsKeyPressed(rl.KeySpace) {
			paused = !paused
		}
		if rl.IsKeyPressed(rl.KeyTab) {
			controls.Toggle()
		}
		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			cam.ZoomBy(1 + wheel*0.1)
		}
		if rl.IsMouseButtonDown(rl.MouseRightButton) {
			d := rl.GetMouseDelta()
			cam.Pan(-d.X, -d.Y)
		}

		if !paused {
			acc += float64(rl.GetFrameTime()) * float64(speed)
			for acc >= cfg.Derived.PeriodSeconds {
				acc -= cfg.Derived.PeriodSeconds
				s.step(ctx)
				view.Record(s.arena.Pose().Position)
			}
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Color{R: 12, G: 14, B: 18, A: 255})

		view.Draw(s.arena, cfg.Arena.ProximityMax)

		hud.Draw(ui.HUDData{
			Title:    "Homeostat",
			Tick:     s.ctrl.TickCount(),
			Behavior: s.last.Behavior.String(),
			State:    s.ctrl.State(),
			Damage:   len(s.last.Damage.Spread) + len(s.last.Damage.Rate),
			LEDs:     s.arena.LEDs(),
			Speed:    speed,
			FPS:      rl.GetFPS(),
			Paused:   paused,
		})
		controls.Draw(overlays)

		y := drives.Draw(ui.DrivePanelData{
			Drives:    s.ctrl.Drives(),
			Frame:     s.ctrl.Frame(),
			Command:   s.last.Command,
			Winner:    s.last.Winner,
			SensorMax: float32(cfg.Derived.SensorRange / 2),
		})

		// Controls
		py := float32(y + 10)
		rl.DrawText(fmt.Sprintf("Speed %dx", speed), panelX, int32(py), 14, rl.Gray)
		speed = int(gui.SliderBar(rl.Rectangle{X: panelX + 90, Y: py, Width: panelWidth - 140, Height: 16}, "", "", float32(speed), 1, 20))
		py += 24

		rl.DrawText(fmt.Sprintf("Avoid %.1f", s.avoidGain), panelX, int32(py), 14, rl.Gray)
		gain := gui.SliderBar(rl.Rectangle{X: panelX + 90, Y: py, Width: panelWidth - 140, Height: 16}, "", "", s.avoidGain, 0, 16)
		if gain != s.avoidGain {
			s.avoidGain = gain
			s.applyAvoidGain()
		}
		py += 24

		rl.DrawText(fmt.Sprintf("Obstacles %d", s.obstacles), panelX, int32(py), 14, rl.Gray)
		n := int(gui.SliderBar(rl.Rectangle{X: panelX + 90, Y: py, Width: panelWidth - 140, Height: 16}, "", "", float32(s.obstacles), 0, 30))
		if n != s.obstacles {
			s.obstacles = n
			s.scatter()
		}
		py += 28

		bw := float32(panelWidth-20) / 3
		if gui.Button(rl.Rectangle{X: panelX, Y: py, Width: bw, Height: 26}, toggleText(s.feeding, "Food: on", "Food: off")) {
			s.feeding = !s.feeding
		}
		if gui.Button(rl.Rectangle{X: panelX + bw + 10, Y: py, Width: bw, Height: 26}, toggleText(s.grooming, "Groom: on", "Groom: off")) {
			s.grooming = !s.grooming
		}
		if gui.Button(rl.Rectangle{X: panelX + 2*(bw+10), Y: py, Width: bw, Height: 26}, "Reset") {
			s.ctrl.Close()
			next, err := newScope(cfg, time.Now().UnixNano(), s.obstacles, s.avoidGain)
			if err != nil {
				slog.Error("failed to restart controller", "error", err)
			} else {
				s = next
				view.ClearTrail()
			}
		}

		perfPanel.Draw(s.ctrl.Perf().Stats())
		hud.DrawControls(windowHeight, "[SPACE] Pause  [TAB] Overlays  [Wheel] Zoom  [RMB] Pan  [R/L/T/H/F] Overlays")

		rl.EndDrawing()
	}

	s.ctrl.Close()
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
