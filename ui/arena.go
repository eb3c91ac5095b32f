package ui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/homeostat/backend"
	"github.com/pthm-cable/homeostat/camera"
	"github.com/pthm-cable/homeostat/components"
)

const trailLength = 600

// ArenaView draws the arena floor, the obstacles and the robot.
type ArenaView struct {
	cam      *camera.Camera
	overlays *OverlayRegistry
	trail    []components.Position
}

// NewArenaView creates a view drawing through cam.
func NewArenaView(cam *camera.Camera, overlays *OverlayRegistry) *ArenaView {
	return &ArenaView{cam: cam, overlays: overlays}
}

// Record appends the robot position to the trail.
func (v *ArenaView) Record(p components.Position) {
	if len(v.trail) == trailLength {
		copy(v.trail, v.trail[1:])
		v.trail = v.trail[:trailLength-1]
	}
	v.trail = append(v.trail, p)
}

// ClearTrail forgets the recorded path.
func (v *ArenaView) ClearTrail() {
	v.trail = v.trail[:0]
}

// Draw renders the arena as seen by a.
func (v *ArenaView) Draw(a *backend.Arena, proximityMax int) {
	pose := a.Pose()
	if v.overlays.IsEnabled(OverlayFollow) {
		v.cam.Follow(float32(pose.X), float32(pose.Y))
	}

	size := float32(a.Size())
	x0, y0 := v.cam.WorldToScreen(0, 0)
	rl.DrawRectangle(int32(x0), int32(y0), int32(v.cam.Scale(size)), int32(v.cam.Scale(size)), rl.Color{R: 30, G: 34, B: 40, A: 255})
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: v.cam.Scale(size), Height: v.cam.Scale(size)}, 3, rl.Gray)

	for _, o := range a.Obstacles() {
		sx, sy := v.cam.WorldToScreen(float32(o.X), float32(o.Y))
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, v.cam.Scale(float32(o.Radius)), rl.Color{R: 120, G: 90, B: 60, A: 255})
	}

	if v.overlays.IsEnabled(OverlayTrail) {
		v.drawTrail()
	}

	cx, cy := v.cam.WorldToScreen(float32(pose.X), float32(pose.Y))
	center := rl.Vector2{X: cx, Y: cy}
	body := float32(a.BodyRadius())

	if v.overlays.IsEnabled(OverlayRays) {
		v.drawRays(pose, body, float32(a.SensorRange()), a.LastReadings(), proximityMax)
	}

	rl.DrawCircleV(center, v.cam.Scale(body), rl.Color{R: 200, G: 200, B: 210, A: 255})
	v.drawLEDs(pose, body, a.LEDs())

	if v.overlays.IsEnabled(OverlayHeading) {
		hx := float32(math.Cos(pose.Heading)) * v.cam.Scale(body*1.6)
		hy := float32(math.Sin(pose.Heading)) * v.cam.Scale(body*1.6)
		rl.DrawLineEx(center, rl.Vector2{X: cx + hx, Y: cy + hy}, 2, rl.SkyBlue)
	}
}

func (v *ArenaView) drawTrail() {
	for i := 1; i < len(v.trail); i++ {
		ax, ay := v.cam.WorldToScreen(float32(v.trail[i-1].X), float32(v.trail[i-1].Y))
		bx, by := v.cam.WorldToScreen(float32(v.trail[i].X), float32(v.trail[i].Y))
		alpha := uint8(40 + 160*i/len(v.trail))
		rl.DrawLineV(rl.Vector2{X: ax, Y: ay}, rl.Vector2{X: bx, Y: by}, rl.Color{R: 90, G: 160, B: 220, A: alpha})
	}
}

// drawRays shades each proximity ray by its reading: dim when nothing is
// in range, red as the reading approaches the maximum.
func (v *ArenaView) drawRays(pose components.Pose, body, rangeCM float32, readings []int, proximityMax int) {
	for i := 0; i < len(readings); i++ {
		angle := pose.Heading + backend.SensorAngle(i)
		dx, dy := float32(math.Cos(angle)), float32(math.Sin(angle))
		ox, oy := float32(pose.X)+dx*body, float32(pose.Y)+dy*body

		frac := float32(0)
		if proximityMax > 0 {
			frac = float32(readings[i]) / float32(proximityMax)
		}
		length := rangeCM
		if frac > 0 {
			length = rangeCM * (1 - frac)
		}

		sx, sy := v.cam.WorldToScreen(ox, oy)
		ex, ey := v.cam.WorldToScreen(ox+dx*length, oy+dy*length)
		col := rl.Color{R: 80, G: 80, B: 80, A: 120}
		if frac > 0 {
			col = rl.Color{R: uint8(120 + 135*frac), G: uint8(200 * (1 - frac)), B: 60, A: 220}
		}
		rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, col)

		if v.overlays.IsEnabled(OverlayLabels) {
			rl.DrawText(fmt.Sprintf("%d", i), int32(ex)+2, int32(ey)+2, 10, rl.LightGray)
		}
	}
}

// drawLEDs places the left, right and back LEDs on the body edge.
func (v *ArenaView) drawLEDs(pose components.Pose, body float32, leds [3]backend.Color) {
	offsets := [3]float64{math.Pi / 2, -math.Pi / 2, math.Pi}
	for i, c := range leds {
		if c == backend.Off {
			continue
		}
		angle := pose.Heading + offsets[i]
		wx := float32(pose.X) + float32(math.Cos(angle))*body*0.7
		wy := float32(pose.Y) + float32(math.Sin(angle))*body*0.7
		sx, sy := v.cam.WorldToScreen(wx, wy)
		r, g, b := c.RGB()
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, v.cam.Scale(body*0.2), rl.Color{R: r * 4, G: g * 4, B: b * 4, A: 255})
	}
}
