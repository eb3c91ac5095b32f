package backend

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/pthm-cable/homeostat/components"
	"github.com/pthm-cable/homeostat/config"
)

// Obstacle is a round obstacle inside the arena.
type Obstacle struct {
	X, Y   float64
	Radius float64
}

// Arena is a kinematic differential-drive robot in a walled square arena.
// It implements SensorSource, Actuator, Indicator and BatteryReader.
//
// The world advances by one control period on every proximity read, so a
// run is deterministic for a given seed regardless of wall-clock timing.
type Arena struct {
	mu sync.Mutex

	cfg        config.ArenaConfig
	speedScale float64
	periodS    float64
	bodyRadius float64

	pose      components.Pose
	left      float64 // wheel speeds in backend units
	right     float64
	obstacles []Obstacle
	leds      [3]Color
	last      []int
	stops     int
	steps     int
}

// NewArena creates an arena with the robot placed at a random pose in the
// middle half of the floor.
func NewArena(cfg *config.Config, rng *rand.Rand) *Arena {
	size := cfg.Arena.SizeCM
	a := &Arena{
		cfg:        cfg.Arena,
		speedScale: cfg.Actuator.SpeedScale,
		periodS:    cfg.Derived.PeriodSeconds,
		bodyRadius: cfg.Damage.BodyRadiusCM,
	}
	a.pose.X = size/4 + rng.Float64()*size/2
	a.pose.Y = size/4 + rng.Float64()*size/2
	a.pose.Heading = rng.Float64() * 2 * math.Pi
	return a
}

// SensorAngle returns the mounting angle of sensor i relative to the
// heading. Index order: back, back-right, right, front-right, front,
// front-left, left, back-left.
func SensorAngle(i int) float64 {
	return float64(i-config.NumSensors/2) * 2 * math.Pi / config.NumSensors
}

// ReadProximity advances the world by one period and returns the eight
// proximity readings in [0, ProximityMax].
func (a *Arena) ReadProximity(ctx context.Context) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.advance(a.periodS)
	a.last = a.readings()
	return append([]int(nil), a.last...), nil
}

// SetWheelSpeeds sets the wheel speeds in backend units.
func (a *Arena) SetWheelSpeeds(ctx context.Context, left, right float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	a.left, a.right = left, right
	a.mu.Unlock()
	return nil
}

// Stop halts both wheels.
func (a *Arena) Stop(ctx context.Context) error {
	a.mu.Lock()
	a.left, a.right = 0, 0
	a.stops++
	a.mu.Unlock()
	return nil
}

// SetLEDs records the LED colors.
func (a *Arena) SetLEDs(ctx context.Context, left, right, back Color) error {
	a.mu.Lock()
	a.leds = [3]Color{left, right, back}
	a.mu.Unlock()
	return nil
}

// ReadBattery returns a synthetic battery buffer that drains slowly with
// simulated time.
func (a *Arena) ReadBattery(ctx context.Context) ([]byte, error) {
	a.mu.Lock()
	elapsed := time.Duration(float64(a.steps) * a.periodS * float64(time.Second))
	a.mu.Unlock()

	charge := 100 - int(elapsed/time.Minute)
	if charge < 0 {
		charge = 0
	}
	return EncodeBattery(Battery{
		ChargePct:   charge,
		CurrentMA:   -350,
		Temperature: 28,
		VoltageMV:   7400,
	}), nil
}

// SetObstacles replaces the obstacles.
func (a *Arena) SetObstacles(obs []Obstacle) {
	a.mu.Lock()
	a.obstacles = append(a.obstacles[:0], obs...)
	a.mu.Unlock()
}

// Scatter replaces the obstacles with n random ones, keeping a clear
// margin around the robot and the walls.
func (a *Arena) Scatter(rng *rand.Rand, n int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	size := a.cfg.SizeCM
	obs := make([]Obstacle, 0, n)
	for attempts := 0; len(obs) < n && attempts < 100*n; attempts++ {
		o := Obstacle{
			X:      10 + rng.Float64()*(size-20),
			Y:      10 + rng.Float64()*(size-20),
			Radius: 4 + rng.Float64()*10,
		}
		clear := o.Radius + a.bodyRadius + a.cfg.SensorRangeCM
		if math.Hypot(o.X-a.pose.X, o.Y-a.pose.Y) < clear {
			continue
		}
		obs = append(obs, o)
	}
	a.obstacles = obs
}

// Obstacles returns a copy of the obstacles.
func (a *Arena) Obstacles() []Obstacle {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Obstacle(nil), a.obstacles...)
}

// Pose returns the robot pose.
func (a *Arena) Pose() components.Pose {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pose
}

// SetPose moves the robot.
func (a *Arena) SetPose(p components.Pose) {
	a.mu.Lock()
	a.pose = p
	a.mu.Unlock()
}

// LEDs returns the last colors set on the left, right and back LEDs.
func (a *Arena) LEDs() [3]Color {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.leds
}

// Stops returns how many times Stop was called.
func (a *Arena) Stops() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stops
}

// LastReadings returns the most recent proximity frame, or nil before the
// first read.
func (a *Arena) LastReadings() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int(nil), a.last...)
}

// SensorRange returns the proximity ray length in cm.
func (a *Arena) SensorRange() float64 {
	return a.cfg.SensorRangeCM
}

// Size returns the side of the arena in cm.
func (a *Arena) Size() float64 {
	return a.cfg.SizeCM
}

// BodyRadius returns the robot radius in cm.
func (a *Arena) BodyRadius() float64 {
	return a.bodyRadius
}

// advance integrates the differential-drive kinematics over dt seconds and
// resolves collisions with the walls and obstacles.
func (a *Arena) advance(dt float64) {
	a.steps++
	if a.speedScale == 0 {
		return
	}
	vl := a.left / a.speedScale * a.cfg.MaxWheelSpeedCM
	vr := a.right / a.speedScale * a.cfg.MaxWheelSpeedCM
	v := (vl + vr) / 2
	a.pose.AngVel = (vr - vl) / a.cfg.WheelBaseCM

	a.pose.Heading = normalizeAngle(a.pose.Heading + a.pose.AngVel*dt)
	a.pose.X += v * math.Cos(a.pose.Heading) * dt
	a.pose.Y += v * math.Sin(a.pose.Heading) * dt

	// Walls
	r := a.bodyRadius
	a.pose.X = math.Max(r, math.Min(a.cfg.SizeCM-r, a.pose.X))
	a.pose.Y = math.Max(r, math.Min(a.cfg.SizeCM-r, a.pose.Y))

	// Obstacles push the body back out along the contact normal
	for _, o := range a.obstacles {
		dx, dy := a.pose.X-o.X, a.pose.Y-o.Y
		dist := math.Hypot(dx, dy)
		minDist := o.Radius + r
		if dist >= minDist {
			continue
		}
		if dist == 0 {
			dx, dy, dist = 1, 0, 1
		}
		a.pose.X = o.X + dx/dist*minDist
		a.pose.Y = o.Y + dy/dist*minDist
	}
}

// readings casts one ray per sensor from the body edge and converts the
// distance to the nearest surface into a proximity value.
func (a *Arena) readings() []int {
	out := make([]int, config.NumSensors)
	rangeCM := a.cfg.SensorRangeCM
	for i := range out {
		angle := a.pose.Heading + SensorAngle(i)
		dx, dy := math.Cos(angle), math.Sin(angle)
		ox := a.pose.X + dx*a.bodyRadius
		oy := a.pose.Y + dy*a.bodyRadius

		d := a.castRay(ox, oy, dx, dy)
		if d >= rangeCM {
			continue
		}
		out[i] = int(float64(a.cfg.ProximityMax) * (1 - d/rangeCM))
	}
	return out
}

// castRay returns the distance from (ox, oy) along the unit vector
// (dx, dy) to the nearest wall or obstacle.
func (a *Arena) castRay(ox, oy, dx, dy float64) float64 {
	size := a.cfg.SizeCM
	best := math.Inf(1)

	if dx > 0 {
		best = math.Min(best, (size-ox)/dx)
	} else if dx < 0 {
		best = math.Min(best, -ox/dx)
	}
	if dy > 0 {
		best = math.Min(best, (size-oy)/dy)
	} else if dy < 0 {
		best = math.Min(best, -oy/dy)
	}

	for _, o := range a.obstacles {
		// |o + t*d - c|^2 = R^2
		fx, fy := ox-o.X, oy-o.Y
		b := fx*dx + fy*dy
		c := fx*fx + fy*fy - o.Radius*o.Radius
		if c <= 0 {
			return 0 // sensor is inside the obstacle
		}
		disc := b*b - c
		if disc < 0 {
			continue
		}
		t := -b - math.Sqrt(disc)
		if t >= 0 {
			best = math.Min(best, t)
		}
	}

	return math.Max(best, 0)
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
