// Package config provides configuration loading and access for the controller.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// NumSensors is the number of proximity sensors around the body.
const NumSensors = 8

// Config holds all controller configuration parameters.
type Config struct {
	Sensors   SensorsConfig   `yaml:"sensors"`
	Drives    DrivesConfig    `yaml:"drives"`
	Damage    DamageConfig    `yaml:"damage"`
	Behavior  BehaviorConfig  `yaml:"behavior"`
	Control   ControlConfig   `yaml:"control"`
	Actuator  ActuatorConfig  `yaml:"actuator"`
	Indicator IndicatorConfig `yaml:"indicator"`
	Arena     ArenaConfig     `yaml:"arena"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SensorsConfig holds the proximity mapping parameters.
type SensorsConfig struct {
	MinDist       int  `yaml:"min_dist"`       // Noise floor; raw below maps to 0
	MaxDist       int  `yaml:"max_dist"`       // Ceiling; raw above saturates here
	ExactDivision bool `yaml:"exact_division"` // Halve with float division instead of a shift
}

// DrivesConfig holds the physiological variable dynamics.
type DrivesConfig struct {
	InitialLevel      float64 `yaml:"initial_level"`
	EnergyDecay       float64 `yaml:"energy_decay"`   // Per tick
	TegumentDecay     float64 `yaml:"tegument_decay"` // Per tick
	EnergyCue         float64 `yaml:"energy_cue"`
	TegumentCue       float64 `yaml:"tegument_cue"`
	DamageScale       float64 `yaml:"damage_scale"` // Integrity loss per unit of damage
	ClampUpper        bool    `yaml:"clamp_upper"`  // Cap restored levels at 1.0
	ExhaustionEpsilon float64 `yaml:"exhaustion_epsilon"`
}

// DamageConfig holds the damage detector parameters.
type DamageConfig struct {
	BodyRadiusCM      float64 `yaml:"body_radius_cm"`
	SpreadRatio       float64 `yaml:"spread_ratio"`
	PropagationFactor float64 `yaml:"propagation_factor"`
	SameIndex         bool    `yaml:"same_index"`     // Compare sensor i with its own history instead of i-1
	RateThreshold     float64 `yaml:"rate_threshold"` // Fraction of dynamic range (and of max speed)
}

// AvoidWeights holds one Braitenberg weight per sensor for each wheel.
type AvoidWeights struct {
	Left  []float64 `yaml:"left"`
	Right []float64 `yaml:"right"`
}

// BehaviorConfig holds behavioral group parameters.
type BehaviorConfig struct {
	SeekSpeed         float64      `yaml:"seek_speed"`
	EatAmount         float64      `yaml:"eat_amount"`
	GroomAmount       float64      `yaml:"groom_amount"`
	GroomPulsePeriods int          `yaml:"groom_pulse_periods"` // Length of each grooming pulse in ticks
	AvoidMin          float64      `yaml:"avoid_min"`
	AvoidMax          float64      `yaml:"avoid_max"`
	AvoidWeights      AvoidWeights `yaml:"avoid_weights"`
}

// ControlConfig holds control loop timing.
type ControlConfig struct {
	Period   time.Duration `yaml:"period"`
	MaxTicks int           `yaml:"max_ticks"` // 0 = until exhaustion
}

// ActuatorConfig holds wheel command and resilience settings.
type ActuatorConfig struct {
	SpeedScale       float64       `yaml:"speed_scale"`       // Backend units per unit command
	FailureThreshold int           `yaml:"failure_threshold"` // Consecutive failures before forced stop
	RetryAttempts    int           `yaml:"retry_attempts"`
	RetryDelay       time.Duration `yaml:"retry_delay"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout"`
}

// IndicatorConfig holds LED animation settings.
type IndicatorConfig struct {
	Enabled bool          `yaml:"enabled"`
	Frame   time.Duration `yaml:"frame"`
}

// ArenaConfig holds the simulated arena used when no hardware is attached.
type ArenaConfig struct {
	SizeCM          float64 `yaml:"size_cm"`
	SensorRangeCM   float64 `yaml:"sensor_range_cm"`
	MaxWheelSpeedCM float64 `yaml:"max_wheel_speed_cm"`
	WheelBaseCM     float64 `yaml:"wheel_base_cm"`
	ProximityMax    int     `yaml:"proximity_max"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow      int `yaml:"stats_window"` // Ticks per stats window
	PrintEvery       int `yaml:"print_every"`  // Ticks between state dumps (0 = never)
	PerfWindow       int `yaml:"perf_window"`
	SensorWarnPerSec int `yaml:"sensor_warn_per_sec"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	PeriodSeconds  float64 // Control.Period in seconds
	PeriodMicros   float64 // Control.Period in microseconds
	SensorRange    float64 // MaxDist - MinDist
	MaxSensorSpeed float64 // SensorRange per period, in units per second
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// ComputeDerived calculates values derived from loaded config.
// Call it again after mutating a loaded config by hand.
func (c *Config) ComputeDerived() {
	c.Derived.PeriodSeconds = c.Control.Period.Seconds()
	c.Derived.PeriodMicros = float64(c.Control.Period) / float64(time.Microsecond)
	c.Derived.SensorRange = float64(c.Sensors.MaxDist - c.Sensors.MinDist)
	if c.Derived.PeriodSeconds > 0 {
		c.Derived.MaxSensorSpeed = c.Derived.SensorRange / c.Derived.PeriodSeconds
	}
}

// Validate checks the invariants the controller relies on. Every violation
// is reported; a non-nil result is fatal at startup.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Sensors.MinDist >= 0, "sensors.min_dist must be >= 0, got %d", c.Sensors.MinDist)
	check(c.Sensors.MaxDist > c.Sensors.MinDist, "sensors.max_dist (%d) must exceed min_dist (%d)", c.Sensors.MaxDist, c.Sensors.MinDist)

	check(c.Drives.EnergyDecay >= 0, "drives.energy_decay must be >= 0")
	check(c.Drives.TegumentDecay >= 0, "drives.tegument_decay must be >= 0")
	check(c.Drives.DamageScale >= 0, "drives.damage_scale must be >= 0")
	check(c.Drives.ExhaustionEpsilon >= 0, "drives.exhaustion_epsilon must be >= 0")
	check(c.Drives.InitialLevel > c.Drives.ExhaustionEpsilon, "drives.initial_level must be above exhaustion")

	check(c.Damage.BodyRadiusCM >= 0, "damage.body_radius_cm must be >= 0")
	check(c.Damage.SpreadRatio >= 0, "damage.spread_ratio must be >= 0")
	check(c.Damage.RateThreshold > 0, "damage.rate_threshold must be > 0")

	check(c.Behavior.AvoidMax > c.Behavior.AvoidMin, "behavior.avoid_max must exceed avoid_min")
	check(len(c.Behavior.AvoidWeights.Left) == NumSensors, "behavior.avoid_weights.left needs %d values, got %d", NumSensors, len(c.Behavior.AvoidWeights.Left))
	check(len(c.Behavior.AvoidWeights.Right) == NumSensors, "behavior.avoid_weights.right needs %d values, got %d", NumSensors, len(c.Behavior.AvoidWeights.Right))
	check(c.Behavior.GroomPulsePeriods >= 0, "behavior.groom_pulse_periods must be >= 0")

	check(c.Control.Period > 0, "control.period must be > 0, got %s", c.Control.Period)
	check(c.Control.MaxTicks >= 0, "control.max_ticks must be >= 0")

	check(c.Actuator.FailureThreshold >= 1, "actuator.failure_threshold must be >= 1")
	check(c.Actuator.RetryAttempts >= 1, "actuator.retry_attempts must be >= 1")

	check(c.Telemetry.StatsWindow >= 1, "telemetry.stats_window must be >= 1")

	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
