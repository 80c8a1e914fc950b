package pursuit

import (
	"fmt"
	"math"
)

const (
	DefaultWidth          = 800.0
	DefaultHeight         = 600.0
	DefaultWheelbase      = 48.0
	DefaultMaxSteer       = 0.6
	DefaultMaxAccel       = 500.0
	DefaultMaxDecel       = 600.0
	DefaultDt             = 0.02
	DefaultDrag           = 0.995
	DefaultTargetMaxSpeed = 240.0
	DefaultTargetAccelStd = 500.0
	DefaultSpawnMinSpeed  = 60.0
	DefaultSpawnMaxSpeed  = 180.0
	DefaultEpisodeSteps   = 1000
	DefaultCaptureRadius  = 15.0
	DefaultCaptureBonus   = 1.0
)

// WorldConfig holds every physical and episode parameter of a pursuit world.
// It is treated as immutable once an Env has been built from it.
type WorldConfig struct {
	Width     float64 `yaml:"width" json:"width"`
	Height    float64 `yaml:"height" json:"height"`
	Wheelbase float64 `yaml:"wheelbase" json:"wheelbase"`
	MaxSteer  float64 `yaml:"max_steer" json:"max_steer"`
	MaxAccel  float64 `yaml:"max_accel" json:"max_accel"`
	MaxDecel  float64 `yaml:"max_decel" json:"max_decel"`
	Dt        float64 `yaml:"dt" json:"dt"`
	Drag      float64 `yaml:"drag" json:"drag"`

	TargetMaxSpeed float64 `yaml:"tgt_max_speed" json:"tgt_max_speed"`
	TargetAccelStd float64 `yaml:"tgt_accel_std" json:"tgt_accel_std"`
	SpawnMinSpeed  float64 `yaml:"spawn_min_speed" json:"spawn_min_speed"`
	SpawnMaxSpeed  float64 `yaml:"spawn_max_speed" json:"spawn_max_speed"`

	EpisodeSteps  int     `yaml:"episode_steps" json:"episode_steps"`
	CaptureRadius float64 `yaml:"capture_radius" json:"capture_radius"`
	CaptureBonus  float64 `yaml:"capture_bonus" json:"capture_bonus"`
}

// DefaultWorld returns the canonical parameters for a w x h world.
func DefaultWorld(w, h float64) WorldConfig {
	return WorldConfig{
		Width:          w,
		Height:         h,
		Wheelbase:      DefaultWheelbase,
		MaxSteer:       DefaultMaxSteer,
		MaxAccel:       DefaultMaxAccel,
		MaxDecel:       DefaultMaxDecel,
		Dt:             DefaultDt,
		Drag:           DefaultDrag,
		TargetMaxSpeed: DefaultTargetMaxSpeed,
		TargetAccelStd: DefaultTargetAccelStd,
		SpawnMinSpeed:  DefaultSpawnMinSpeed,
		SpawnMaxSpeed:  DefaultSpawnMaxSpeed,
		EpisodeSteps:   DefaultEpisodeSteps,
		CaptureRadius:  DefaultCaptureRadius,
		CaptureBonus:   DefaultCaptureBonus,
	}
}

func (w WorldConfig) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"width", w.Width},
		{"height", w.Height},
		{"wheelbase", w.Wheelbase},
		{"dt", w.Dt},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %f", ErrInvalidWorld, p.name, p.v)
		}
	}
	if !(w.Drag > 0 && w.Drag <= 1) {
		return fmt.Errorf("%w: drag must be in (0,1], got %f", ErrInvalidWorld, w.Drag)
	}
	nonNegative := []struct {
		name string
		v    float64
	}{
		{"max_steer", w.MaxSteer},
		{"max_accel", w.MaxAccel},
		{"max_decel", w.MaxDecel},
		{"tgt_max_speed", w.TargetMaxSpeed},
		{"tgt_accel_std", w.TargetAccelStd},
		{"spawn_min_speed", w.SpawnMinSpeed},
		{"capture_radius", w.CaptureRadius},
	}
	for _, p := range nonNegative {
		if p.v < 0 || math.IsNaN(p.v) {
			return fmt.Errorf("%w: %s must be non-negative, got %f", ErrInvalidWorld, p.name, p.v)
		}
	}
	// tan blows up at pi/2.
	if w.MaxSteer >= math.Pi/2 {
		return fmt.Errorf("%w: max_steer must be below pi/2, got %f", ErrInvalidWorld, w.MaxSteer)
	}
	if w.SpawnMaxSpeed < w.SpawnMinSpeed {
		return fmt.Errorf("%w: spawn speed range [%f, %f] is empty", ErrInvalidWorld, w.SpawnMinSpeed, w.SpawnMaxSpeed)
	}
	if w.EpisodeSteps <= 0 {
		return fmt.Errorf("%w: episode_steps must be positive, got %d", ErrInvalidWorld, w.EpisodeSteps)
	}
	return nil
}

func (w WorldConfig) GetParams() map[string]float64 {
	return map[string]float64{
		"width":           w.Width,
		"height":          w.Height,
		"wheelbase":       w.Wheelbase,
		"max_steer":       w.MaxSteer,
		"max_accel":       w.MaxAccel,
		"max_decel":       w.MaxDecel,
		"dt":              w.Dt,
		"drag":            w.Drag,
		"tgt_max_speed":   w.TargetMaxSpeed,
		"tgt_accel_std":   w.TargetAccelStd,
		"spawn_min_speed": w.SpawnMinSpeed,
		"spawn_max_speed": w.SpawnMaxSpeed,
		"episode_steps":   float64(w.EpisodeSteps),
		"capture_radius":  w.CaptureRadius,
		"capture_bonus":   w.CaptureBonus,
	}
}

// SetParam updates a single parameter by its yaml name. It does not validate.
func (w *WorldConfig) SetParam(name string, value float64) error {
	switch name {
	case "width":
		w.Width = value
	case "height":
		w.Height = value
	case "wheelbase":
		w.Wheelbase = value
	case "max_steer":
		w.MaxSteer = value
	case "max_accel":
		w.MaxAccel = value
	case "max_decel":
		w.MaxDecel = value
	case "dt":
		w.Dt = value
	case "drag":
		w.Drag = value
	case "tgt_max_speed":
		w.TargetMaxSpeed = value
	case "tgt_accel_std":
		w.TargetAccelStd = value
	case "spawn_min_speed":
		w.SpawnMinSpeed = value
	case "spawn_max_speed":
		w.SpawnMaxSpeed = value
	case "episode_steps":
		w.EpisodeSteps = int(value)
	case "capture_radius":
		w.CaptureRadius = value
	case "capture_bonus":
		w.CaptureBonus = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}
