package policy

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/san-kum/pursuitsim/internal/pursuit"
)

// Follow steers toward the target's bearing and accelerates in proportion to
// range, saturating at fixed physical limits before normalizing.
type Follow struct {
	SteerGain float32
	AccelGain float32
	MinAccel  float32
	MaxAccel  float32

	maxSteer float32
	accelCap float32
}

func NewFollow(w pursuit.WorldConfig) *Follow {
	return &Follow{
		SteerGain: 2,
		AccelGain: 2,
		MinAccel:  -100,
		MaxAccel:  300,
		maxSteer:  float32(w.MaxSteer),
		accelCap:  float32(w.MaxAccel),
	}
}

func (f *Follow) Act(obs pursuit.Observation) pursuit.Action {
	steer := math32.Max(-f.maxSteer, math32.Min(f.maxSteer, Bearing(obs)*f.SteerGain))
	accel := math32.Max(f.MinAccel, math32.Min(f.MaxAccel, Range(obs)*f.AccelGain))

	var a pursuit.Action
	if f.maxSteer > 0 {
		a[0] = clampUnit(steer / f.maxSteer)
	}
	if f.accelCap > 0 {
		a[1] = clampUnit(accel / f.accelCap)
	}
	return a
}

func (f *Follow) GetParams() map[string]float64 {
	return map[string]float64{
		"steer_gain": float64(f.SteerGain),
		"accel_gain": float64(f.AccelGain),
		"min_accel":  float64(f.MinAccel),
		"max_accel":  float64(f.MaxAccel),
	}
}

func (f *Follow) SetParam(name string, value float64) error {
	switch name {
	case "steer_gain":
		f.SteerGain = float32(value)
	case "accel_gain":
		f.AccelGain = float32(value)
	case "min_accel":
		f.MinAccel = float32(value)
	case "max_accel":
		f.MaxAccel = float32(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}
