package policy

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/san-kum/pursuitsim/internal/pursuit"
)

// PID steers on bearing error with a full PID loop and sets throttle from
// range minus a standoff distance, braking when it overshoots.
type PID struct {
	Kp       float32
	Ki       float32
	Kd       float32
	SpeedKp  float32
	Standoff float32

	dt       float32
	integral float32
	prevErr  float32
	first    bool
}

func NewPID(kp, ki, kd float32, w pursuit.WorldConfig) *PID {
	return &PID{
		Kp:       kp,
		Ki:       ki,
		Kd:       kd,
		SpeedKp:  0.01,
		Standoff: float32(w.CaptureRadius) / 2,
		dt:       float32(w.Dt),
		first:    true,
	}
}

func (p *PID) Act(obs pursuit.Observation) pursuit.Action {
	err := Bearing(obs)

	var steer float32
	if p.first {
		p.prevErr = err
		p.first = false
		steer = p.Kp * err
	} else {
		p.integral += err * p.dt
		// Bearing flips sign when the target passes behind; don't let the
		// derivative spike on the wrap.
		derr := err - p.prevErr
		if math32.Abs(derr) > math32.Pi {
			derr = 0
		}
		steer = p.Kp*err + p.Ki*p.integral + p.Kd*derr/p.dt
		p.prevErr = err
	}

	throttle := p.SpeedKp * (Range(obs) - p.Standoff)
	// Slow down for sharp turns so the turning radius stays small.
	throttle *= math32.Cos(err)

	return pursuit.Action{clampUnit(steer), clampUnit(throttle)}
}

func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":       float64(p.Kp),
		"ki":       float64(p.Ki),
		"kd":       float64(p.Kd),
		"speed_kp": float64(p.SpeedKp),
		"standoff": float64(p.Standoff),
	}
}

func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		p.Kp = float32(value)
	case "ki":
		p.Ki = float32(value)
	case "kd":
		p.Kd = float32(value)
	case "speed_kp":
		p.SpeedKp = float32(value)
	case "standoff":
		p.Standoff = float32(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}
