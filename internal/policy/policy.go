// Package policy holds hand-written pursuit policies. They stand in for a
// learned actor: each maps a body-frame observation to a normalized action.
package policy

import (
	"github.com/chewxy/math32"

	"github.com/san-kum/pursuitsim/internal/pursuit"
)

type Policy interface {
	Act(obs pursuit.Observation) pursuit.Action
}

// Resetter is implemented by policies that keep state across steps.
type Resetter interface {
	Reset()
}

// Tunable is implemented by policies with named float parameters.
type Tunable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// apply sets every entry of params that p declares. Other keys are skipped:
// callers share one parameter map across policies.
func apply(p Tunable, params map[string]float64) error {
	known := p.GetParams()
	for name, v := range params {
		if _, ok := known[name]; !ok {
			continue
		}
		if err := p.SetParam(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Bearing is the angle of the target off the vehicle's nose, in (-pi, pi].
func Bearing(obs pursuit.Observation) float32 {
	return math32.Atan2(obs[pursuit.ObsYRel], obs[pursuit.ObsXRel])
}

// Range is the distance to the target.
func Range(obs pursuit.Observation) float32 {
	return math32.Hypot(obs[pursuit.ObsXRel], obs[pursuit.ObsYRel])
}

func clampUnit(x float32) float32 {
	return math32.Max(-1, math32.Min(1, x))
}
