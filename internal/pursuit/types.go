package pursuit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vehicle is the pursuer. Yaw is kept in (-pi, pi]; V is signed, forward positive.
type Vehicle struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Yaw float64 `json:"yaw"`
	V   float64 `json:"v"`
}

func (v Vehicle) Pos() mgl64.Vec2 { return mgl64.Vec2{v.X, v.Y} }

// Velocity returns the world-frame velocity vector.
func (v Vehicle) Velocity() mgl64.Vec2 {
	return mgl64.Vec2{v.V * math.Cos(v.Yaw), v.V * math.Sin(v.Yaw)}
}

type Target struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

func (t Target) Pos() mgl64.Vec2      { return mgl64.Vec2{t.X, t.Y} }
func (t Target) Velocity() mgl64.Vec2 { return mgl64.Vec2{t.VX, t.VY} }
func (t Target) Speed() float64       { return math.Hypot(t.VX, t.VY) }

// State is the complete mutable simulation state of one episode.
type State struct {
	Vehicle Vehicle `json:"vehicle"`
	Target  Target  `json:"target"`
	Tick    int     `json:"tick"`
}

func (s State) IsValid() bool {
	for _, v := range []float64{
		s.Vehicle.X, s.Vehicle.Y, s.Vehicle.Yaw, s.Vehicle.V,
		s.Target.X, s.Target.Y, s.Target.VX, s.Target.VY,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Observation is the body-frame view of the target: x_rel, y_rel, vx_rel, vy_rel, v.
type Observation [5]float32

const (
	ObsXRel = iota
	ObsYRel
	ObsVXRel
	ObsVYRel
	ObsSpeed

	ObsSize
)

func (o Observation) Slice() []float32 {
	s := make([]float32, len(o))
	copy(s, o[:])
	return s
}

// Action is (steer, accel), each meaningful only within [-1, 1].
type Action [2]float32

// ActionFromSlice converts an externally supplied vector, failing on any
// length other than two.
func ActionFromSlice(a []float32) (Action, error) {
	if len(a) != 2 {
		return Action{}, ErrActionShape
	}
	return Action{a[0], a[1]}, nil
}

// Info carries per-step diagnostics. Step always sets "dist".
type Info map[string]float64

// Transition is the result of a single Step.
type Transition struct {
	Observation Observation
	Reward      float32
	Terminated  bool
	Truncated   bool
	Info        Info
}
