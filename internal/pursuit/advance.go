package pursuit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// TargetDriver moves the target through one tick: velocity update, position
// update and containment.
type TargetDriver interface {
	Drive(w WorldConfig, t Target) Target
}

// RandomWalk perturbs the target velocity with Gaussian noise on each axis,
// caps its speed and reflects it off the world edges. It draws exactly two
// normals per tick, x first.
type RandomWalk struct {
	Src Source
}

func (r RandomWalk) Drive(w WorldConfig, t Target) Target {
	t.VX += r.Src.Normal(0, w.TargetAccelStd) * w.Dt
	t.VY += r.Src.Normal(0, w.TargetAccelStd) * w.Dt
	t.VX, t.VY = capSpeed(t.VX, t.VY, w.TargetMaxSpeed)

	t.X += t.VX * w.Dt
	t.Y += t.VY * w.Dt

	t.X, t.VX = Reflect(t.X, t.VX, 0, w.Width)
	t.Y, t.VY = Reflect(t.Y, t.VY, 0, w.Height)
	return t
}

// Advance performs one tick on a copy of s and returns the new state, its
// observation, the reward for a and the body-frame distance to the target.
// The order of operations is fixed; trajectories are reproducible only if it
// is preserved.
func Advance(w WorldConfig, s State, a Action, src Source) (State, Observation, float64, float64) {
	return AdvanceWith(w, s, a, RandomWalk{Src: src})
}

func AdvanceWith(w WorldConfig, s State, a Action, drv TargetDriver) (State, Observation, float64, float64) {
	a0, a1 := ClampAction(a)
	delta, accel := w.Commands(a0, a1)

	car := s.Vehicle
	car.X += car.V * math.Cos(car.Yaw) * w.Dt
	car.Y += car.V * math.Sin(car.Yaw) * w.Dt
	car.Yaw = WrapAngle(car.Yaw + (car.V/w.Wheelbase)*math.Tan(delta)*w.Dt)
	car.V += accel * w.Dt
	car.V *= w.Drag

	s.Target = drv.Drive(w, s.Target)

	// Border contact only pins the position; heading and speed are kept.
	car.X, _ = Reflect(car.X, 0, 0, w.Width)
	car.Y, _ = Reflect(car.Y, 0, 0, w.Height)
	s.Vehicle = car

	obs := ObservationOf(s)
	reward, dist := w.Reward(obs, a)
	s.Tick++
	return s, obs, reward, dist
}

// ObservationOf expresses the target's position and velocity relative to the
// vehicle, in the vehicle's body frame.
func ObservationOf(s State) Observation {
	yaw := s.Vehicle.Yaw
	relPos := ToBody(s.Target.Pos().Sub(s.Vehicle.Pos()), yaw)
	relVel := ToBody(s.Target.Velocity().Sub(s.Vehicle.Velocity()), yaw)
	return Observation{
		float32(relPos.X()),
		float32(relPos.Y()),
		float32(relVel.X()),
		float32(relVel.Y()),
		float32(s.Vehicle.V),
	}
}

// Reward scores an observation reached under action a. It works on the
// float32 observation so an external consumer can recompute it exactly.
func (w WorldConfig) Reward(o Observation, a Action) (reward, dist float64) {
	a0, a1 := ClampAction(a)
	rel := mgl64.Vec2{float64(o[ObsXRel]), float64(o[ObsYRel])}
	dist = math.Hypot(rel.X(), rel.Y())
	headingErr := math.Abs(math.Atan2(rel.Y(), rel.X()))

	reward = -0.30*dist - 0.05*headingErr*headingErr - 0.001*(a0*a0+a1*a1)
	if dist < w.CaptureRadius {
		reward += w.CaptureBonus
	}
	return reward, dist
}

// Done reports whether s is terminal.
func (w WorldConfig) Done(s State) bool {
	return s.Tick >= w.EpisodeSteps
}
