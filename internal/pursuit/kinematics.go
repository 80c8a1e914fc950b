package pursuit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const twoPi = 2 * math.Pi

// WrapAngle maps a into (-pi, pi] by whole turns. Very large inputs are first
// reduced with math.Remainder so the loop stays short; the result is the same.
func WrapAngle(a float64) float64 {
	if math.Abs(a) > 64*math.Pi {
		a = math.Remainder(a, twoPi)
	}
	for a > math.Pi {
		a -= twoPi
	}
	for a <= -math.Pi {
		a += twoPi
	}
	return a
}

// ToBody rotates a world-frame vector into the frame of a body with heading yaw.
func ToBody(v mgl64.Vec2, yaw float64) mgl64.Vec2 {
	c, s := math.Cos(yaw), math.Sin(yaw)
	return mgl64.Vec2{
		c*v[0] + s*v[1],
		-s*v[0] + c*v[1],
	}
}

// maxReflections bounds the mirror loop for overshoots larger than the world.
const maxReflections = 8

// Reflect mirrors pos back into [lo, hi]. Crossing lo forces vel >= 0,
// crossing hi forces vel <= 0.
func Reflect(pos, vel, lo, hi float64) (float64, float64) {
	for i := 0; i < maxReflections; i++ {
		switch {
		case pos < lo:
			pos, vel = lo+(lo-pos), math.Abs(vel)
		case pos > hi:
			pos, vel = hi-(pos-hi), -math.Abs(vel)
		default:
			return pos, vel
		}
	}
	return math.Max(lo, math.Min(hi, pos)), vel
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// ClampAction clips both components to [-1, 1].
func ClampAction(a Action) (float64, float64) {
	return clamp(float64(a[0]), -1, 1), clamp(float64(a[1]), -1, 1)
}

// Commands maps a clamped action onto a steering angle and an acceleration.
// Braking is limited by MaxDecel rather than MaxAccel.
func (w WorldConfig) Commands(a0, a1 float64) (delta, accel float64) {
	delta = a0 * w.MaxSteer
	accel = a1 * w.MaxAccel
	if accel < 0 {
		accel = math.Max(accel, -w.MaxDecel)
	}
	return delta, accel
}

// capSpeed rescales (vx, vy) to at most limit, preserving direction.
func capSpeed(vx, vy, limit float64) (float64, float64) {
	sp := math.Hypot(vx, vy)
	if sp > limit {
		vx *= limit / sp
		vy *= limit / sp
	}
	return vx, vy
}
