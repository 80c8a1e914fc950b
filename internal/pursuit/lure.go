package pursuit

import "math"

const (
	DefaultLureKp       = 15.0
	DefaultLureKd       = 2.0
	DefaultLureMaxSpeed = 400.0
	DefaultLureMargin   = 50.0
)

// Lure drives the target toward an external point with a spring-damper
// instead of a random walk. Position is clamped to a margin inside the world
// rather than reflected. It consumes no randomness.
type Lure struct {
	X, Y     float64
	Kp, Kd   float64
	MaxSpeed float64
	Margin   float64
}

func NewLure(x, y float64) *Lure {
	return &Lure{
		X:        x,
		Y:        y,
		Kp:       DefaultLureKp,
		Kd:       DefaultLureKd,
		MaxSpeed: DefaultLureMaxSpeed,
		Margin:   DefaultLureMargin,
	}
}

// MoveTo repositions the point being chased.
func (l *Lure) MoveTo(x, y float64) {
	l.X, l.Y = x, y
}

func (l *Lure) Drive(w WorldConfig, t Target) Target {
	ax := l.Kp*(l.X-t.X) - l.Kd*t.VX
	ay := l.Kp*(l.Y-t.Y) - l.Kd*t.VY
	t.VX += ax * w.Dt
	t.VY += ay * w.Dt
	t.VX, t.VY = capSpeed(t.VX, t.VY, l.MaxSpeed)

	t.X += t.VX * w.Dt
	t.Y += t.VY * w.Dt

	t.X = clamp(t.X, math.Min(l.Margin, w.Width/2), math.Max(w.Width-l.Margin, w.Width/2))
	t.Y = clamp(t.Y, math.Min(l.Margin, w.Height/2), math.Max(w.Height-l.Margin, w.Height/2))
	return t
}
