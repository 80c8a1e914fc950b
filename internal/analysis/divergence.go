package analysis

import (
	"math"

	"github.com/san-kum/pursuitsim/internal/policy"
	"github.com/san-kum/pursuitsim/internal/pursuit"
)

// Divergence estimates the largest Lyapunov exponent of the closed loop
// (policy plus env) from s0. Two rollouts start eps apart in vehicle x and see
// identical target noise; after every step the separation is logged and scaled
// back to eps. The result is in 1/s.
func Divergence(w pursuit.WorldConfig, s0 pursuit.State, newPolicy func() policy.Policy, seed int64, eps float64, steps int) float64 {
	if eps <= 0 || steps <= 0 {
		return 0
	}

	ref, pert := s0, s0
	pert.Vehicle.X += eps
	srcRef, srcPert := pursuit.NewSource(seed), pursuit.NewSource(seed)
	polRef, polPert := newPolicy(), newPolicy()
	obsRef, obsPert := pursuit.ObservationOf(ref), pursuit.ObservationOf(pert)

	var d [8]float64
	step := func() float64 {
		ref, obsRef, _, _ = pursuit.Advance(w, ref, polRef.Act(obsRef), srcRef)
		pert, obsPert, _, _ = pursuit.Advance(w, pert, polPert.Act(obsPert), srcPert)
		d = separation(ref, pert)
		return norm(d)
	}
	renormalize := func(sep float64) {
		if sep == 0 {
			// Trajectories merged; restart the offset along vehicle x.
			pert = ref
			pert.Vehicle.X += eps
		} else {
			pert = rescale(ref, d, eps/sep)
		}
		obsPert = pursuit.ObservationOf(pert)
	}
	return growthRate(steps, w.Dt, eps, step, renormalize)
}

// growthRate runs the two-trajectory estimator: step advances both and
// returns their separation, renormalize scales it back to eps. Every step
// contributes log(sep/eps); merged steps contribute nothing.
func growthRate(steps int, dt, eps float64, step func() float64, renormalize func(sep float64)) float64 {
	sumLog := 0.0
	for i := 0; i < steps; i++ {
		sep := step()
		if sep > 0 {
			sumLog += math.Log(sep / eps)
		}
		renormalize(sep)
	}
	return sumLog / (float64(steps) * dt)
}

func separation(a, b pursuit.State) [8]float64 {
	return [8]float64{
		b.Vehicle.X - a.Vehicle.X,
		b.Vehicle.Y - a.Vehicle.Y,
		pursuit.WrapAngle(b.Vehicle.Yaw - a.Vehicle.Yaw),
		b.Vehicle.V - a.Vehicle.V,
		b.Target.X - a.Target.X,
		b.Target.Y - a.Target.Y,
		b.Target.VX - a.Target.VX,
		b.Target.VY - a.Target.VY,
	}
}

func norm(d [8]float64) float64 {
	sum := 0.0
	for _, v := range d {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func rescale(ref pursuit.State, d [8]float64, scale float64) pursuit.State {
	s := ref
	s.Vehicle.X += d[0] * scale
	s.Vehicle.Y += d[1] * scale
	s.Vehicle.Yaw = pursuit.WrapAngle(s.Vehicle.Yaw + d[2]*scale)
	s.Vehicle.V += d[3] * scale
	s.Target.X += d[4] * scale
	s.Target.Y += d[5] * scale
	s.Target.VX += d[6] * scale
	s.Target.VY += d[7] * scale
	return s
}
