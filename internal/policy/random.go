package policy

import "github.com/san-kum/pursuitsim/internal/pursuit"

// Random samples both components uniformly from [-1, 1] using its own
// source, so it never perturbs the environment's stream.
type Random struct {
	src  pursuit.Source
	seed int64
}

func NewRandom(seed int64) *Random {
	return &Random{src: pursuit.NewSource(seed), seed: seed}
}

func (r *Random) Act(pursuit.Observation) pursuit.Action {
	return pursuit.Action{
		float32(r.src.Uniform(-1, 1)),
		float32(r.src.Uniform(-1, 1)),
	}
}

// Reset rewinds the stream so every episode sees the same action sequence.
func (r *Random) Reset() {
	r.src = pursuit.NewSource(r.seed)
}
