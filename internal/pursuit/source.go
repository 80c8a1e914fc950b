package pursuit

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source is the only origin of randomness in a simulation. Each Env owns one;
// tests may substitute a scripted implementation.
type Source interface {
	Uniform(lo, hi float64) float64
	Normal(mu, sigma float64) float64
}

type pcgSource struct {
	src rand.Source
}

// NewSource returns a Source backed by a PCG generator seeded from seed.
func NewSource(seed int64) Source {
	return &pcgSource{src: rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)}
}

// NewEntropySource returns a Source seeded from the runtime's random state.
func NewEntropySource() Source {
	return NewSource(rand.Int64())
}

func (p *pcgSource) Uniform(lo, hi float64) float64 {
	return distuv.Uniform{Min: lo, Max: hi, Src: p.src}.Rand()
}

func (p *pcgSource) Normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: p.src}.Rand()
}
