package metrics

import (
	"math"

	"github.com/san-kum/pursuitsim/internal/pursuit"
)

type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

// Observe counts the clamped action, which is what the vehicle actually receives.
func (c *ControlEffort) Observe(a pursuit.Action, _ pursuit.Transition) {
	a0, a1 := pursuit.ClampAction(a)
	c.sum += math.Abs(a0) + math.Abs(a1)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

type EpisodeReturn struct {
	total float64
}

func NewEpisodeReturn() *EpisodeReturn { return &EpisodeReturn{} }

func (e *EpisodeReturn) Name() string { return "episode_return" }

func (e *EpisodeReturn) Observe(_ pursuit.Action, tr pursuit.Transition) {
	e.total += float64(tr.Reward)
}

func (e *EpisodeReturn) Value() float64 { return e.total }

func (e *EpisodeReturn) Reset() { e.total = 0 }
