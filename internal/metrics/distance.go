package metrics

import (
	"math"

	"github.com/san-kum/pursuitsim/internal/pursuit"
)

type MeanDistance struct {
	sum     float64
	samples int
}

func NewMeanDistance() *MeanDistance { return &MeanDistance{} }

func (m *MeanDistance) Name() string { return "mean_distance" }

func (m *MeanDistance) Observe(_ pursuit.Action, tr pursuit.Transition) {
	m.sum += tr.Info["dist"]
	m.samples++
}

func (m *MeanDistance) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanDistance) Reset() {
	m.sum = 0
	m.samples = 0
}

type MinDistance struct {
	min float64
}

func NewMinDistance() *MinDistance { return &MinDistance{min: math.Inf(1)} }

func (m *MinDistance) Name() string { return "min_distance" }

func (m *MinDistance) Observe(_ pursuit.Action, tr pursuit.Transition) {
	m.min = math.Min(m.min, tr.Info["dist"])
}

// Value is 0 before the first observation.
func (m *MinDistance) Value() float64 {
	if math.IsInf(m.min, 1) {
		return 0
	}
	return m.min
}

func (m *MinDistance) Reset() { m.min = math.Inf(1) }

// CaptureRate is the fraction of steps spent inside the capture radius.
type CaptureRate struct {
	radius   float64
	captured int
	samples  int
}

func NewCaptureRate(radius float64) *CaptureRate {
	return &CaptureRate{radius: radius}
}

func (c *CaptureRate) Name() string { return "capture_rate" }

func (c *CaptureRate) Observe(_ pursuit.Action, tr pursuit.Transition) {
	c.samples++
	if tr.Info["dist"] < c.radius {
		c.captured++
	}
}

func (c *CaptureRate) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.captured) / float64(c.samples)
}

func (c *CaptureRate) Reset() {
	c.captured = 0
	c.samples = 0
}
