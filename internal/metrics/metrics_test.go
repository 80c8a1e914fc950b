package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/pursuitsim/internal/pursuit"
)

func transition(reward float32, dist float64) pursuit.Transition {
	return pursuit.Transition{Reward: reward, Info: pursuit.Info{"dist": dist}}
}

func TestDistanceMetrics(t *testing.T) {
	mean := NewMeanDistance()
	lowest := NewMinDistance()
	capture := NewCaptureRate(15)

	if lowest.Value() != 0 || mean.Value() != 0 || capture.Value() != 0 {
		t.Error("expected zero values before any observation")
	}

	for _, d := range []float64{40, 10, 20, 5} {
		tr := transition(0, d)
		mean.Observe(pursuit.Action{}, tr)
		lowest.Observe(pursuit.Action{}, tr)
		capture.Observe(pursuit.Action{}, tr)
	}

	if mean.Value() != 18.75 {
		t.Errorf("expected mean 18.75, got %f", mean.Value())
	}
	if lowest.Value() != 5 {
		t.Errorf("expected min 5, got %f", lowest.Value())
	}
	if capture.Value() != 0.5 {
		t.Errorf("expected capture rate 0.5, got %f", capture.Value())
	}

	mean.Reset()
	lowest.Reset()
	capture.Reset()
	if mean.Value() != 0 || lowest.Value() != 0 || capture.Value() != 0 {
		t.Error("expected zero values after reset")
	}
}

func TestControlEffortClamps(t *testing.T) {
	c := NewControlEffort()
	c.Observe(pursuit.Action{5, -5}, transition(0, 0))
	c.Observe(pursuit.Action{0.5, 0}, transition(0, 0))

	if math.Abs(c.Value()-1.25) > 1e-9 {
		t.Errorf("expected 1.25, got %f", c.Value())
	}
}

func TestEpisodeReturn(t *testing.T) {
	e := NewEpisodeReturn()
	e.Observe(pursuit.Action{}, transition(-2.5, 0))
	e.Observe(pursuit.Action{}, transition(1, 0))
	if e.Value() != -1.5 {
		t.Errorf("expected -1.5, got %f", e.Value())
	}
	e.Reset()
	if e.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestDefaultSnapshot(t *testing.T) {
	ms := Default(pursuit.DefaultWorld(800, 600))
	for _, m := range ms {
		m.Observe(pursuit.Action{1, 0}, transition(-3, 12))
	}

	snap := Snapshot(ms)
	want := map[string]float64{
		"episode_return": -3,
		"mean_distance":  12,
		"min_distance":   12,
		"capture_rate":   1,
		"control_effort": 1,
	}
	for name, v := range want {
		if got, ok := snap[name]; !ok || got != v {
			t.Errorf("%s: expected %v, got %v (present %v)", name, v, got, ok)
		}
	}
}
