package metrics

import "github.com/san-kum/pursuitsim/internal/pursuit"

// Metric accumulates a scalar over the transitions of one episode.
type Metric interface {
	Name() string
	Observe(a pursuit.Action, tr pursuit.Transition)
	Value() float64
	Reset()
}

// Default returns the standard episode metrics for world w.
func Default(w pursuit.WorldConfig) []Metric {
	return []Metric{
		NewEpisodeReturn(),
		NewMeanDistance(),
		NewMinDistance(),
		NewCaptureRate(w.CaptureRadius),
		NewControlEffort(),
	}
}

// Snapshot reads every metric into a map keyed by name.
func Snapshot(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
