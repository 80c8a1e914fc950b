package experiment

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// Monitor keeps per-episode returns and lengths across a run.
type Monitor struct {
	returns  []float64
	lengths  []float64
	distance []float64
	elapsed  time.Duration
}

func NewMonitor() *Monitor { return &Monitor{} }

func (m *Monitor) Record(ep Episode) {
	m.returns = append(m.returns, ep.Return)
	m.lengths = append(m.lengths, float64(ep.Length))
	if d, ok := ep.Metrics["mean_distance"]; ok {
		m.distance = append(m.distance, d)
	}
	m.elapsed += ep.Elapsed
}

func (m *Monitor) Episodes() int { return len(m.returns) }

type Summary struct {
	Episodes     int           `json:"episodes"`
	MeanReturn   float64       `json:"mean_return"`
	StdReturn    float64       `json:"std_return"`
	MeanLength   float64       `json:"mean_length"`
	MeanDistance float64       `json:"mean_distance"`
	TotalSteps   int           `json:"total_steps"`
	Elapsed      time.Duration `json:"elapsed"`
}

func (m *Monitor) Summary() Summary {
	s := Summary{Episodes: len(m.returns), Elapsed: m.elapsed}
	if s.Episodes == 0 {
		return s
	}

	s.MeanReturn = stat.Mean(m.returns, nil)
	if s.Episodes > 1 {
		s.StdReturn = stat.StdDev(m.returns, nil)
	}
	s.MeanLength = stat.Mean(m.lengths, nil)
	if len(m.distance) > 0 {
		s.MeanDistance = stat.Mean(m.distance, nil)
	}
	for _, l := range m.lengths {
		s.TotalSteps += int(l)
	}
	return s
}

// Returns exposes the per-episode returns in order.
func (m *Monitor) Returns() []float64 {
	out := make([]float64, len(m.returns))
	copy(out, m.returns)
	return out
}

// MeanMetrics averages each metric over the episodes that report it.
func MeanMetrics(eps []Episode) map[string]float64 {
	vals := make(map[string][]float64)
	for _, ep := range eps {
		for name, v := range ep.Metrics {
			vals[name] = append(vals[name], v)
		}
	}
	out := make(map[string]float64, len(vals))
	for name, vs := range vals {
		out[name] = stat.Mean(vs, nil)
	}
	return out
}
