package experiment

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/pursuitsim/internal/metrics"
	"github.com/san-kum/pursuitsim/internal/policy"
	"github.com/san-kum/pursuitsim/internal/pursuit"
)

// DefaultEvalSeed seeds evaluation envs so scores are comparable across runs.
const DefaultEvalSeed = 12345

// Evaluate plays n episodes on a fresh env seeded with seed and summarizes them.
func Evaluate(ctx context.Context, w pursuit.WorldConfig, pol policy.Policy, n int, seed int64, log logrus.FieldLogger) (Summary, []Episode, error) {
	env, err := pursuit.New(w, pursuit.WithSeed(seed))
	if err != nil {
		return Summary{}, nil, err
	}

	r := New(log)
	for _, m := range metrics.Default(w) {
		r.AddMetric(m)
	}

	episodes, err := r.Run(ctx, env, pol, Config{Episodes: n, Seed: seed})
	mon := NewMonitor()
	for _, ep := range episodes {
		mon.Record(ep)
	}
	summary := mon.Summary()
	if err != nil {
		return summary, episodes, err
	}

	r.log.WithFields(logrus.Fields{
		"episodes":    summary.Episodes,
		"mean_return": summary.MeanReturn,
		"std_return":  summary.StdReturn,
		"mean_dist":   summary.MeanDistance,
	}).Info("evaluation complete")
	return summary, episodes, nil
}
