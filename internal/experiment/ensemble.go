package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pursuitsim/internal/metrics"
	"github.com/san-kum/pursuitsim/internal/policy"
	"github.com/san-kum/pursuitsim/internal/pursuit"
)

// Ensemble splits episodes over independent streams. Stream i owns its env,
// its policy and the seed seedStart+i, so results depend only on the split
// and never on goroutine scheduling.
type Ensemble struct {
	world     pursuit.WorldConfig
	newPolicy func() policy.Policy
	streams   int
	seedStart int64
	log       logrus.FieldLogger
}

func NewEnsemble(w pursuit.WorldConfig, newPolicy func() policy.Policy, streams int, seedStart int64, log logrus.FieldLogger) *Ensemble {
	return &Ensemble{world: w, newPolicy: newPolicy, streams: streams, seedStart: seedStart, log: log}
}

// Split spreads n episodes over the streams, earlier streams taking the
// remainder.
func (e *Ensemble) Split(n int) []int {
	counts := make([]int, e.streams)
	for i := range counts {
		counts[i] = n / e.streams
		if i < n%e.streams {
			counts[i]++
		}
	}
	return counts
}

// Run plays n episodes in total and returns them stream by stream.
func (e *Ensemble) Run(ctx context.Context, n int, record bool) ([]Episode, error) {
	if e.streams <= 0 {
		return nil, fmt.Errorf("ensemble needs at least one stream, got %d", e.streams)
	}
	if n < e.streams {
		return nil, fmt.Errorf("%d episodes cannot fill %d streams", n, e.streams)
	}

	counts := e.Split(n)
	results := make([][]Episode, e.streams)

	g, ctx := errgroup.WithContext(ctx)
	for i := range results {
		g.Go(func() error {
			env, err := pursuit.New(e.world)
			if err != nil {
				return err
			}
			r := New(e.log)
			for _, m := range metrics.Default(e.world) {
				r.AddMetric(m)
			}
			eps, err := r.Run(ctx, env, e.newPolicy(), Config{
				Episodes: counts[i],
				Seed:     e.seedStart + int64(i),
				Record:   record,
			})
			if err != nil {
				return fmt.Errorf("stream %d: %w", i, err)
			}
			results[i] = eps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Episode, 0, n)
	for _, eps := range results {
		out = append(out, eps...)
	}
	return out, nil
}
