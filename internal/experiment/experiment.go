package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/pursuitsim/internal/metrics"
	"github.com/san-kum/pursuitsim/internal/policy"
	"github.com/san-kum/pursuitsim/internal/pursuit"
)

// Step is one recorded transition.
type Step struct {
	Tick        int
	Observation pursuit.Observation
	Action      pursuit.Action
	Reward      float32
	Dist        float64
}

type Episode struct {
	Seed    int64
	Steps   []Step
	Return  float64
	Length  int
	Metrics map[string]float64
	Elapsed time.Duration
}

// Observer sees every transition as it happens.
type Observer interface {
	OnStep(obs pursuit.Observation, a pursuit.Action, tr pursuit.Transition)
}

type Config struct {
	Episodes int
	Seed     int64
	// Record keeps every step in Episode.Steps.
	Record bool
}

// Runner drives a policy through episodes of an Env.
type Runner struct {
	metrics   []metrics.Metric
	observers []Observer
	log       logrus.FieldLogger
}

func New(log logrus.FieldLogger) *Runner {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &Runner{
		metrics:   make([]metrics.Metric, 0),
		observers: make([]Observer, 0),
		log:       log,
	}
}

func (r *Runner) AddMetric(m metrics.Metric) { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)     { r.observers = append(r.observers, o) }

// Run plays cfg.Episodes episodes. Only the first reset is seeded; later
// episodes continue the env's random stream, so the whole run is reproducible
// from cfg.Seed.
func (r *Runner) Run(ctx context.Context, env *pursuit.Env, pol policy.Policy, cfg Config) ([]Episode, error) {
	if cfg.Episodes <= 0 {
		return nil, fmt.Errorf("episodes must be positive, got %d", cfg.Episodes)
	}

	episodes := make([]Episode, 0, cfg.Episodes)
	for i := 0; i < cfg.Episodes; i++ {
		var obs pursuit.Observation
		if i == 0 {
			obs, _ = env.ResetWithSeed(cfg.Seed)
		} else {
			obs, _ = env.Reset()
		}

		ep, err := r.play(ctx, env, pol, obs, cfg.Record)
		ep.Seed = cfg.Seed
		if err != nil {
			return episodes, fmt.Errorf("episode %d: %w", i, err)
		}
		episodes = append(episodes, ep)

		r.log.WithFields(logrus.Fields{
			"episode": i,
			"return":  ep.Return,
			"length":  ep.Length,
			"elapsed": ep.Elapsed,
		}).Debug("episode finished")
	}
	return episodes, nil
}

func (r *Runner) play(ctx context.Context, env *pursuit.Env, pol policy.Policy, obs pursuit.Observation, record bool) (Episode, error) {
	for _, m := range r.metrics {
		m.Reset()
	}
	if rs, ok := pol.(policy.Resetter); ok {
		rs.Reset()
	}

	var ep Episode
	if record {
		ep.Steps = make([]Step, 0, env.World().EpisodeSteps)
	}
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			ep.Elapsed = time.Since(start)
			return ep, ctx.Err()
		default:
		}

		a := pol.Act(obs)
		tr, err := env.Step(a)
		if err != nil {
			return ep, err
		}

		for _, m := range r.metrics {
			m.Observe(a, tr)
		}
		for _, o := range r.observers {
			o.OnStep(obs, a, tr)
		}

		ep.Return += float64(tr.Reward)
		ep.Length++
		if record {
			ep.Steps = append(ep.Steps, Step{
				Tick:        env.State().Tick,
				Observation: tr.Observation,
				Action:      a,
				Reward:      tr.Reward,
				Dist:        tr.Info["dist"],
			})
		}

		obs = tr.Observation
		if tr.Terminated || tr.Truncated {
			break
		}
	}

	ep.Elapsed = time.Since(start)
	ep.Metrics = metrics.Snapshot(r.metrics)
	return ep, nil
}
