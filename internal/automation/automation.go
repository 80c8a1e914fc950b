package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pursuitsim/internal/config"
	"github.com/san-kum/pursuitsim/internal/experiment"
	"github.com/san-kum/pursuitsim/internal/metrics"
	"github.com/san-kum/pursuitsim/internal/policy"
	"github.com/san-kum/pursuitsim/internal/pursuit"
	"github.com/san-kum/pursuitsim/internal/storage"
)

var ErrInvalidSweep = errors.New("invalid sweep")

func quietLogger(log logrus.FieldLogger) logrus.FieldLogger {
	if log != nil {
		return log
	}
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

// Scenario is a scripted sequence of rollouts.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

type ScenarioStep struct {
	Preset       string             `yaml:"preset"`
	World        map[string]float64 `yaml:"world"`
	Policy       string             `yaml:"policy"`
	PolicyParams map[string]float64 `yaml:"policy_params"`
	Episodes     int                `yaml:"episodes"`
	Seed         int64              `yaml:"seed"`
	SaveAs       string             `yaml:"save_as"`
}

type StepResult struct {
	Index    int
	Policy   string
	World    pursuit.WorldConfig
	Summary  experiment.Summary
	Episodes []experiment.Episode
	RunID    string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &scenario, nil
}

// world resolves the step's preset and overrides into a validated world.
func (s ScenarioStep) world() (pursuit.WorldConfig, error) {
	w := pursuit.DefaultWorld(pursuit.DefaultWidth, pursuit.DefaultHeight)
	if s.Preset != "" {
		p := config.GetPreset(s.Preset)
		if p == nil {
			return w, fmt.Errorf("unknown preset %q", s.Preset)
		}
		w = *p
	}
	for k, v := range s.World {
		if err := w.SetParam(k, v); err != nil {
			return w, err
		}
	}
	return w, w.Validate()
}

// RunScenario executes the steps in order. Steps with save_as are written to
// store when it is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, reg *policy.Registry, store *storage.Store, log logrus.FieldLogger) ([]StepResult, error) {
	log = quietLogger(log)
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		w, err := step.world()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		name := step.Policy
		if name == "" {
			name = config.DefaultPolicy
		}
		pol, err := reg.Get(name, w, step.PolicyParams)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		episodes := step.Episodes
		if episodes <= 0 {
			episodes = 1
		}

		log.WithFields(logrus.Fields{
			"step":     i + 1,
			"of":       len(scenario.Steps),
			"policy":   name,
			"preset":   step.Preset,
			"episodes": episodes,
		}).Info("running scenario step")

		summary, eps, err := experiment.Evaluate(ctx, w, pol, episodes, step.Seed, log)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		res := StepResult{Index: i, Policy: name, World: w, Summary: summary, Episodes: eps}
		if step.SaveAs != "" && store != nil {
			res.RunID, err = store.Save(storage.Run{
				Policy:   step.SaveAs,
				Seed:     step.Seed,
				World:    w,
				Summary:  summary,
				Metrics:  experiment.MeanMetrics(eps),
				Episodes: eps,
			})
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, res)
	}

	return results, nil
}

// ParameterSweep evaluates a policy while one world parameter moves across
// [Min, Max].
type ParameterSweep struct {
	World        pursuit.WorldConfig
	Policy       string
	PolicyParams map[string]float64
	Param        string
	Min          float64
	Max          float64
	Points       int
	Episodes     int
	Seed         int64
	Workers      int
}

type SweepResult struct {
	Value        float64
	MeanReturn   float64
	StdReturn    float64
	MeanDistance float64
	CaptureRate  float64
}

// RunSweep evaluates every point on its own env, Workers points at a time.
// Results come back in parameter order.
func RunSweep(ctx context.Context, sweep *ParameterSweep, reg *policy.Registry, log logrus.FieldLogger) ([]SweepResult, error) {
	if sweep.Points < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidSweep, sweep.Points)
	}
	if sweep.Max < sweep.Min {
		return nil, fmt.Errorf("%w: max %f below min %f", ErrInvalidSweep, sweep.Max, sweep.Min)
	}
	if _, ok := sweep.World.GetParams()[sweep.Param]; !ok {
		return nil, fmt.Errorf("%w: %s", pursuit.ErrUnknownParam, sweep.Param)
	}
	episodes := sweep.Episodes
	if episodes <= 0 {
		episodes = 1
	}

	log = quietLogger(log)
	results := make([]SweepResult, sweep.Points)
	step := (sweep.Max - sweep.Min) / float64(sweep.Points-1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(sweep.Workers, 1))
	for i := 0; i < sweep.Points; i++ {
		value := sweep.Min + float64(i)*step
		g.Go(func() error {
			w := sweep.World
			if err := w.SetParam(sweep.Param, value); err != nil {
				return err
			}
			pol, err := reg.Get(sweep.Policy, w, sweep.PolicyParams)
			if err != nil {
				return err
			}

			summary, eps, err := experiment.Evaluate(ctx, w, pol, episodes, sweep.Seed, log)
			if err != nil {
				return fmt.Errorf("%s=%.4f: %w", sweep.Param, value, err)
			}

			results[i] = SweepResult{
				Value:        value,
				MeanReturn:   summary.MeanReturn,
				StdReturn:    summary.StdReturn,
				MeanDistance: summary.MeanDistance,
				CaptureRate:  experiment.MeanMetrics(eps)["capture_rate"],
			}
			log.WithFields(logrus.Fields{
				"param": sweep.Param,
				"value": value,
				"point": i + 1,
			}).Debug("sweep point done")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MonteCarloConfig plays one episode per trial, trial i seeded Seed+i.
type MonteCarloConfig struct {
	World        pursuit.WorldConfig
	Policy       string
	PolicyParams map[string]float64
	Trials       int
	Seed         int64
	Workers      int
}

type MonteCarloResult struct {
	TrialID     int
	Seed        int64
	Return      float64
	MinDistance float64
	Captured    bool
}

// RunMonteCarlo checks how often a policy gets within capture radius across
// many spawn draws.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, reg *policy.Registry) ([]MonteCarloResult, error) {
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", cfg.Trials)
	}
	if err := cfg.World.Validate(); err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, cfg.Trials)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for trial := 0; trial < cfg.Trials; trial++ {
		g.Go(func() error {
			seed := cfg.Seed + int64(trial)
			pol, err := reg.Get(cfg.Policy, cfg.World, cfg.PolicyParams)
			if err != nil {
				return err
			}
			env, err := pursuit.New(cfg.World)
			if err != nil {
				return err
			}

			r := experiment.New(nil)
			lowest := metrics.NewMinDistance()
			r.AddMetric(lowest)
			eps, err := r.Run(ctx, env, pol, experiment.Config{Episodes: 1, Seed: seed})
			if err != nil {
				return fmt.Errorf("trial %d: %w", trial, err)
			}

			results[trial] = MonteCarloResult{
				TrialID:     trial,
				Seed:        seed,
				Return:      eps[0].Return,
				MinDistance: lowest.Value(),
				Captured:    lowest.Value() < cfg.World.CaptureRadius,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (captured int, missed int) {
	for _, r := range results {
		if r.Captured {
			captured++
		} else {
			missed++
		}
	}
	return
}
