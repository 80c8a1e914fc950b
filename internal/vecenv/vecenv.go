// Package vecenv runs several independent pursuit envs side by side. Each
// env owns its state and random stream; the only coordination is waiting for
// every env to finish its step.
package vecenv

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pursuitsim/internal/pursuit"
)

var ErrActionCount = errors.New("vecenv: action count does not match env count")

type VecEnv struct {
	envs     []*pursuit.Env
	seedBase int64
}

// New builds n envs over the same world, seeded seed, seed+1, ... seed+n-1.
func New(w pursuit.WorldConfig, n int, seed int64) (*VecEnv, error) {
	if n <= 0 {
		return nil, fmt.Errorf("vecenv: need at least one env, got %d", n)
	}
	v := &VecEnv{envs: make([]*pursuit.Env, n), seedBase: seed}
	for i := range v.envs {
		env, err := pursuit.New(w, pursuit.WithSeed(seed+int64(i)))
		if err != nil {
			return nil, err
		}
		v.envs[i] = env
	}
	return v, nil
}

func (v *VecEnv) Len() int { return len(v.envs) }

// Env exposes the i-th env, e.g. for inspecting its state.
func (v *VecEnv) Env(i int) *pursuit.Env { return v.envs[i] }

// Result holds one entry per env. When Terminated[i] is set the env has
// already been reset: Observations[i] starts the next episode and
// TerminalObservations[i] holds the last observation of the finished one.
type Result struct {
	Observations         []pursuit.Observation
	Rewards              []float32
	Terminated           []bool
	Truncated            []bool
	Infos                []pursuit.Info
	TerminalObservations []pursuit.Observation
}

func newResult(n int) Result {
	return Result{
		Observations:         make([]pursuit.Observation, n),
		Rewards:              make([]float32, n),
		Terminated:           make([]bool, n),
		Truncated:            make([]bool, n),
		Infos:                make([]pursuit.Info, n),
		TerminalObservations: make([]pursuit.Observation, n),
	}
}

// Reset reseeds every env from the base seed and starts a new episode in each.
func (v *VecEnv) Reset(ctx context.Context) ([]pursuit.Observation, error) {
	obs := make([]pursuit.Observation, len(v.envs))
	err := v.each(ctx, func(i int, env *pursuit.Env) error {
		obs[i], _ = env.ResetWithSeed(v.seedBase + int64(i))
		return nil
	})
	return obs, err
}

func (v *VecEnv) Step(ctx context.Context, actions []pursuit.Action) (Result, error) {
	if len(actions) != len(v.envs) {
		return Result{}, fmt.Errorf("%w: %d actions for %d envs", ErrActionCount, len(actions), len(v.envs))
	}

	res := newResult(len(v.envs))
	err := v.each(ctx, func(i int, env *pursuit.Env) error {
		tr, err := env.Step(actions[i])
		if err != nil {
			return fmt.Errorf("env %d: %w", i, err)
		}
		res.Observations[i] = tr.Observation
		res.Rewards[i] = tr.Reward
		res.Terminated[i] = tr.Terminated
		res.Truncated[i] = tr.Truncated
		res.Infos[i] = tr.Info

		if tr.Terminated || tr.Truncated {
			res.TerminalObservations[i] = tr.Observation
			res.Observations[i], _ = env.Reset()
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// each runs fn once per env, one goroutine per env. Each goroutine writes only
// to its own index.
func (v *VecEnv) each(ctx context.Context, fn func(i int, env *pursuit.Env) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, env := range v.envs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(i, env)
		})
	}
	return g.Wait()
}
