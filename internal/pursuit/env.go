package pursuit

import (
	"fmt"
	"math"
)

// Env is a single pursuit episode runner exposing the reset/step contract.
// An Env is not safe for concurrent use; run one Env per goroutine.
type Env struct {
	world WorldConfig
	src   Source
	state State
	ready bool
	lure  *Lure
}

type Option func(*Env)

// WithSeed seeds the env's source. Without it the source is seeded from entropy.
func WithSeed(seed int64) Option {
	return func(e *Env) { e.src = NewSource(seed) }
}

// WithSource installs a caller-provided source, e.g. a scripted one in tests.
func WithSource(src Source) Option {
	return func(e *Env) { e.src = src }
}

func New(world WorldConfig, opts ...Option) (*Env, error) {
	if err := world.Validate(); err != nil {
		return nil, err
	}
	e := &Env{world: world}
	for _, opt := range opts {
		opt(e)
	}
	if e.src == nil {
		e.src = NewEntropySource()
	}
	return e, nil
}

func (e *Env) World() WorldConfig { return e.world }

// State returns a copy of the current state.
func (e *Env) State() State { return e.state }

// SetState overwrites the current state and marks the env as reset.
func (e *Env) SetState(s State) {
	e.state = s
	e.ready = true
}

// SetLure switches the target to chasing l. A nil lure restores the random walk.
func (e *Env) SetLure(l *Lure) { e.lure = l }

// ResetWithSeed replaces the random stream with one seeded from seed, then resets.
func (e *Env) ResetWithSeed(seed int64) (Observation, Info) {
	e.src = NewSource(seed)
	return e.Reset()
}

// Reset draws a fresh episode from the current random stream. Draw order:
// vehicle x, y, yaw, then target x, y, heading, speed.
func (e *Env) Reset() (Observation, Info) {
	w := e.world
	var s State

	s.Vehicle.X = e.src.Uniform(0, w.Width)
	s.Vehicle.Y = e.src.Uniform(0, w.Height)
	s.Vehicle.Yaw = WrapAngle(e.src.Uniform(-math.Pi, math.Pi))

	s.Target.X = e.src.Uniform(0, w.Width)
	s.Target.Y = e.src.Uniform(0, w.Height)
	angle := e.src.Uniform(-math.Pi, math.Pi)
	speed := e.src.Uniform(w.SpawnMinSpeed, w.SpawnMaxSpeed)
	s.Target.VX = speed * math.Cos(angle)
	s.Target.VY = speed * math.Sin(angle)

	e.state = s
	e.ready = true
	return ObservationOf(s), Info{}
}

func (e *Env) Step(a Action) (Transition, error) {
	if !e.ready {
		return Transition{}, ErrNotReset
	}

	var drv TargetDriver = RandomWalk{Src: e.src}
	if e.lure != nil {
		drv = e.lure
	}

	next, obs, reward, dist := AdvanceWith(e.world, e.state, a, drv)
	e.state = next

	return Transition{
		Observation: obs,
		Reward:      float32(reward),
		Terminated:  e.world.Done(next),
		Truncated:   false,
		Info:        Info{"dist": dist},
	}, nil
}

// StepSlice is Step for callers holding a plain vector.
func (e *Env) StepSlice(a []float32) (Transition, error) {
	act, err := ActionFromSlice(a)
	if err != nil {
		return Transition{}, fmt.Errorf("got %d components: %w", len(a), err)
	}
	return e.Step(act)
}
