package pursuit

import (
	"errors"
	"math"
	"testing"
)

// scriptedSource returns the midpoint of every uniform range and the mean of
// every normal, so state evolution is fully predictable.
type scriptedSource struct {
	uniforms int
	normals  int
}

func (s *scriptedSource) Uniform(lo, hi float64) float64 {
	s.uniforms++
	return (lo + hi) / 2
}

func (s *scriptedSource) Normal(mu, sigma float64) float64 {
	s.normals++
	return mu
}

func newTestEnv(t *testing.T, opts ...Option) *Env {
	t.Helper()
	env, err := New(DefaultWorld(800, 600), opts...)
	if err != nil {
		t.Fatalf("new env: %v", err)
	}
	return env
}

func TestStepBeforeReset(t *testing.T) {
	env := newTestEnv(t, WithSeed(1))
	_, err := env.Step(Action{})
	if !errors.Is(err, ErrNotReset) {
		t.Errorf("expected ErrNotReset, got %v", err)
	}
}

func TestStepSliceShape(t *testing.T) {
	env := newTestEnv(t, WithSeed(1))
	env.Reset()

	for _, a := range [][]float32{nil, {1}, {1, 2, 3}} {
		if _, err := env.StepSlice(a); !errors.Is(err, ErrActionShape) {
			t.Errorf("action %v: expected ErrActionShape, got %v", a, err)
		}
	}
	if env.State().Tick != 0 {
		t.Errorf("rejected actions advanced the clock to %d", env.State().Tick)
	}

	if _, err := env.StepSlice([]float32{0.1, 0.2}); err != nil {
		t.Errorf("valid slice rejected: %v", err)
	}
}

func TestNewRejectsInvalidWorld(t *testing.T) {
	w := DefaultWorld(800, 600)
	w.Dt = 0
	if _, err := New(w); !errors.Is(err, ErrInvalidWorld) {
		t.Errorf("expected ErrInvalidWorld, got %v", err)
	}
}

func TestResetDraws(t *testing.T) {
	src := &scriptedSource{}
	env := newTestEnv(t, WithSource(src))

	obs, info := env.Reset()
	if len(info) != 0 {
		t.Errorf("expected empty info, got %v", info)
	}
	if src.uniforms != 7 || src.normals != 0 {
		t.Errorf("expected 7 uniform draws, got %d uniform %d normal", src.uniforms, src.normals)
	}

	s := env.State()
	if s.Vehicle.X != 400 || s.Vehicle.Y != 300 || s.Vehicle.V != 0 || s.Tick != 0 {
		t.Errorf("unexpected vehicle state %+v", s.Vehicle)
	}
	// Heading draw midpoint is 0, so the target moves along +x at the mid spawn speed.
	if s.Target.VX != 120 || s.Target.VY != 0 {
		t.Errorf("unexpected target velocity (%v, %v)", s.Target.VX, s.Target.VY)
	}
	// Vehicle and target coincide; only relative velocity remains.
	if obs[ObsXRel] != 0 || obs[ObsYRel] != 0 || obs[ObsVXRel] != 120 {
		t.Errorf("unexpected observation %v", obs)
	}
}

func TestStepDrawsTwoNormals(t *testing.T) {
	src := &scriptedSource{}
	env := newTestEnv(t, WithSource(src))
	env.Reset()

	for i := 0; i < 5; i++ {
		if _, err := env.Step(Action{0.3, 0.3}); err != nil {
			t.Fatal(err)
		}
	}
	if src.normals != 10 {
		t.Errorf("expected 10 normal draws, got %d", src.normals)
	}
}

func TestCaptureBonus(t *testing.T) {
	tests := []struct {
		name  string
		xRel  float64
		bonus bool
	}{
		{"inside capture radius", 10, true},
		{"outside capture radius", 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, WithSource(&scriptedSource{}))
			env.SetState(State{
				Vehicle: Vehicle{X: 100, Y: 100},
				Target:  Target{X: 100 + tt.xRel, Y: 100},
			})

			tr, err := env.Step(Action{})
			if err != nil {
				t.Fatal(err)
			}

			want := -0.30 * tt.xRel
			if tt.bonus {
				want += 1.0
			}
			if math.Abs(float64(tr.Reward)-want) > 1e-5 {
				t.Errorf("expected reward %v, got %v", want, tr.Reward)
			}
			if math.Abs(tr.Info["dist"]-tt.xRel) > 1e-5 {
				t.Errorf("expected dist %v, got %v", tt.xRel, tr.Info["dist"])
			}
		})
	}
}

func TestRewardTerms(t *testing.T) {
	w := DefaultWorld(800, 600)

	r, dist := w.Reward(Observation{0, 20, 0, 0, 0}, Action{})
	wantHeading := 0.05 * (math.Pi / 2) * (math.Pi / 2)
	if math.Abs(r-(-0.30*20-wantHeading)) > 1e-9 || dist != 20 {
		t.Errorf("target abeam: reward %v dist %v", r, dist)
	}

	r1, _ := w.Reward(Observation{20, 0, 0, 0, 0}, Action{1, -1})
	r5, _ := w.Reward(Observation{20, 0, 0, 0, 0}, Action{5, -5})
	if r1 != r5 {
		t.Errorf("action penalty must use clamped action: %v vs %v", r1, r5)
	}
	if math.Abs(r1-(-6-0.002)) > 1e-9 {
		t.Errorf("expected -6.002, got %v", r1)
	}
}

func TestEpisodeLength(t *testing.T) {
	env := newTestEnv(t, WithSeed(3))
	env.Reset()

	for i := 1; i <= DefaultEpisodeSteps; i++ {
		tr, err := env.Step(Action{0.2, 0.5})
		if err != nil {
			t.Fatal(err)
		}
		if tr.Truncated {
			t.Fatalf("step %d: truncated must always be false", i)
		}
		if i < DefaultEpisodeSteps && tr.Terminated {
			t.Fatalf("terminated early at step %d", i)
		}
		if i == DefaultEpisodeSteps && !tr.Terminated {
			t.Fatalf("not terminated after %d steps", i)
		}
	}

	env.Reset()
	if env.State().Tick != 0 {
		t.Errorf("reset did not clear tick: %d", env.State().Tick)
	}
}

func TestDeterminism(t *testing.T) {
	a := newTestEnv(t)
	b := newTestEnv(t)

	obsA, _ := a.ResetWithSeed(42)
	obsB, _ := b.ResetWithSeed(42)
	if obsA != obsB {
		t.Fatalf("reset observations differ: %v vs %v", obsA, obsB)
	}

	for i := 0; i < 500; i++ {
		act := Action{float32(math.Sin(float64(i) * 0.1)), float32(math.Cos(float64(i) * 0.07))}
		ta, _ := a.Step(act)
		tb, _ := b.Step(act)
		if ta.Observation != tb.Observation || ta.Reward != tb.Reward {
			t.Fatalf("step %d diverged: %v/%v vs %v/%v", i, ta.Observation, ta.Reward, tb.Observation, tb.Reward)
		}
	}
}

func TestResetContinuesStream(t *testing.T) {
	env := newTestEnv(t)
	first, _ := env.ResetWithSeed(9)
	second, _ := env.Reset()
	if first == second {
		t.Error("unseeded reset repeated the previous episode")
	}

	again, _ := env.ResetWithSeed(9)
	if again != first {
		t.Error("reseeding did not reproduce the first episode")
	}
}

func TestActionClamping(t *testing.T) {
	a := newTestEnv(t)
	b := newTestEnv(t)
	a.ResetWithSeed(11)
	b.ResetWithSeed(11)

	for i := 0; i < 200; i++ {
		ta, _ := a.Step(Action{5, -5})
		tb, _ := b.Step(Action{1, -1})
		if ta.Observation != tb.Observation || ta.Reward != tb.Reward {
			t.Fatalf("step %d: [5,-5] and [1,-1] diverged", i)
		}
	}
}

func TestVehicleReflectionKeepsHeading(t *testing.T) {
	env := newTestEnv(t, WithSource(&scriptedSource{}))
	env.SetState(State{
		Vehicle: Vehicle{X: 799, Y: 300, Yaw: 0, V: 200},
		Target:  Target{X: 100, Y: 100},
	})

	if _, err := env.Step(Action{}); err != nil {
		t.Fatal(err)
	}
	s := env.State()
	if s.Vehicle.X != 797 {
		t.Errorf("expected mirrored x 797, got %v", s.Vehicle.X)
	}
	if s.Vehicle.Yaw != 0 || s.Vehicle.V <= 0 {
		t.Errorf("border contact changed heading or speed: %+v", s.Vehicle)
	}
}

func TestLureDrivesTarget(t *testing.T) {
	env := newTestEnv(t, WithSource(&scriptedSource{}))
	env.SetState(State{
		Vehicle: Vehicle{X: 400, Y: 300},
		Target:  Target{X: 100, Y: 100},
	})
	lure := NewLure(600, 400)
	env.SetLure(lure)

	for i := 0; i < 500; i++ {
		if _, err := env.Step(Action{}); err != nil {
			t.Fatal(err)
		}
	}
	s := env.State()
	if math.Hypot(s.Target.X-600, s.Target.Y-400) > 1 {
		t.Errorf("target did not settle on lure: (%v, %v)", s.Target.X, s.Target.Y)
	}

	lure.MoveTo(2000, 2000)
	for i := 0; i < 200; i++ {
		env.Step(Action{})
	}
	s = env.State()
	if s.Target.X > 750 || s.Target.Y > 550 {
		t.Errorf("lure target escaped margin: (%v, %v)", s.Target.X, s.Target.Y)
	}

	src := &scriptedSource{}
	env2 := newTestEnv(t, WithSource(src))
	env2.SetState(State{})
	env2.SetLure(NewLure(10, 10))
	env2.Step(Action{})
	if src.normals != 0 {
		t.Errorf("lure mode consumed %d normal draws", src.normals)
	}
}
