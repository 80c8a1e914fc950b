package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/pursuitsim/internal/policy"
	"github.com/san-kum/pursuitsim/internal/pursuit"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch([]string{"a", "b"}, [][]float64{{-1, 0, 1, 2}, {0, 5, 10}})
	if g.Size() != 12 {
		t.Errorf("expected 12 points, got %d", g.Size())
	}

	calls := 0
	obj := func(_ context.Context, p map[string]float64) (float64, error) {
		calls++
		return (p["a"]-1)*(p["a"]-1) + (p["b"]-5)*(p["b"]-5), nil
	}

	best, score, err := g.Search(context.Background(), obj)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 12 {
		t.Errorf("expected 12 evaluations, got %d", calls)
	}
	if best["a"] != 1 || best["b"] != 5 || score != 0 {
		t.Errorf("expected a=1 b=5 score 0, got %v %f", best, score)
	}
}

func TestGridSearchErrors(t *testing.T) {
	boom := errors.New("boom")
	g := NewGridSearch([]string{"a"}, [][]float64{{1, 2}})
	_, _, err := g.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected objective error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = g.Search(ctx, func(context.Context, map[string]float64) (float64, error) { return 0, nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	bad := NewGridSearch([]string{"a", "b"}, [][]float64{{1}})
	if _, _, err := bad.Search(context.Background(), nil); err == nil {
		t.Error("expected error for mismatched grid")
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
	if one := Linspace(3, 9, 1); len(one) != 1 || one[0] != 3 {
		t.Errorf("expected [3], got %v", one)
	}
}

func TestParseAxis(t *testing.T) {
	name, vals, err := ParseAxis("kp=0.5:2:4")
	if err != nil {
		t.Fatal(err)
	}
	if name != "kp" || len(vals) != 4 || vals[0] != 0.5 || vals[3] != 2 {
		t.Errorf("unexpected axis %s %v", name, vals)
	}

	for _, axis := range []string{"kp", "=1:2:3", "kp=1:2", "kp=a:2:3", "kp=1:b:3", "kp=1:2:0"} {
		if _, _, err := ParseAxis(axis); err == nil {
			t.Errorf("%q: expected error", axis)
		}
	}
}

func TestPolicyObjective(t *testing.T) {
	w := pursuit.DefaultWorld(800, 600)
	w.EpisodeSteps = 30
	obj := PolicyObjective(w, policy.NewRegistry(), "pid", map[string]float64{"ki": 0}, 2, 7)

	a, err := obj(context.Background(), map[string]float64{"kp": 1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := obj(context.Background(), map[string]float64{"kp": 1})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("objective not deterministic: %f vs %f", a, b)
	}
	if a <= 0 {
		t.Errorf("expected positive cost (negated return), got %f", a)
	}

	unknown := PolicyObjective(w, policy.NewRegistry(), "teleport", nil, 1, 1)
	if _, err := unknown(context.Background(), nil); !errors.Is(err, policy.ErrUnknownPolicy) {
		t.Errorf("expected ErrUnknownPolicy, got %v", err)
	}
}

func TestPolicyObjectiveUsesEveryAxis(t *testing.T) {
	w := pursuit.DefaultWorld(800, 600)
	w.EpisodeSteps = 50
	obj := PolicyObjective(w, policy.NewRegistry(), "pid", nil, 1, 7)

	idle, err := obj(context.Background(), map[string]float64{"speed_kp": 0})
	if err != nil {
		t.Fatal(err)
	}
	driving, err := obj(context.Background(), map[string]float64{"speed_kp": 1})
	if err != nil {
		t.Fatal(err)
	}
	if idle == driving {
		t.Errorf("expected speed_kp to change the score, got %f for both", idle)
	}

	follow := PolicyObjective(w, policy.NewRegistry(), "follow", nil, 1, 7)
	if _, err := follow(context.Background(), map[string]float64{"bogus": 100}); !errors.Is(err, policy.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if _, err := follow(context.Background(), map[string]float64{"steer_gain": 1}); err != nil {
		t.Errorf("steer_gain is a follow parameter: %v", err)
	}
}

