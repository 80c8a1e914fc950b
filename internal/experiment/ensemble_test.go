package experiment

import (
	"context"
	"testing"

	"github.com/san-kum/pursuitsim/internal/policy"
	"github.com/san-kum/pursuitsim/internal/pursuit"
)

func TestEnsembleSplit(t *testing.T) {
	e := NewEnsemble(smallWorld(), nil, 3, 0, nil)
	got := e.Split(10)
	want := []int{4, 3, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stream %d: expected %d episodes, got %d", i, want[i], got[i])
		}
	}
}

func TestEnsembleMatchesSequentialStreams(t *testing.T) {
	w := smallWorld()
	follow := func() policy.Policy { return policy.NewFollow(w) }

	e := NewEnsemble(w, follow, 3, 40, nil)
	eps, err := e.Run(context.Background(), 7, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 7 {
		t.Fatalf("expected 7 episodes, got %d", len(eps))
	}

	// stream 1 holds episodes 3..4 and is seeded 41
	env, _ := pursuit.New(w)
	seq, err := New(nil).Run(context.Background(), env, follow(), Config{Episodes: 2, Seed: 41})
	if err != nil {
		t.Fatal(err)
	}
	for i := range seq {
		if eps[3+i].Return != seq[i].Return || eps[3+i].Seed != 41 {
			t.Errorf("episode %d differs from its sequential stream", 3+i)
		}
	}
}

func TestEnsembleTooFewEpisodes(t *testing.T) {
	e := NewEnsemble(smallWorld(), func() policy.Policy { return policy.Zero{} }, 4, 0, nil)
	if _, err := e.Run(context.Background(), 2, false); err == nil {
		t.Error("expected error when episodes < streams")
	}
}
