package optim

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/san-kum/pursuitsim/internal/experiment"
	"github.com/san-kum/pursuitsim/internal/policy"
	"github.com/san-kum/pursuitsim/internal/pursuit"
)

// Objective scores one parameter set; lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Size is the number of points on the grid.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search scores every grid point and returns the lowest. Ties keep the
// earliest point in grid order.
func (g *GridSearch) Search(ctx context.Context, obj Objective) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("grid has %d names and %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	err := g.searchRecursive(ctx, 0, make(map[string]float64), obj, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	obj Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := obj(ctx, current)
		if err != nil {
			return err
		}
		if val < *best {
			*best = val
			*bestParams = maps.Clone(current)
		}
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := maps.Clone(current)
		next[name] = val
		if err := g.searchRecursive(ctx, depth+1, next, obj, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// PolicyObjective scores policy parameters by negated mean evaluation return.
// base supplies parameters the grid does not vary. Grid parameters the policy
// does not declare are an error, since the score could not depend on them.
func PolicyObjective(w pursuit.WorldConfig, reg *policy.Registry, name string, base map[string]float64, episodes int, seed int64) Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		if err := reg.CheckParams(name, w, slices.Sorted(maps.Keys(params))); err != nil {
			return 0, err
		}
		merged := maps.Clone(base)
		if merged == nil {
			merged = make(map[string]float64)
		}
		maps.Copy(merged, params)

		pol, err := reg.Get(name, w, merged)
		if err != nil {
			return 0, err
		}
		summary, _, err := experiment.Evaluate(ctx, w, pol, episodes, seed, nil)
		if err != nil {
			return 0, err
		}
		return -summary.MeanReturn, nil
	}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// ParseAxis reads "name=min:max:n" into a grid axis.
func ParseAxis(axis string) (string, []float64, error) {
	name, rng, ok := strings.Cut(axis, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("grid axis %q: want name=min:max:n", axis)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("grid axis %q: want name=min:max:n", axis)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid axis %q: %w", axis, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid axis %q: %w", axis, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n <= 0 {
		return "", nil, fmt.Errorf("grid axis %q: point count must be a positive integer", axis)
	}
	return name, Linspace(lo, hi, n), nil
}
