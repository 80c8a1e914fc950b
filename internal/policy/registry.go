package policy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/pursuitsim/internal/pursuit"
)

var (
	ErrUnknownPolicy = errors.New("policy: unknown policy")
	ErrUnknownParam  = errors.New("policy: unknown parameter")
)

type Factory func(w pursuit.WorldConfig, params map[string]float64) (Policy, error)

type Registry struct {
	policies map[string]Factory
}

// tunable builds a policy with its defaults, then applies params on top.
func tunable[P interface {
	Policy
	Tunable
}](build func(w pursuit.WorldConfig) P) Factory {
	return func(w pursuit.WorldConfig, params map[string]float64) (Policy, error) {
		p := build(w)
		if err := apply(p, params); err != nil {
			return nil, err
		}
		return p, nil
	}
}

func NewRegistry() *Registry {
	r := &Registry{policies: make(map[string]Factory)}

	r.policies["zero"] = func(pursuit.WorldConfig, map[string]float64) (Policy, error) { return Zero{}, nil }
	r.policies["constant"] = tunable(func(pursuit.WorldConfig) *Constant { return NewConstant(0, 0) })
	r.policies["random"] = func(_ pursuit.WorldConfig, params map[string]float64) (Policy, error) {
		return NewRandom(int64(params["seed"])), nil
	}
	r.policies["follow"] = tunable(NewFollow)
	r.policies["pid"] = tunable(func(w pursuit.WorldConfig) *PID { return NewPID(2, 0, 0.1, w) })

	return r
}

func (r *Registry) Register(name string, f Factory) {
	r.policies[name] = f
}

// Get builds the named policy. Entries of params the policy does not declare
// are ignored.
func (r *Registry) Get(name string, w pursuit.WorldConfig, params map[string]float64) (Policy, error) {
	fn, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, name)
	}
	p, err := fn(w, params)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", name, err)
	}
	return p, nil
}

// Params returns the tunable parameters of the named policy with their
// defaults. A policy with nothing to tune returns an empty map.
func (r *Registry) Params(name string, w pursuit.WorldConfig) (map[string]float64, error) {
	p, err := r.Get(name, w, nil)
	if err != nil {
		return nil, err
	}
	t, ok := p.(Tunable)
	if !ok {
		return map[string]float64{}, nil
	}
	return t.GetParams(), nil
}

// CheckParams fails on the first name the policy does not declare.
func (r *Registry) CheckParams(name string, w pursuit.WorldConfig, names []string) error {
	known, err := r.Params(name, w)
	if err != nil {
		return err
	}
	for _, n := range names {
		if _, ok := known[n]; !ok {
			return fmt.Errorf("%w: %s has no parameter %q", ErrUnknownParam, name, n)
		}
	}
	return nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
