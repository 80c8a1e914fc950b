package pursuit

import "errors"

// Contract violations reported by Env. Out-of-range actions are never an
// error; they are clamped.
var (
	// ErrNotReset indicates Step was called before the first Reset.
	ErrNotReset = errors.New("pursuit: step called before reset")

	// ErrActionShape indicates an action vector that does not have exactly two components.
	ErrActionShape = errors.New("pursuit: action must have exactly 2 components")

	// ErrInvalidWorld indicates a world configuration that cannot be simulated.
	ErrInvalidWorld = errors.New("pursuit: invalid world configuration")

	// ErrUnknownParam indicates SetParam was called with a name the world does not have.
	ErrUnknownParam = errors.New("pursuit: unknown world parameter")
)
