// Package analysis looks at recorded or simulated pursuit trajectories.
//
//   - [PowerSpectrum] and [DominantPeriod]: oscillation in a per-step series
//     such as the distance to the target
//   - [NewPortrait]: 2D scatter of two observation components
//   - [Divergence]: closed-loop sensitivity to a perturbed start state
//
// A positive divergence rate means two nearly identical rollouts under the
// same policy and the same target noise drift apart:
//
//	rate := analysis.Divergence(world, s0, newPolicy, seed, 1e-6, 500)
package analysis
