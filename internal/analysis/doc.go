// Package analysis inspects solved trajectories.
//
//   - [PowerSpectrum] and [DominantPeriod]: oscillation period of one component
//   - [NewPortrait]: prey/predator phase portrait with an ASCII rendering
//   - [Sweep]: re-solve across a range of one model coefficient
//
// The population cycle of the reference run is recovered with:
//
//	period, err := analysis.DominantPeriod(traj.Component(0), dt)
package analysis
