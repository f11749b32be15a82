// Package dynamo provides core primitives for integrating ordinary
// differential equations.
//
// The package defines the types shared by integrators, models and tooling:
//
//   - [State]: vector representing system state
//   - [Field]: the right-hand side dy/dt = f(t, y) as a plain function value
//   - [System]: a named field with a fixed state dimension
//   - [Trajectory]: ordered (time, state) samples produced by a solve
//   - [Metric]: observer that summarizes a trajectory
//
// # Example
//
//	lv := physics.NewLotkaVolterra()
//	traj, err := integrators.SolveSystem(lv, 0, lv.DefaultState(), 0.1, 100)
//
// # Thread Safety
//
// Fields are pure and may be shared between goroutines. Trajectories are
// owned by the caller that requested them.
package dynamo
