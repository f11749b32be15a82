// Package physics provides dynamical system models for simulation.
//
// Each model implements the [dynamo.System] interface, exposing the
// right-hand side of its differential equations as a [dynamo.Field]:
//
//   - [LotkaVolterra]: predator-prey population dynamics
//
// Models also implement [dynamo.Configurable] for parameter adjustment and
// [dynamo.Conserved] when the flow has a first integral.
//
// # Invariant Drift
//
// For conservative systems, use [dynamo.Conserved] to monitor how far a
// numerical solution wanders from its level set:
//
//	lv := physics.NewLotkaVolterra()
//	v0 := lv.Invariant(lv.DefaultState())
package physics
