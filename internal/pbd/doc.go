// Package pbd provides the bead-on-wire simulation primitives.
//
// The package defines the state that every other part of the simulator
// reads or writes, and the constraint solver that advances it:
//
//   - [Bead]: a small disk constrained to slide along the wire
//   - [Wire]: the fixed circular manifold shared by every group
//   - [State]: n groups of beads, stored flat and group-major
//   - [Solver]: the substepped position-based dynamics frame update
//
// # Example
//
//	rng := rand.New(rand.NewSource(42))
//	st, _ := pbd.Initialize(8, 8, wire, pbd.DefaultRadii, rng)
//	solver := pbd.DefaultSolver()
//	for g := 0; g < st.Groups; g++ {
//	    solver.Frame(st.Group(g), wire)
//	}
//
// # Thread Safety
//
// Groups never interact, so [Solver.Frame] may run on distinct groups of the
// same [State] concurrently. A single group must not be shared between
// goroutines.
package pbd
