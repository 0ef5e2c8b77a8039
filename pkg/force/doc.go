// Package force is a velocity Verlet force simulation for node/link
// diagrams.
//
// # Overview
//
// A [Simulation] owns one [Body] per node. Each [Simulation.Tick] cools the
// simulation energy (alpha) toward its target, lets every registered
// [Force] adjust body velocities, then applies velocity decay and moves the
// bodies. Bodies with a pinned position (see [Simulation.Pin]) stay put.
//
// The integration constants follow the usual defaults for interactive
// diagrams: alpha starts at 1, decays to the 0.001 stopping threshold in
// about 300 ticks, and velocities lose 40% per tick.
//
// # Forces
//
//   - [Link] pulls linked bodies toward a rest distance
//   - [ManyBody] repels every body from every other body using a
//     Barnes-Hut quadtree from gonum's spatial/barneshut
//   - [X] and [Y] pull bodies toward a target coordinate
//
// # Determinism
//
// Initial placement is a phyllotaxis spiral and the only randomness (the
// jiggle that separates coincident bodies) comes from a seeded PCG source,
// so the same input and seed always settle to the same positions.
//
// # Concurrency
//
// A Simulation is not safe for concurrent use. Drive it from one goroutine.
package force
