// Package registry is the resource graph at the centre of the engine.
//
// The Registry stores resource node definitions (handle, kind, dependencies,
// gate, parameter builder) and turns them into an ordered manifest for a
// given snapshot.Context.
//
// # Phases
//
// A Registry has two phases. During the build phase a single goroutine calls
// Register and RegisterDerived. Seal ends the build phase: afterwards every
// mutating call fails with ErrSealed and any number of goroutines may call
// Resolve concurrently. Resolve is also allowed before Seal, from the
// goroutine doing the registration.
//
// # Resolution
//
// Resolve evaluates gates in registration order, keeps the included nodes,
// and orders them so that every node comes after the included nodes it
// depends on. Among nodes with no ordering constraint, registration order is
// kept. A dependency on a node whose gate is false constrains nothing and
// does not pull that node in.
//
// Failures are all-or-nothing: a dangling dependency or a cycle among
// included nodes returns an error and no manifest. Panics raised by gates or
// parameter builders are not recovered.
package registry
