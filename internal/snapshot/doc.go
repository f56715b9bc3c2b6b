// Package snapshot defines the immutable Context value a resolution pass
// reads from.
//
// A Context is built once per request by whatever collects facts from the
// host (page classification, login state, option storage, feature flags,
// query variables). Nothing in the engine queries the host directly; every
// environment fact has to be in the snapshot.
//
// All reads are total. A missing option, flag or query variable reads as its
// falsy value ("", false, nil) and is never an error.
package snapshot
