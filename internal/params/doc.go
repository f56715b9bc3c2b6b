// Package params builds the per-resource parameter bundle that is attached
// to a manifest entry.
//
// A bundle is assembled from an ordered list of sources. Sources are applied
// in declaration order and a later source overwrites any key set by an
// earlier one. This mirrors building a base argument map and then merging an
// override map over it, so the base always comes first in the list.
//
// Values that several resources need (decimal and thousand separators,
// for instance) are declared as Derivations. They are computed once per
// resolution pass by Derive and read back through snapshot.Context.Derived,
// so two consumers can never disagree about them.
//
// Nothing in this package performs I/O. Translated strings reach it as plain
// static values.
package params
