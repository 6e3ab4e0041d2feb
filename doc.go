// Package entitydataspace implements an embedded entity/attribute data
// space backed by an ordered key-value store. Entities are opaque string
// ids, each owning a multiset of (name, value) attribute pairs where a
// value is either a quoted literal or a reference to another entity. On
// top of that store the package answers tree-structured pattern queries
// with wildcards, variables, and unification, plus an optional
// mapping-aware mode that expands attribute synonymy declarations.
//
// The package is not safe for concurrent use by multiple goroutines: a
// DataSpace expects one logical operation at a time. Callers needing
// concurrent access must serialize their own calls.
package entitydataspace
