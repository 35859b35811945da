// Package query validates and normalizes nested-object query documents
// before they are submitted to the query service.
//
// A query document is a tree: namespaces at the top level, an optional
// options block under the reserved "$" key, nested association clauses
// under every other key, and where-clauses mapping condition keys to
// literals or $-prefixed operator objects. The grammar is ad hoc on the
// wire (plain JSON/YAML/CUE data); this package re-expresses it as sealed
// variant types so every shape decision is an exhaustive type switch
// instead of runtime duck typing.
//
// The package has three layers:
//
//   - Value: an ordered, sealed representation of raw document trees
//     (Null, Bool, Number, String, Array, *Object). Object preserves key
//     insertion order, which keeps normalized output deterministic.
//   - Validate: a pure recursive-descent pass producing either a
//     normalized *Query, a Deferred marker (the caller passed null to
//     mean "not ready to run this yet"), or a *QueryError naming the
//     first violation with a dotted path to the offending node.
//   - Encoding: EncodeJSON renders a normalized query as fully
//     materialized single-line JSON (the golden-test surface), and
//     MarshalCanonical/Hash produce the RFC 8785-style canonical form
//     used for content addressing.
//
// Validate never performs I/O, never mutates its input, and holds no
// state between calls; it is safe for concurrent use.
package query
