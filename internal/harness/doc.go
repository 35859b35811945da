// Package harness runs conformance scenarios against the query
// validator.
//
// # Scenario Format
//
// Scenarios are YAML files, one scenario per file:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	query:
//	  todos:
//	    $:
//	      where:
//	        done: false
//	expect:
//	  golden: scenario_name
//
// The query is the raw document tree, written inline. An omitted or
// null query denotes a deferred query. The expectation is exactly one
// of:
//
//   - deferred: true, validation must return the deferred marker
//   - error: {kind: ..., path: ...}, validation must fail with this
//     kind (and path, when given)
//   - golden: <name>, validation must succeed and the normalized
//     encoding must match testdata/golden/<name>.golden
//
// # Determinism
//
// Validation is pure and the normalized encoding preserves document
// key order, so a scenario produces byte-identical output on every
// run; golden files are regenerated with `go test ./... -update` or
// `facet test --update`.
package harness
