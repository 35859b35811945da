package harness

import (
	"fmt"

	"github.com/roach88/facet/query"
)

// Outcome categorizes what validation produced.
type Outcome string

const (
	OutcomeNormalized Outcome = "normalized"
	OutcomeDeferred   Outcome = "deferred"
	OutcomeError      Outcome = "error"
)

// Result is the outcome of running one scenario.
type Result struct {
	// Pass indicates the outcome matched the scenario's expectation.
	// Golden byte comparison is the caller's job (goldie in tests, file
	// compare in the CLI); Pass only covers outcome and error matching.
	Pass bool

	// Outcome is what validation actually produced.
	Outcome Outcome

	// Normalized holds the canonical-order encoding when Outcome is
	// OutcomeNormalized.
	Normalized []byte

	// Hash is the canonical content hash when Outcome is
	// OutcomeNormalized.
	Hash string

	// ErrorKind and ErrorPath describe the QueryError when Outcome is
	// OutcomeError.
	ErrorKind string
	ErrorPath string

	// Errors lists expectation mismatches. Empty when Pass is true.
	Errors []string
}

// Run validates a scenario's query document and checks the outcome
// against its expectation.
func Run(scenario *Scenario) (*Result, error) {
	raw, err := scenarioValue(scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: convert query: %w", scenario.Name, err)
	}

	result := &Result{}
	res, verr := query.Validate(raw)
	switch {
	case verr != nil:
		qe, ok := query.AsQueryError(verr)
		if !ok {
			return nil, fmt.Errorf("scenario %s: unexpected error type %T: %w", scenario.Name, verr, verr)
		}
		result.Outcome = OutcomeError
		result.ErrorKind = string(qe.Kind)
		result.ErrorPath = qe.Path
	case res.Deferred:
		result.Outcome = OutcomeDeferred
	default:
		result.Outcome = OutcomeNormalized
		encoded, err := query.EncodeJSON(res.Query)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: encode: %w", scenario.Name, err)
		}
		hash, err := query.Hash(res.Query)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: hash: %w", scenario.Name, err)
		}
		result.Normalized = encoded
		result.Hash = hash
	}

	result.Errors = checkExpectation(scenario, result)
	result.Pass = len(result.Errors) == 0
	return result, nil
}

// scenarioValue converts the scenario's inline YAML query to a Value.
// A zero node (query key absent) reads as null, the deferred marker.
func scenarioValue(scenario *Scenario) (query.Value, error) {
	if scenario.Query.Kind == 0 {
		return query.Null{}, nil
	}
	return query.FromYAMLNode(&scenario.Query)
}
