package harness

import "fmt"

// checkExpectation compares an actual outcome against the scenario's
// expectation and returns mismatch messages. Golden content comparison
// happens elsewhere; here a golden expectation only requires that
// validation succeeded.
func checkExpectation(scenario *Scenario, result *Result) []string {
	var errs []string

	expected := expectedOutcome(scenario)
	if result.Outcome != expected {
		errs = append(errs, fmt.Sprintf("expected %s outcome, got %s", expected, result.Outcome))
		if result.Outcome == OutcomeError {
			errs = append(errs, fmt.Sprintf("validation failed: %s at %q", result.ErrorKind, result.ErrorPath))
		}
		return errs
	}

	if want := scenario.Expect.Error; want != nil && result.Outcome == OutcomeError {
		if result.ErrorKind != want.Kind {
			errs = append(errs, fmt.Sprintf("expected error kind %s, got %s", want.Kind, result.ErrorKind))
		}
		if want.Path != "" && result.ErrorPath != want.Path {
			errs = append(errs, fmt.Sprintf("expected error path %q, got %q", want.Path, result.ErrorPath))
		}
	}
	return errs
}

func expectedOutcome(scenario *Scenario) Outcome {
	switch {
	case scenario.Expect.Deferred:
		return OutcomeDeferred
	case scenario.Expect.Error != nil:
		return OutcomeError
	default:
		return OutcomeNormalized
	}
}
