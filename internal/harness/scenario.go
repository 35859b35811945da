package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance case: a raw query document and the
// expected validation outcome.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Query is the raw document tree, written inline as YAML. Omitted
	// or null means a deferred query.
	Query yaml.Node `yaml:"query,omitempty"`

	// Expect is the expected outcome. Exactly one member must be set.
	Expect Expectation `yaml:"expect"`
}

// Expectation is the expected validation outcome.
type Expectation struct {
	// Deferred expects the deferred marker.
	Deferred bool `yaml:"deferred,omitempty"`

	// Error expects validation to fail with a specific kind.
	Error *ErrorExpectation `yaml:"error,omitempty"`

	// Golden expects success with normalized output matching the named
	// golden file.
	Golden string `yaml:"golden,omitempty"`
}

// ErrorExpectation names the expected QueryError.
type ErrorExpectation struct {
	// Kind is the expected error kind (required).
	Kind string `yaml:"kind"`

	// Path is the expected error path. Empty means "don't check";
	// scenarios expecting a root-level error use kind-only matching.
	Path string `yaml:"path,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected to catch typos like "expects:" for "expect:".
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and that exactly one
// expectation member is set.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	set := 0
	if s.Expect.Deferred {
		set++
	}
	if s.Expect.Error != nil {
		set++
		if s.Expect.Error.Kind == "" {
			return fmt.Errorf("expect.error.kind is required")
		}
	}
	if s.Expect.Golden != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("expect must set exactly one of deferred, error, golden (got %d)", set)
	}
	return nil
}
