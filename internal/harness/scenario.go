package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a codec conformance scenario: one schema and a list
// of cases exercised against it.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden
	// file when run via RunWithGolden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Schema is the path to the CUE schema file, relative to the
	// scenario file location.
	Schema string `yaml:"schema"`

	// Cases are executed in order.
	Cases []Case `yaml:"cases"`
}

// Case is a single codec operation with its expectation. Exactly one of
// Value, Decode or Identify selects the operation:
//
//   - Value: encode the value as Record; Bytes, when set, is the
//     expected encoding in hex. The encoding is always decoded back and
//     must round-trip.
//   - Decode: checked-decode the hex buffer as Record.
//   - Identify: identify-and-decode the hex buffer; Record, when set,
//     is the expected match.
//
// Error, when set, names the expected failure category instead of a
// success expectation: "unknown_record", "discriminator_mismatch",
// "record_not_found", "decode" or "value".
type Case struct {
	Name     string         `yaml:"name"`
	Record   string         `yaml:"record,omitempty"`
	Value    map[string]any `yaml:"value,omitempty"`
	Bytes    string         `yaml:"bytes,omitempty"`
	Decode   string         `yaml:"decode,omitempty"`
	Identify string         `yaml:"identify,omitempty"`
	Error    string         `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file, resolving the
// schema path relative to the scenario file. Unknown fields are rejected
// to catch typos.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(filepath.Dir(path), scenario.Schema)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("at least one case is required")
	}
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("case %d: name is required", i)
		}
		ops := 0
		if c.Value != nil {
			ops++
		}
		if c.Decode != "" {
			ops++
		}
		if c.Identify != "" {
			ops++
		}
		if ops != 1 {
			return fmt.Errorf("case %q: exactly one of value, decode or identify is required", c.Name)
		}
		if c.Value != nil && c.Record == "" {
			return fmt.Errorf("case %q: value cases require a record", c.Name)
		}
		if c.Decode != "" && c.Record == "" {
			return fmt.Errorf("case %q: decode cases require a record", c.Name)
		}
		if c.Error != "" && !knownCategory(c.Error) {
			return fmt.Errorf("case %q: unknown error category %q", c.Name, c.Error)
		}
	}
	return nil
}
