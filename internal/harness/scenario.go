package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a build scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario covers.
	Description string `yaml:"description"`

	// Input is the raw input document. Relative paths are resolved against
	// the scenario file's directory.
	Input string `yaml:"input"`

	// ShuffleSeeds lists permutations of the input that must encode
	// identically to the input as given.
	ShuffleSeeds []uint64 `yaml:"shuffle_seeds,omitempty"`

	// Assertions validate the built instance.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one property of the built instance.
type Assertion struct {
	// Type specifies the assertion type:
	// - "is_valid": validation outcome equals Valid
	// - "issue": an issue with Code exists (and mentions Subject, if set)
	// - "no_issue": no issue with Code exists
	// - "issue_count": Severity ("error" or "warning") has Count issues
	// - "attr": node Node has attribute Key equal to Value
	// - "node_order": node ids appear exactly in order IDs
	// - "units": the unit table contains Units
	Type string `yaml:"type"`

	Valid *bool `yaml:"valid,omitempty"`

	Code    string `yaml:"code,omitempty"`
	Subject string `yaml:"subject,omitempty"`

	Severity string `yaml:"severity,omitempty"`
	Count    int    `yaml:"count,omitempty"`

	Node  string `yaml:"node,omitempty"`
	Key   string `yaml:"key,omitempty"`
	Value any    `yaml:"value,omitempty"`

	IDs   []string          `yaml:"ids,omitempty"`
	Units map[string]string `yaml:"units,omitempty"`
}

// Assertion type constants.
const (
	AssertIsValid    = "is_valid"
	AssertIssue      = "issue"
	AssertNoIssue    = "no_issue"
	AssertIssueCount = "issue_count"
	AssertAttr       = "attr"
	AssertNodeOrder  = "node_order"
	AssertUnits      = "units"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the input path BEFORE validation
	if scenario.Input != "" && !filepath.IsAbs(scenario.Input) {
		scenario.Input = filepath.Join(filepath.Dir(path), scenario.Input)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Input == "" {
		return fmt.Errorf("input is required")
	}
	if _, err := os.Stat(s.Input); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", s.Input)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertIsValid:
		if a.Valid == nil {
			return fmt.Errorf("assertions[%d]: valid is required for is_valid", index)
		}
	case AssertIssue, AssertNoIssue:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for %s", index, a.Type)
		}
	case AssertIssueCount:
		if a.Severity != "error" && a.Severity != "warning" {
			return fmt.Errorf("assertions[%d]: severity must be error or warning for issue_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for issue_count", index)
		}
	case AssertAttr:
		if a.Node == "" || a.Key == "" {
			return fmt.Errorf("assertions[%d]: node and key are required for attr", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for attr", index)
		}
	case AssertNodeOrder:
		if len(a.IDs) == 0 {
			return fmt.Errorf("assertions[%d]: ids list is required for node_order", index)
		}
	case AssertUnits:
		if len(a.Units) == 0 {
			return fmt.Errorf("assertions[%d]: units is required for units", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
