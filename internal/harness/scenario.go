package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Scenario is a sequence of dispatches and the assertions that must hold
// afterwards.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs is the directory of CUE slice specs to compile.
	// LoadScenario resolves it relative to the scenario file.
	Specs string `yaml:"specs"`

	// Steps are dispatched in order.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one dispatch, or a batch of dispatches run as a single thunk.
// Exactly one of Dispatch and Batch must be set.
type Step struct {
	// Dispatch is the action type.
	Dispatch string `yaml:"dispatch,omitempty"`

	// Payload holds the action's fields.
	Payload map[string]any `yaml:"payload,omitempty"`

	// Batch lists actions dispatched in order from one thunk. The batch
	// stops at the first failing action.
	Batch []BatchAction `yaml:"batch,omitempty"`

	// ExpectError is the error kind the step must produce. Empty means the
	// step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// BatchAction is one action of a batch step.
type BatchAction struct {
	Dispatch string         `yaml:"dispatch"`
	Payload  map[string]any `yaml:"payload,omitempty"`
}

// Assertion validates the final state or the run's counters.
type Assertion struct {
	// Type specifies the assertion type:
	// - "state_equals": the value at Path equals Value
	// - "notify_count": listeners were notified Count times
	// - "commit_count": Count dispatches committed
	Type string `yaml:"type"`

	// Path is a dotted selector path (used by state_equals).
	// The empty path selects the whole state.
	Path string `yaml:"path,omitempty"`

	// Value is the expected value (used by state_equals).
	Value any `yaml:"value,omitempty"`

	// Count is the expected count (used by notify_count and commit_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertStateEquals = "state_equals"
	AssertNotifyCount = "notify_count"
	AssertCommitCount = "commit_count"
)

// Error kind constants for Step.ExpectError.
const (
	ErrorKindReduce    = "reduce"
	ErrorKindInvalid   = "invalid"
	ErrorKindReentrant = "reentrant"
	ErrorKindPanic     = "panic"
	ErrorKindAny       = "any"
	errorKindOther     = "error"
)

var validErrorKinds = []string{
	ErrorKindReduce,
	ErrorKindInvalid,
	ErrorKindReentrant,
	ErrorKindPanic,
	ErrorKindAny,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// A relative Specs directory is resolved against the scenario file's
// directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Specs != "" && !filepath.IsAbs(scenario.Specs) {
		scenario.Specs = filepath.Join(filepath.Dir(path), scenario.Specs)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. Specs is left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Specs == "" {
		return errors.New("specs is required")
	}
	if len(s.Steps) == 0 {
		return errors.New("at least one step is required")
	}

	for i, step := range s.Steps {
		switch {
		case step.Dispatch == "" && len(step.Batch) == 0:
			return fmt.Errorf("step %d: one of dispatch or batch is required", i)
		case step.Dispatch != "" && len(step.Batch) > 0:
			return fmt.Errorf("step %d: dispatch and batch are mutually exclusive", i)
		case len(step.Batch) > 0 && step.Payload != nil:
			return fmt.Errorf("step %d: payload is not allowed on a batch", i)
		}
		for j, a := range step.Batch {
			if a.Dispatch == "" {
				return fmt.Errorf("step %d: batch action %d: dispatch is required", i, j)
			}
		}
		if step.ExpectError != "" && !slices.Contains(validErrorKinds, step.ExpectError) {
			return fmt.Errorf("step %d: unknown expect_error %q (valid: %v)", i, step.ExpectError, validErrorKinds)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion %d: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertStateEquals:
		return nil
	case AssertNotifyCount, AssertCommitCount:
		if a.Count < 0 {
			return fmt.Errorf("%s: count must be non-negative", a.Type)
		}
		return nil
	case "":
		return errors.New("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}
