package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one simulated capture session.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Profile is the name of a built-in profile.
	Profile string `yaml:"profile,omitempty"`

	// ProfileFile is a profiles YAML file, relative to the scenario file.
	// When set, Profile selects from it; a file with one profile needs no
	// Profile.
	ProfileFile string `yaml:"profile_file,omitempty"`

	// Session is the session id stamped on the controller.
	// If empty, defaults to "test-session".
	Session string `yaml:"session,omitempty"`

	// Catalog seeds the catalog file before attach, one name per entry.
	Catalog []string `yaml:"catalog,omitempty"`

	// Unresolved lists targets the fake host does not export, to simulate an
	// incompatible host build.
	Unresolved []string `yaml:"unresolved,omitempty"`

	// Flow is the sequence of host calls.
	Flow []Step `yaml:"flow"`

	// Assertions validate the trace and the final catalog.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one host call, possibly repeated and issued concurrently.
type Step struct {
	// Call is "bootstrap" or "resolve".
	Call string `yaml:"call"`

	// Capture selects the profile capture target (resolve only).
	Capture int `yaml:"capture,omitempty"`

	// Name and Qualifier are the strings passed to the resolver.
	// A qualified-layout target ignores Qualifier.
	Name      string `yaml:"name,omitempty"`
	Qualifier string `yaml:"qualifier,omitempty"`

	// Repeat is how many calls each goroutine makes. Zero means one.
	Repeat int `yaml:"repeat,omitempty"`

	// Concurrency is how many goroutines make the calls. Zero means one.
	Concurrency int `yaml:"concurrency,omitempty"`
}

// Step call constants.
const (
	CallBootstrap = "bootstrap"
	CallResolve   = "resolve"
)

// Assertion validates the outcome.
type Assertion struct {
	// Type specifies the assertion type:
	// - "catalog_lines": The catalog file holds exactly Lines, in order
	// - "catalog_contains": The catalog file holds every name in Lines
	// - "state": The controller ended in State
	// - "recorded_count": Capture hooks recorded exactly Count new names
	// - "trace_count": Call appears exactly Count times in the trace
	Type string `yaml:"type"`

	// Lines are the expected catalog lines (catalog_lines, catalog_contains).
	Lines []string `yaml:"lines,omitempty"`

	// State is the expected controller state (state).
	State string `yaml:"state,omitempty"`

	// Call is the call kind to count (trace_count).
	Call string `yaml:"call,omitempty"`

	// Count is the expected count (recorded_count, trace_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertCatalogLines    = "catalog_lines"
	AssertCatalogContains = "catalog_contains"
	AssertState           = "state"
	AssertRecordedCount   = "recorded_count"
	AssertTraceCount      = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative ProfileFile is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if s.ProfileFile != "" && !filepath.IsAbs(s.ProfileFile) {
		s.ProfileFile = filepath.Join(filepath.Dir(path), s.ProfileFile)
	}
	return s, nil
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Profile == "" && s.ProfileFile == "" {
		return fmt.Errorf("profile or profile_file is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *Step) error {
	switch step.Call {
	case CallBootstrap:
		if step.Name != "" || step.Qualifier != "" {
			return fmt.Errorf("flow[%d]: bootstrap calls take no name", index)
		}
	case CallResolve:
		if step.Name == "" {
			return fmt.Errorf("flow[%d]: name is required for resolve", index)
		}
		if step.Capture < 0 {
			return fmt.Errorf("flow[%d]: capture must be non-negative", index)
		}
	case "":
		return fmt.Errorf("flow[%d]: call is required", index)
	default:
		return fmt.Errorf("flow[%d]: unknown call %q", index, step.Call)
	}
	if step.Repeat < 0 {
		return fmt.Errorf("flow[%d]: repeat must be non-negative", index)
	}
	if step.Concurrency < 0 {
		return fmt.Errorf("flow[%d]: concurrency must be non-negative", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCatalogLines:
		// An empty list asserts an empty catalog.
	case AssertCatalogContains:
		if len(a.Lines) == 0 {
			return fmt.Errorf("assertions[%d]: lines are required for catalog_contains", index)
		}
	case AssertState:
		if a.State == "" {
			return fmt.Errorf("assertions[%d]: state is required for state", index)
		}
	case AssertRecordedCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for recorded_count", index)
		}
	case AssertTraceCount:
		if a.Call != CallBootstrap && a.Call != CallResolve {
			return fmt.Errorf("assertions[%d]: call must be bootstrap or resolve for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func (s Step) calls() (goroutines, perGoroutine int) {
	goroutines, perGoroutine = s.Concurrency, s.Repeat
	if goroutines == 0 {
		goroutines = 1
	}
	if perGoroutine == 0 {
		perGoroutine = 1
	}
	return goroutines, perGoroutine
}
