package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s", event.Seq, event.Call)
		if event.Name != "" {
			fmt.Fprintf(&buf, " %s", event.Name)
			if event.Qualifier != "" {
				fmt.Fprintf(&buf, " %s", event.Qualifier)
			}
		}
		fmt.Fprintf(&buf, " -> %s (recorded %d)\n", event.State, event.Recorded)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertCatalogLines:
		return assertCatalogLines(result, a)
	case AssertCatalogContains:
		return assertCatalogContains(result, a)
	case AssertState:
		return assertState(result, a)
	case AssertRecordedCount:
		return assertRecordedCount(result, a)
	case AssertTraceCount:
		return assertTraceCount(result, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// assertCatalogLines checks the catalog holds exactly the expected lines, in
// order.
func assertCatalogLines(result *Result, a Assertion) error {
	if equalLines(result.Catalog, a.Lines) {
		return nil
	}
	return &AssertionError{
		Type:     AssertCatalogLines,
		Expected: fmt.Sprintf("%q", a.Lines),
		Actual:   fmt.Sprintf("%q", result.Catalog),
		Trace:    result.Trace,
	}
}

// assertCatalogContains checks every expected line is present, in any order.
func assertCatalogContains(result *Result, a Assertion) error {
	have := make(map[string]bool, len(result.Catalog))
	for _, line := range result.Catalog {
		have[line] = true
	}
	var missing []string
	for _, line := range a.Lines {
		if !have[line] {
			missing = append(missing, line)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertCatalogContains,
		Expected: fmt.Sprintf("catalog containing %q", a.Lines),
		Actual:   fmt.Sprintf("missing %q", missing),
		Trace:    result.Trace,
	}
}

func assertState(result *Result, a Assertion) error {
	if result.State == a.State {
		return nil
	}
	return &AssertionError{
		Type:     AssertState,
		Expected: a.State,
		Actual:   result.State,
		Trace:    result.Trace,
	}
}

func assertRecordedCount(result *Result, a Assertion) error {
	if result.Recorded == int64(a.Count) {
		return nil
	}
	return &AssertionError{
		Type:     AssertRecordedCount,
		Expected: fmt.Sprintf("%d names recorded", a.Count),
		Actual:   fmt.Sprintf("%d names recorded", result.Recorded),
		Trace:    result.Trace,
	}
}

func assertTraceCount(result *Result, a Assertion) error {
	n := result.count(a.Call)
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%s appears %d times", a.Call, a.Count),
		Actual:   fmt.Sprintf("%s appears %d times", a.Call, n),
		Trace:    result.Trace,
	}
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
