package harness

import (
	"fmt"

	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/selector"
)

// evaluateAssertion checks one assertion against a finished result.
func evaluateAssertion(a Assertion, result *Result) error {
	switch a.Type {
	case AssertStateEquals:
		return assertStateEquals(a, result)
	case AssertNotifyCount:
		if result.Notifications != a.Count {
			return fmt.Errorf("expected %d notifications, got %d", a.Count, result.Notifications)
		}
		return nil
	case AssertCommitCount:
		if result.Commits != int64(a.Count) {
			return fmt.Errorf("expected %d commits, got %d", a.Count, result.Commits)
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertStateEquals(a Assertion, result *Result) error {
	sel, err := selector.Path(a.Path)
	if err != nil {
		return err
	}
	got, err := sel.GetIR(result.State)
	if err != nil {
		return err
	}
	want, err := ir.FromGo(a.Value)
	if err != nil {
		return fmt.Errorf("expected value: %w", err)
	}
	if !ir.Equal(want, got) {
		return fmt.Errorf("%s: expected %s, got %s", displayPath(a.Path), render(want), render(got))
	}
	return nil
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}

// render formats an IR value as canonical JSON for failure messages.
func render(v ir.IRValue) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
