package harness

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/stepgraph/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// evaluate checks one assertion against x.
func evaluate(x *ir.IR, a Assertion) error {
	switch a.Type {
	case AssertIsValid:
		return assertIsValid(x, a)
	case AssertIssue:
		return assertIssue(x, a)
	case AssertNoIssue:
		return assertNoIssue(x, a)
	case AssertIssueCount:
		return assertIssueCount(x, a)
	case AssertAttr:
		return assertAttr(x, a)
	case AssertNodeOrder:
		return assertNodeOrder(x, a)
	case AssertUnits:
		return assertUnits(x, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertIsValid(x *ir.IR, a Assertion) error {
	if got := x.Validation.IsValid(); got != *a.Valid {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("is_valid=%t", *a.Valid),
			Actual:   fmt.Sprintf("is_valid=%t with errors %q", got, x.Validation.Errors),
		}
	}
	return nil
}

// issues returns every error and warning of x.
func issues(x *ir.IR) []string {
	return slices.Concat(x.Validation.Errors, x.Validation.Warnings)
}

// matchIssue reports whether issue carries code and mentions subject.
func matchIssue(issue, code, subject string) bool {
	if !strings.HasPrefix(issue, "["+code+"]") {
		return false
	}
	return subject == "" || strings.Contains(issue, subject)
}

func assertIssue(x *ir.IR, a Assertion) error {
	for _, is := range issues(x) {
		if matchIssue(is, a.Code, a.Subject) {
			return nil
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("issue %s mentioning %q", a.Code, a.Subject),
		Actual:   fmt.Sprintf("%q", issues(x)),
	}
}

func assertNoIssue(x *ir.IR, a Assertion) error {
	for _, is := range issues(x) {
		if matchIssue(is, a.Code, a.Subject) {
			return &AssertionError{
				Type:     a.Type,
				Expected: "no issue " + a.Code,
				Actual:   is,
			}
		}
	}
	return nil
}

func assertIssueCount(x *ir.IR, a Assertion) error {
	list := x.Validation.Errors
	if a.Severity == "warning" {
		list = x.Validation.Warnings
	}
	if len(list) != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d %ss", a.Count, a.Severity),
			Actual:   fmt.Sprintf("%d: %q", len(list), list),
		}
	}
	return nil
}

func assertAttr(x *ir.IR, a Assertion) error {
	n, ok := x.NodeByID(a.Node)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: "node " + a.Node, Actual: "no such node"}
	}
	want, err := ir.FromAny(a.Value)
	if err != nil {
		return fmt.Errorf("attr %s.%s: %w", a.Node, a.Key, err)
	}
	want = ir.Canonicalize(want)

	got, ok := n.Attrs[a.Key]
	if !ok || !reflect.DeepEqual(got, want) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s.%s = %v", a.Node, a.Key, want),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

func assertNodeOrder(x *ir.IR, a Assertion) error {
	ids := make([]string, len(x.Nodes))
	for i, n := range x.Nodes {
		ids[i] = n.ID
	}
	if !slices.Equal(ids, a.IDs) {
		return &AssertionError{
			Type:     a.Type,
			Expected: strings.Join(a.IDs, ", "),
			Actual:   strings.Join(ids, ", "),
		}
	}
	return nil
}

func assertUnits(x *ir.IR, a Assertion) error {
	for dim, want := range a.Units {
		if got := x.Units[dim]; got != want {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s in %s", dim, want),
				Actual:   fmt.Sprintf("%s in %q", dim, got),
			}
		}
	}
	return nil
}
