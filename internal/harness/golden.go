package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/stepgraph/internal/ir"
)

// Snapshot captures the canonical shape of a built instance: order of nodes
// and edges plus the validation findings. Attribute values and timestamps
// are left out so snapshots stay readable.
type Snapshot struct {
	Scenario string
	ModelID  string
	Nodes    []string // "Kind:id" in canonical order
	Edges    []string // "src -kind-> dst" in canonical order
	Errors   []string
	Warnings []string
	IsValid  bool
}

// NewSnapshot builds the snapshot of x for a scenario.
func NewSnapshot(scenario string, x *ir.IR) *Snapshot {
	s := &Snapshot{
		Scenario: scenario,
		ModelID:  x.ModelID,
		Nodes:    make([]string, len(x.Nodes)),
		Edges:    make([]string, len(x.Edges)),
		Errors:   append([]string{}, x.Validation.Errors...),
		Warnings: append([]string{}, x.Validation.Warnings...),
		IsValid:  x.Validation.IsValid(),
	}
	for i, n := range x.Nodes {
		s.Nodes[i] = fmt.Sprintf("%s:%s", n.Kind, n.ID)
	}
	for i, e := range x.Edges {
		s.Edges[i] = fmt.Sprintf("%s -%s-> %s", e.Src, e.Kind, e.Dst)
	}
	return s
}

// toCanonicalMap converts a Snapshot for canonical JSON serialization.
func (s *Snapshot) toCanonicalMap() map[string]any {
	return map[string]any{
		"scenario": s.Scenario,
		"model_id": s.ModelID,
		"nodes":    s.Nodes,
		"edges":    s.Edges,
		"errors":   s.Errors,
		"warnings": s.Warnings,
		"is_valid": s.IsValid,
	}
}

// MarshalCanonical renders the snapshot as one canonical JSON line.
func (s *Snapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// Returns error if scenario execution fails. Failed checks, failed
// assertions and golden mismatches fail t.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		t.Errorf("scenario %s: %s", scenario.Name, e)
	}

	data, err := NewSnapshot(scenario.Name, result.IR).MarshalCanonical()
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
