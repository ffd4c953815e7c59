package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stepgraph/internal/ir"
)

func boolPtr(b bool) *bool { return &b }

func sampleIR() *ir.IR {
	return &ir.IR{
		ModelID: "m",
		Nodes: []ir.Node{
			{ID: "p", Kind: ir.KindPart, Attrs: ir.AttrRecord{"thickness": ir.N(6.35)}},
			{ID: "f", Kind: ir.KindAdvancedFace, Attrs: ir.AttrRecord{}},
		},
		Units: map[string]string{"length": "mm"},
		Validation: ir.ValidationInfo{
			Errors:   []string{`[E203] edge[0] p -contains-> ghost: dst "ghost" does not reference an existing node`},
			Warnings: []string{`[W302] node "p": part has no geometry child`},
		},
	}
}

func TestEvaluate(t *testing.T) {
	x := sampleIR()

	tests := []struct {
		name string
		a    Assertion
		pass bool
	}{
		{"is_valid matches", Assertion{Type: AssertIsValid, Valid: boolPtr(false)}, true},
		{"is_valid differs", Assertion{Type: AssertIsValid, Valid: boolPtr(true)}, false},
		{"issue by code", Assertion{Type: AssertIssue, Code: "E203"}, true},
		{"issue by code and subject", Assertion{Type: AssertIssue, Code: "W302", Subject: `node "p"`}, true},
		{"issue wrong subject", Assertion{Type: AssertIssue, Code: "W302", Subject: `node "f"`}, false},
		{"issue absent", Assertion{Type: AssertIssue, Code: "E205"}, false},
		{"no_issue absent", Assertion{Type: AssertNoIssue, Code: "E205"}, true},
		{"no_issue present", Assertion{Type: AssertNoIssue, Code: "E203"}, false},
		{"error count", Assertion{Type: AssertIssueCount, Severity: "error", Count: 1}, true},
		{"warning count wrong", Assertion{Type: AssertIssueCount, Severity: "warning", Count: 0}, false},
		{"attr number", Assertion{Type: AssertAttr, Node: "p", Key: "thickness", Value: 6.35}, true},
		{"attr rounds expected value", Assertion{Type: AssertAttr, Node: "p", Key: "thickness", Value: 6.3500001}, true},
		{"attr differs", Assertion{Type: AssertAttr, Node: "p", Key: "thickness", Value: 0.25}, false},
		{"attr missing key", Assertion{Type: AssertAttr, Node: "f", Key: "area", Value: 1.0}, false},
		{"attr missing node", Assertion{Type: AssertAttr, Node: "zz", Key: "area", Value: 1.0}, false},
		{"node_order", Assertion{Type: AssertNodeOrder, IDs: []string{"p", "f"}}, true},
		{"node_order differs", Assertion{Type: AssertNodeOrder, IDs: []string{"f", "p"}}, false},
		{"units", Assertion{Type: AssertUnits, Units: map[string]string{"length": "mm"}}, true},
		{"units differ", Assertion{Type: AssertUnits, Units: map[string]string{"length": "inches"}}, false},
		{"unknown type", Assertion{Type: "magic"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := evaluate(x, tt.a)
			if tt.pass {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestAssertionError(t *testing.T) {
	err := evaluate(sampleIR(), Assertion{Type: AssertNodeOrder, IDs: []string{"f", "p"}})
	require.Error(t, err)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertNodeOrder, ae.Type)
	assert.Equal(t, "node_order: expected f, p, got p, f", ae.Error())
}
