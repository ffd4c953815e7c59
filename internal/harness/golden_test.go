package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stepgraph/internal/ir"
)

// TestGolden runs every scenario under testdata/scenarios against its golden
// snapshot. Regenerate with: go test ./internal/harness -run TestGolden -update
func TestGolden(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, s))
		})
	}
}

func TestSnapshot_Canonical(t *testing.T) {
	x := &ir.IR{
		ModelID: "m",
		Nodes:   []ir.Node{{ID: "a", Kind: ir.KindPart}},
		Edges:   []ir.Edge{{Src: "a", Dst: "b", Kind: ir.EdgeContains}},
	}

	data, err := NewSnapshot("tiny", x).MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t,
		`{"edges":["a -contains-> b"],"errors":[],"is_valid":true,"model_id":"m","nodes":["Part:a"],"scenario":"tiny","warnings":[]}`,
		string(data))
}
