package input

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stepgraph/internal/ir"
	"github.com/roach88/stepgraph/internal/jsonl"
	"github.com/roach88/stepgraph/internal/pipeline"
	"github.com/roach88/stepgraph/internal/testutil"
)

func TestLoadBracket(t *testing.T) {
	in, err := Load(filepath.Join("testdata", "bracket.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "bracket-001", in.ModelID)
	assert.Equal(t, map[string]string{"length": "inches"}, in.Units)
	require.Len(t, in.Nodes, 7)
	require.Len(t, in.Edges, 6)

	// Document order is preserved; ordering is the pipeline's job.
	assert.Equal(t, "solid-1", in.Nodes[0].ID)
	assert.Equal(t, ir.KindManifoldSolidBrep, in.Nodes[0].Kind)
	assert.Equal(t, ir.EdgeBoundedBy, in.Edges[0].Kind)
	assert.Equal(t, ir.AttrRecord{}, in.Edges[0].Attrs)
}

func TestLoadMatchesProgrammaticBuild(t *testing.T) {
	in, err := Load(filepath.Join("testdata", "bracket.yaml"))
	require.NoError(t, err)

	opts := pipeline.Options{Clock: testutil.NewFixedClock()}
	fromFile, err := pipeline.Build(in, opts)
	require.NoError(t, err)

	nodes, edges := testutil.Shuffled(testutil.BracketNodes(), testutil.BracketEdges(), 7)
	fromCode, err := pipeline.Build(pipeline.Input{
		ModelID: "bracket-001",
		Nodes:   nodes,
		Edges:   edges,
		Units:   testutil.BracketUnits(),
	}, pipeline.Options{Clock: testutil.NewFixedClock()})
	require.NoError(t, err)

	a, err := jsonl.Encode(fromFile)
	require.NoError(t, err)
	b, err := jsonl.Encode(fromCode)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestParseJSON(t *testing.T) {
	doc := `{"model_id":"m","units":{"length":"mm"},"bounding_box":{"min_x":0,"min_y":0,"min_z":0,"max_x":1,"max_y":2,"max_z":3},` +
		`"provenance":{"step_schema":"AP242"},"warnings":["skipped 2 entities"],` +
		`"nodes":[{"id":"p","type":"Part","attrs":{"origin":[0,1.5,2]}}],"edges":[]}`

	in, err := Parse([]byte(doc))
	require.NoError(t, err)

	require.NotNil(t, in.BoundingBox)
	assert.Equal(t, 3.0, in.BoundingBox.MaxZ)
	assert.Equal(t, ir.S("AP242"), in.Provenance["step_schema"])
	assert.Equal(t, []string{"skipped 2 entities"}, in.Warnings)
	assert.Equal(t, ir.V(0, 1.5, 2), in.Nodes[0].Attrs["origin"])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown field", "model_id: m\nnodez: []\n", "failed to parse input"},
		{"unknown node type", "model_id: m\nnodes:\n  - {id: a, type: Widget}\n", `unknown node type "Widget"`},
		{"unknown edge type", "model_id: m\nnodes: []\nedges:\n  - {src: a, dst: b, type: touches}\n", `unknown edge type "touches"`},
		{"missing node id", "model_id: m\nnodes:\n  - {type: Part}\n", "nodes[0]: id is required"},
		{"null attribute", "model_id: m\nnodes:\n  - {id: a, type: Part, attrs: {name: null}}\n", "null is not an attribute value"},
		{"mixed sequence", "model_id: m\nnodes:\n  - {id: a, type: Part, attrs: {v: [1, x]}}\n", "sequences may only contain numbers"},
		{"not yaml", "model_id: [\n", "failed to parse input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDeriveModelID(t *testing.T) {
	doc := []byte("nodes: []\n")

	in, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, DeriveModelID("", doc), in.ModelID)
	assert.Len(t, in.ModelID, 36)

	again, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, in.ModelID, again.ModelID, "derived ids are stable")

	a := DeriveModelID("bracket.step", []byte("x"))
	b := DeriveModelID("bracket.step", []byte("y"))
	assert.Equal(t, a, b, "source file wins over document content")
	assert.NotEqual(t, a, DeriveModelID("other.step", nil))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read input file")
}
