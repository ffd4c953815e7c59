package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stepgraph/internal/ir"
	"github.com/roach88/stepgraph/internal/jsonl"
	"github.com/roach88/stepgraph/internal/pipeline"
	"github.com/roach88/stepgraph/internal/testutil"
)

func bracketLine(t *testing.T) string {
	t.Helper()
	x, err := pipeline.Build(pipeline.Input{
		ModelID: "bracket-001",
		Nodes:   testutil.BracketNodes(),
		Edges:   testutil.BracketEdges(),
		Units:   testutil.BracketUnits(),
	}, pipeline.Options{Clock: testutil.NewFixedClock()})
	require.NoError(t, err)
	require.True(t, x.Validation.IsValid())

	line, err := jsonl.Encode(x)
	require.NoError(t, err)
	return string(line)
}

func newSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	return s
}

func TestCheckAcceptsEncodedRecord(t *testing.T) {
	s := newSchema(t)
	assert.NoError(t, s.Check([]byte(bracketLine(t))))
}

func TestCheckAcceptsInvalidGraph(t *testing.T) {
	// A record reporting graph errors still conforms.
	x, err := pipeline.Build(pipeline.Input{
		ModelID: "dangling",
		Nodes:   []ir.Node{{ID: "a", Kind: ir.KindPart, Attrs: ir.AttrRecord{}}},
		Edges:   []ir.Edge{{Src: "a", Dst: "ghost", Kind: ir.EdgeContains, Attrs: ir.AttrRecord{}}},
	}, pipeline.Options{Clock: testutil.NewFixedClock()})
	require.NoError(t, err)
	require.False(t, x.Validation.IsValid())

	line, err := jsonl.Encode(x)
	require.NoError(t, err)
	assert.NoError(t, newSchema(t).Check(line))
}

func TestCheckAcceptsUnknownKeys(t *testing.T) {
	line := bracketLine(t)
	extended := `{"zz_future":{"any":[1,2]},` + line[1:]
	extended = strings.Replace(extended, `"validation":{`, `"validation":{"checker":"v2",`, 1)

	assert.NoError(t, newSchema(t).Check([]byte(extended)))
}

func TestCheckAcceptsUnknownTypes(t *testing.T) {
	line := bracketLine(t)
	line = strings.Replace(line, `"type":"Part"`, `"type":"Widget"`, 1)
	line = strings.Replace(line, `"type":"has_material"`, `"type":"touches"`, 1)

	assert.NoError(t, newSchema(t).Check([]byte(line)))
}

func TestCheckRejects(t *testing.T) {
	line := bracketLine(t)
	s := newSchema(t)

	tests := []struct {
		name string
		old  string
		new  string
		want string
	}{
		{"empty node type", `"type":"Part"`, `"type":""`, "type"},
		{"empty edge type", `"type":"has_material"`, `"type":""`, "type"},
		{"empty edge dst", `"dst":"mat-1"`, `"dst":""`, "dst"},
		{"is_valid contradicts errors", `"is_valid":true`, `"is_valid":false`, "is_valid"},
		{"stale node count", `"node_count":7`, `"node_count":8`, "node_count"},
		{"missing model id", `"model_id":"bracket-001",`, ``, "model_id"},
		{"empty node id", `"id":"face-1"`, `"id":""`, "id"},
		{"future major version", `"schema_version":"1.0.0"`, `"schema_version":"2.0.0"`, "schema_version"},
		{"precision mismatch", `"float_precision":6`, `"float_precision":9`, "float_precision"},
		{"bad timestamp", `"created_at":"2026-01-01T00:00:00.000000Z"`, `"created_at":"2026-01-01"`, "created_at"},
		{"null attribute", `"surface_type":"plane"`, `"surface_type":null`, "surface_type"},
		{"uncoded error string", `"errors":[]`, `"errors":["broken"]`, "errors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Contains(t, line, tt.old)
			bad := strings.Replace(line, tt.old, tt.new, 1)

			err := s.Check([]byte(bad))
			require.Error(t, err)

			var ce *ConformanceError
			require.True(t, errors.As(err, &ce))
			assert.NotEmpty(t, ce.Violations)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheckMalformedJSON(t *testing.T) {
	err := newSchema(t).Check([]byte(`{"model_id":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed JSON")

	var ce *ConformanceError
	assert.False(t, errors.As(err, &ce))
}

func TestSchemaTracksIRConstants(t *testing.T) {
	s := newSchema(t)

	p, err := s.FloatPrecision()
	require.NoError(t, err)
	assert.Equal(t, int64(ir.FloatPrecision), p)

	for _, k := range ir.NodeKinds() {
		assert.Contains(t, Source, `"`+string(k)+`"`)
	}
	for _, k := range ir.EdgeKinds() {
		assert.Contains(t, Source, `"`+string(k)+`"`)
	}
}

func TestViolationString(t *testing.T) {
	assert.Equal(t, "a.b: bad", Violation{Path: "a.b", Message: "bad"}.String())
	assert.Equal(t, "bad", Violation{Message: "bad"}.String())
}
