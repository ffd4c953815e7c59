package jsonl

import (
	"fmt"

	"github.com/roach88/stepgraph/internal/ir"
)

// Top-level keys of a wire record.
const (
	KeySchemaVersion  = "schema_version"
	KeyFloatPrecision = "float_precision"
	KeyModelID        = "model_id"
	KeyValidation     = "validation"
	KeyUnits          = "units"
	KeyNodes          = "nodes"
	KeyEdges          = "edges"
	KeyProvenance     = "provenance"
	KeyBoundingBox    = "bounding_box"
)

// requiredKeys must be present in every record.
var requiredKeys = []string{
	KeySchemaVersion, KeyModelID, KeyValidation, KeyUnits,
	KeyNodes, KeyEdges, KeyProvenance, KeyBoundingBox,
}

// Encode returns the canonical line for x, without a trailing newline.
//
// x must carry a validation report whose counts match its live collections;
// otherwise Encode fails with ir.ErrNotValidated or ir.ErrStaleValidation.
// Arrays are written in stored order.
func Encode(x *ir.IR) ([]byte, error) {
	if x.Validation.SchemaVersion == "" {
		return nil, fmt.Errorf("encode model %q: %w", x.ModelID, ir.ErrNotValidated)
	}
	if x.ValidationStale() {
		return nil, fmt.Errorf("encode model %q: %w (report %d/%d, live %d/%d)", x.ModelID, ir.ErrStaleValidation,
			x.Validation.NodeCount, x.Validation.EdgeCount, len(x.Nodes), len(x.Edges))
	}

	line, err := ir.MarshalCanonical(wireValue(x))
	if err != nil {
		return nil, fmt.Errorf("encode model %q: %w", x.ModelID, err)
	}
	return line, nil
}

// wireValue builds the generic value tree that MarshalCanonical renders.
func wireValue(x *ir.IR) map[string]any {
	nodes := make([]any, len(x.Nodes))
	for i, n := range x.Nodes {
		nodes[i] = map[string]any{
			"id":    n.ID,
			"type":  string(n.Kind),
			"attrs": attrsOrEmpty(n.Attrs),
		}
	}
	edges := make([]any, len(x.Edges))
	for i, e := range x.Edges {
		edges[i] = map[string]any{
			"src":   e.Src,
			"dst":   e.Dst,
			"type":  string(e.Kind),
			"attrs": attrsOrEmpty(e.Attrs),
		}
	}

	var bbox any
	if x.BoundingBox != nil {
		bbox = x.BoundingBox.Record()
	}

	v := x.Validation
	return map[string]any{
		KeySchemaVersion:  ir.SchemaVersion,
		KeyFloatPrecision: ir.FloatPrecision,
		KeyModelID:        x.ModelID,
		KeyValidation: map[string]any{
			"schema_version": v.SchemaVersion,
			"created_at":     v.CreatedAt,
			"node_count":     v.NodeCount,
			"edge_count":     v.EdgeCount,
			"warnings":       v.Warnings,
			"errors":         v.Errors,
			"is_valid":       v.IsValid(),
		},
		KeyUnits:       x.Units,
		KeyNodes:       nodes,
		KeyEdges:       edges,
		KeyProvenance:  attrsOrEmpty(x.Provenance),
		KeyBoundingBox: bbox,
	}
}

func attrsOrEmpty(rec ir.AttrRecord) ir.AttrRecord {
	if rec == nil {
		return ir.AttrRecord{}
	}
	return rec
}
