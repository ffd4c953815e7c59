package jsonl

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/roach88/stepgraph/internal/ir"
	"github.com/roach88/stepgraph/internal/validate"
)

// DecodeOptions controls decoding.
type DecodeOptions struct {
	// Revalidate replaces the stored validation report with a fresh one.
	// Producer warnings (W399) from the stored report are carried over.
	Revalidate bool

	// Clock stamps a fresh report. Defaults to validate.SystemClock.
	Clock validate.Clock
}

type wireNode struct {
	ID    string        `json:"id"`
	Type  string        `json:"type"`
	Attrs ir.AttrRecord `json:"attrs"`
}

type wireEdge struct {
	Src   string        `json:"src"`
	Dst   string        `json:"dst"`
	Type  string        `json:"type"`
	Attrs ir.AttrRecord `json:"attrs"`
}

type wireValidation struct {
	SchemaVersion string   `json:"schema_version"`
	CreatedAt     string   `json:"created_at"`
	NodeCount     *int     `json:"node_count"`
	EdgeCount     *int     `json:"edge_count"`
	Warnings      []string `json:"warnings"`
	Errors        []string `json:"errors"`
	IsValid       *bool    `json:"is_valid"`
}

// Decode parses one line. Persisted order is kept as-is and the stored
// validation report is returned without re-validating.
func Decode(line []byte) (*ir.IR, error) {
	return DecodeWith(line, DecodeOptions{})
}

// DecodeWith parses one line with options.
func DecodeWith(line []byte, opts DecodeOptions) (*ir.IR, error) {
	line = bytes.TrimRight(line, "\r\n")

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, decodeErrorf("malformed record: %w", err)
	}
	if raw == nil {
		return nil, decodeErrorf("record is null")
	}

	var version string
	if err := json.Unmarshal(raw[KeySchemaVersion], &version); err != nil || version == "" {
		return nil, decodeErrorf("missing or invalid %s", KeySchemaVersion)
	}
	if err := CheckVersion(version); err != nil {
		return nil, err
	}

	for _, k := range requiredKeys {
		if _, ok := raw[k]; !ok {
			return nil, decodeErrorf("missing key %q", k)
		}
	}

	if p, ok := raw[KeyFloatPrecision]; ok {
		var prec int
		if err := json.Unmarshal(p, &prec); err != nil {
			return nil, decodeErrorf("%s: %w", KeyFloatPrecision, err)
		}
		if prec != ir.FloatPrecision {
			return nil, decodeErrorf("%s %d differs from reader precision %d", KeyFloatPrecision, prec, ir.FloatPrecision)
		}
	}

	x := &ir.IR{}
	if err := json.Unmarshal(raw[KeyModelID], &x.ModelID); err != nil {
		return nil, decodeErrorf("%s: %w", KeyModelID, err)
	}
	if err := decodeNodes(raw[KeyNodes], x); err != nil {
		return nil, err
	}
	if err := decodeEdges(raw[KeyEdges], x); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw[KeyUnits], &x.Units); err != nil {
		return nil, decodeErrorf("%s: %w", KeyUnits, err)
	}
	if x.Units == nil {
		x.Units = map[string]string{}
	}
	if err := json.Unmarshal(raw[KeyProvenance], &x.Provenance); err != nil {
		return nil, decodeErrorf("%s: %w", KeyProvenance, err)
	}
	if x.Provenance == nil {
		x.Provenance = ir.AttrRecord{}
	}
	if err := decodeBoundingBox(raw[KeyBoundingBox], x); err != nil {
		return nil, err
	}
	if err := decodeValidation(raw[KeyValidation], x); err != nil {
		return nil, err
	}

	if opts.Revalidate {
		x.Validation = validate.Validate(x, validate.Options{
			Clock:         opts.Clock,
			ExtraWarnings: producerWarnings(x.Validation.Warnings),
		})
	}
	return x, nil
}

// CheckVersion accepts any version with the reader's major component.
func CheckVersion(version string) error {
	v := "v" + version
	if !semver.IsValid(v) || semver.Major(v) != semver.Major("v"+ir.SchemaVersion) {
		return &SchemaVersionError{Found: version, Supported: semver.Major("v"+ir.SchemaVersion) + ".x.y"}
	}
	return nil
}

func decodeNodes(data json.RawMessage, x *ir.IR) error {
	var nodes []wireNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return decodeErrorf("%s: %w", KeyNodes, err)
	}
	x.Nodes = make([]ir.Node, len(nodes))
	for i, n := range nodes {
		if n.ID == "" {
			return decodeErrorf("nodes[%d]: empty id", i)
		}
		if n.Type == "" {
			return decodeErrorf("nodes[%d]: empty type", i)
		}
		// Unknown types are kept; the stored report already carries E206.
		x.Nodes[i] = ir.Node{ID: n.ID, Kind: ir.NodeKind(n.Type), Attrs: attrsOrEmpty(n.Attrs)}
	}
	return nil
}

func decodeEdges(data json.RawMessage, x *ir.IR) error {
	var edges []wireEdge
	if err := json.Unmarshal(data, &edges); err != nil {
		return decodeErrorf("%s: %w", KeyEdges, err)
	}
	x.Edges = make([]ir.Edge, len(edges))
	for i, e := range edges {
		if e.Src == "" || e.Dst == "" {
			return decodeErrorf("edges[%d]: empty src or dst", i)
		}
		if e.Type == "" {
			return decodeErrorf("edges[%d]: empty type", i)
		}
		x.Edges[i] = ir.Edge{Src: e.Src, Dst: e.Dst, Kind: ir.EdgeKind(e.Type), Attrs: attrsOrEmpty(e.Attrs)}
	}
	return nil
}

func decodeBoundingBox(data json.RawMessage, x *ir.IR) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	var rec ir.AttrRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return decodeErrorf("%s: %w", KeyBoundingBox, err)
	}
	bb, ok := ir.BoundingBoxFromRecord(rec)
	if !ok {
		return decodeErrorf("%s: six numeric coordinates required", KeyBoundingBox)
	}
	x.BoundingBox = &bb
	return nil
}

func decodeValidation(data json.RawMessage, x *ir.IR) error {
	var v wireValidation
	if err := json.Unmarshal(data, &v); err != nil {
		return decodeErrorf("%s: %w", KeyValidation, err)
	}
	if v.NodeCount == nil || v.EdgeCount == nil || v.IsValid == nil {
		return decodeErrorf("%s: node_count, edge_count and is_valid are required", KeyValidation)
	}
	createdAt, err := ir.ParseTimestamp(v.CreatedAt)
	if err != nil {
		return decodeErrorf("%s.created_at: %w", KeyValidation, err)
	}
	if v.Warnings == nil {
		v.Warnings = []string{}
	}
	if v.Errors == nil {
		v.Errors = []string{}
	}
	if *v.IsValid != (len(v.Errors) == 0) {
		return decodeErrorf("%s: is_valid=%t contradicts %d errors", KeyValidation, *v.IsValid, len(v.Errors))
	}
	x.Validation = ir.ValidationInfo{
		SchemaVersion: v.SchemaVersion,
		CreatedAt:     createdAt,
		NodeCount:     *v.NodeCount,
		EdgeCount:     *v.EdgeCount,
		Warnings:      v.Warnings,
		Errors:        v.Errors,
	}
	return nil
}

// producerWarnings extracts pass-through producer warnings from a report.
func producerWarnings(warnings []string) []string {
	prefix := "[" + validate.WarnProducer + "] "
	var out []string
	for _, w := range warnings {
		if msg, ok := strings.CutPrefix(w, prefix); ok {
			out = append(out, msg)
		}
	}
	return out
}

// withLine attaches a 1-based line number to a line-scoped error.
func withLine(err error, line int) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return &DecodeError{Line: line, Err: de.Err}
	}
	var se *SchemaVersionError
	if errors.As(err, &se) {
		return &SchemaVersionError{Line: line, Found: se.Found, Supported: se.Supported}
	}
	return &DecodeError{Line: line, Err: err}
}
