// Package pipeline turns a producer's raw, unordered graph into a validated
// IR instance.
//
// Build runs the fixed sequence normalize, canonicalize, order, validate
// exactly once. Unit errors and malformed input are fatal; everything discoverable
// about the graph's content ends up in the validation report instead.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/stepgraph/internal/ir"
	"github.com/roach88/stepgraph/internal/order"
	"github.com/roach88/stepgraph/internal/units"
	"github.com/roach88/stepgraph/internal/validate"
)

// DefaultGenerator is recorded as provenance.generator when neither the input
// nor the options name one.
const DefaultGenerator = "stepgraph"

// ErrEmptyModelID is returned for inputs without a model id.
var ErrEmptyModelID = errors.New("model_id is required")

// ErrEmptyNodeID is returned for inputs containing a node without an id.
var ErrEmptyNodeID = errors.New("node id is required")

// ErrEmptyEndpoint is returned for inputs containing an edge without a src
// or dst.
var ErrEmptyEndpoint = errors.New("edge src and dst are required")

// ErrEmptyType is returned for nodes or edges without a type.
var ErrEmptyType = errors.New("type is required")

// ErrKeyCollision is returned when two attribute keys of one record are
// equal after NFC normalization.
var ErrKeyCollision = errors.New("attribute keys collide after normalization")

// Input is the flat, unordered graph handed over by the extraction step.
type Input struct {
	ModelID string
	Nodes   []ir.Node
	Edges   []ir.Edge

	// Units is the declared source unit table, e.g. {"length": "inches"}.
	Units map[string]string

	// BoundingBox is the instance box in source units, if known.
	BoundingBox *ir.BoundingBox

	SourceFile string
	Generator  string
	Phase      string

	// Provenance holds any further producer metadata. Keys written by the
	// pipeline take precedence.
	Provenance ir.AttrRecord

	// Warnings are producer analysis warnings, appended to the report.
	Warnings []string
}

// Options configures Build.
type Options struct {
	// Clock stamps created_at. Defaults to validate.SystemClock.
	Clock validate.Clock

	// Logger receives phase logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Generator is the fallback generator identity.
	Generator string

	// Tolerance overrides the bounding box tolerance of the validator.
	Tolerance float64
}

// Build produces a normalized, ordered and validated instance from in.
// The input is not modified and shares no storage with the result.
func Build(in Input, opts Options) (*ir.IR, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	if in.ModelID == "" {
		return nil, ErrEmptyModelID
	}
	for i, n := range in.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("model %q: nodes[%d]: %w", in.ModelID, i, ErrEmptyNodeID)
		}
		if n.Kind == "" {
			return nil, fmt.Errorf("model %q: nodes[%d] (%s): %w", in.ModelID, i, n.ID, ErrEmptyType)
		}
		if key, ok := ir.KeyCollision(n.Attrs); ok {
			return nil, fmt.Errorf("model %q: nodes[%d] (%s) attrs %q: %w", in.ModelID, i, n.ID, key, ErrKeyCollision)
		}
	}
	for i, e := range in.Edges {
		if e.Src == "" || e.Dst == "" {
			return nil, fmt.Errorf("model %q: edges[%d] (%s->%s): %w", in.ModelID, i, e.Src, e.Dst, ErrEmptyEndpoint)
		}
		if e.Kind == "" {
			return nil, fmt.Errorf("model %q: edges[%d] (%s->%s): %w", in.ModelID, i, e.Src, e.Dst, ErrEmptyType)
		}
		if key, ok := ir.KeyCollision(e.Attrs); ok {
			return nil, fmt.Errorf("model %q: edges[%d] (%s->%s) attrs %q: %w", in.ModelID, i, e.Src, e.Dst, key, ErrKeyCollision)
		}
	}
	if key, ok := ir.KeyCollision(in.Provenance); ok {
		return nil, fmt.Errorf("model %q: provenance %q: %w", in.ModelID, key, ErrKeyCollision)
	}

	x := assemble(in, opts)

	log.Debug("normalizing units", "model_id", x.ModelID, "source_units", in.Units)
	conv, err := units.Normalize(x, in.Units)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", in.ModelID, err)
	}
	if !conv.Identity() {
		log.Debug("units converted", "model_id", x.ModelID, "length_factor", conv.Factors[units.Length],
			"angle_factor", conv.Factors[units.Angle], "mass_factor", conv.Factors[units.Mass])
	}

	Canonicalize(x)

	log.Debug("ordering", "model_id", x.ModelID, "nodes", len(x.Nodes), "edges", len(x.Edges))
	order.Apply(x)

	x.Validation = validate.Validate(x, validate.Options{
		Clock:         opts.Clock,
		Tolerance:     opts.Tolerance,
		ExtraWarnings: normalizeAll(in.Warnings),
	})

	log.Info("model built",
		"model_id", x.ModelID,
		"nodes", x.Validation.NodeCount,
		"edges", x.Validation.EdgeCount,
		"errors", len(x.Validation.Errors),
		"warnings", len(x.Validation.Warnings),
	)
	for _, e := range x.Validation.Errors {
		log.Debug("validation error", "model_id", x.ModelID, "error", e)
	}
	return x, nil
}

// assemble copies the input into a fresh instance and fills provenance.
func assemble(in Input, opts Options) *ir.IR {
	x := &ir.IR{
		ModelID:    in.ModelID,
		Nodes:      make([]ir.Node, len(in.Nodes)),
		Edges:      make([]ir.Edge, len(in.Edges)),
		Provenance: in.Provenance.Clone(),
	}
	for i, n := range in.Nodes {
		x.Nodes[i] = ir.Node{ID: n.ID, Kind: n.Kind, Attrs: n.Attrs.Clone()}
	}
	for i, e := range in.Edges {
		x.Edges[i] = ir.Edge{Src: e.Src, Dst: e.Dst, Kind: e.Kind, Attrs: e.Attrs.Clone()}
	}
	if in.BoundingBox != nil {
		bb := *in.BoundingBox
		x.BoundingBox = &bb
	}

	if x.Provenance == nil {
		x.Provenance = ir.AttrRecord{}
	}
	gen := in.Generator
	if gen == "" {
		gen = opts.Generator
	}
	if gen == "" {
		gen = DefaultGenerator
	}
	x.Provenance[ir.ProvenanceGenerator] = ir.S(gen)
	if in.SourceFile != "" {
		x.Provenance[ir.ProvenanceSourceFile] = ir.S(in.SourceFile)
	}
	if in.Phase != "" {
		x.Provenance[ir.ProvenancePhase] = ir.S(in.Phase)
	}
	return x
}

// Canonicalize puts every value of x into wire form: numbers rounded to the
// wire precision and strings NFC normalized, so the in-memory instance equals
// its own decoded encoding.
func Canonicalize(x *ir.IR) {
	x.ModelID = ir.NormalizeString(x.ModelID)
	for i := range x.Nodes {
		n := &x.Nodes[i]
		n.ID = ir.NormalizeString(n.ID)
		n.Kind = ir.NodeKind(ir.NormalizeString(string(n.Kind)))
		n.Attrs = ir.CanonicalizeRecord(n.Attrs)
	}
	for i := range x.Edges {
		e := &x.Edges[i]
		e.Src = ir.NormalizeString(e.Src)
		e.Dst = ir.NormalizeString(e.Dst)
		e.Kind = ir.EdgeKind(ir.NormalizeString(string(e.Kind)))
		e.Attrs = ir.CanonicalizeRecord(e.Attrs)
	}
	x.Provenance = ir.CanonicalizeRecord(x.Provenance)
	if x.BoundingBox != nil {
		bb := x.BoundingBox.Quantized()
		x.BoundingBox = &bb
	}
}

func normalizeAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = ir.NormalizeString(s)
	}
	return out
}
