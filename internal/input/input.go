// Package input loads the raw graph document handed over by the extraction
// step and converts it into a pipeline.Input.
//
// Documents are YAML or JSON (JSON is read as YAML). Unknown fields are
// rejected so that typos fail loudly instead of silently dropping data.
package input

import (
	"bytes"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/roach88/stepgraph/internal/ir"
	"github.com/roach88/stepgraph/internal/pipeline"
)

// Namespace is the UUID namespace for derived model ids.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/roach88/stepgraph/model"))

// Document is the on-disk form of a producer's raw graph.
type Document struct {
	// ModelID identifies the source model. Derived when empty.
	ModelID string `yaml:"model_id"`

	SourceFile string `yaml:"source_file,omitempty"`
	Generator  string `yaml:"generator,omitempty"`
	Phase      string `yaml:"phase,omitempty"`

	// Units is the declared source unit table.
	Units map[string]string `yaml:"units"`

	// BoundingBox is the instance box in source units.
	BoundingBox *BoundingBox `yaml:"bounding_box,omitempty"`

	Provenance map[string]any `yaml:"provenance,omitempty"`
	Warnings   []string       `yaml:"warnings,omitempty"`

	Nodes []NodeDoc `yaml:"nodes"`
	Edges []EdgeDoc `yaml:"edges"`
}

// BoundingBox is the document form of ir.BoundingBox.
type BoundingBox struct {
	MinX float64 `yaml:"min_x"`
	MinY float64 `yaml:"min_y"`
	MinZ float64 `yaml:"min_z"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
	MaxZ float64 `yaml:"max_z"`
}

// NodeDoc is one raw node.
type NodeDoc struct {
	ID    string         `yaml:"id"`
	Type  string         `yaml:"type"`
	Attrs map[string]any `yaml:"attrs,omitempty"`
}

// EdgeDoc is one raw edge.
type EdgeDoc struct {
	Src   string         `yaml:"src"`
	Dst   string         `yaml:"dst"`
	Type  string         `yaml:"type"`
	Attrs map[string]any `yaml:"attrs,omitempty"`
}

// Load reads and converts the document at path.
func Load(path string) (pipeline.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("failed to read input file: %w", err)
	}
	return Parse(data)
}

// Parse converts a document. Unknown kinds, null attribute values and
// non-numeric sequences are rejected.
func Parse(data []byte) (pipeline.Input, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&doc); err != nil {
		return pipeline.Input{}, fmt.Errorf("failed to parse input: %w", err)
	}

	if doc.ModelID == "" {
		doc.ModelID = DeriveModelID(doc.SourceFile, data)
	}
	in, err := doc.Input()
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("invalid input: %w", err)
	}
	return in, nil
}

// DeriveModelID returns a name-based (v5) UUID for a model. The source file
// identity is used when known, the raw document otherwise, so the same input
// always yields the same id.
func DeriveModelID(sourceFile string, data []byte) string {
	if sourceFile != "" {
		return uuid.NewSHA1(Namespace, []byte(sourceFile)).String()
	}
	return uuid.NewSHA1(Namespace, data).String()
}

// Input converts the document into a pipeline input.
func (d *Document) Input() (pipeline.Input, error) {
	in := pipeline.Input{
		ModelID:    d.ModelID,
		Units:      d.Units,
		SourceFile: d.SourceFile,
		Generator:  d.Generator,
		Phase:      d.Phase,
		Warnings:   d.Warnings,
		Nodes:      make([]ir.Node, len(d.Nodes)),
		Edges:      make([]ir.Edge, len(d.Edges)),
	}

	if d.BoundingBox != nil {
		in.BoundingBox = &ir.BoundingBox{
			MinX: d.BoundingBox.MinX, MinY: d.BoundingBox.MinY, MinZ: d.BoundingBox.MinZ,
			MaxX: d.BoundingBox.MaxX, MaxY: d.BoundingBox.MaxY, MaxZ: d.BoundingBox.MaxZ,
		}
	}
	if d.Provenance != nil {
		prov, err := ir.RecordFromMap(d.Provenance)
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("provenance: %w", err)
		}
		in.Provenance = prov
	}

	for i, n := range d.Nodes {
		if n.ID == "" {
			return pipeline.Input{}, fmt.Errorf("nodes[%d]: id is required", i)
		}
		kind, err := ir.ParseNodeKind(n.Type)
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("nodes[%d] (%s): %w", i, n.ID, err)
		}
		attrs, err := ir.RecordFromMap(n.Attrs)
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("nodes[%d] (%s) attrs: %w", i, n.ID, err)
		}
		in.Nodes[i] = ir.Node{ID: n.ID, Kind: kind, Attrs: attrs}
	}

	for i, e := range d.Edges {
		kind, err := ir.ParseEdgeKind(e.Type)
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("edges[%d] (%s->%s): %w", i, e.Src, e.Dst, err)
		}
		attrs, err := ir.RecordFromMap(e.Attrs)
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("edges[%d] (%s->%s) attrs: %w", i, e.Src, e.Dst, err)
		}
		in.Edges[i] = ir.Edge{Src: e.Src, Dst: e.Dst, Kind: kind, Attrs: attrs}
	}
	return in, nil
}
