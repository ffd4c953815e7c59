package ir

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Family groups node kinds. The numeric value is the canonical ordering rank.
type Family int

const (
	FamilyHierarchy Family = iota // Assembly, Part, Product
	FamilyTopology                // B-rep topology
	FamilyMetadata                // Unit, CoordinateSystem
	FamilyPMI                     // Product manufacturing information
	FamilyProperty                // Validation, material, finish
)

// Rank returns the canonical ordering rank of the family.
func (f Family) Rank() int {
	return int(f)
}

func (f Family) String() string {
	switch f {
	case FamilyHierarchy:
		return "hierarchy"
	case FamilyTopology:
		return "topology"
	case FamilyMetadata:
		return "metadata"
	case FamilyPMI:
		return "pmi"
	case FamilyProperty:
		return "property"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// NodeKind is the closed set of node types.
type NodeKind string

const (
	KindAssembly NodeKind = "Assembly"
	KindPart     NodeKind = "Part"
	KindProduct  NodeKind = "Product"

	KindManifoldSolidBrep NodeKind = "ManifoldSolidBrep"
	KindAdvancedFace      NodeKind = "AdvancedFace"
	KindEdgeCurve         NodeKind = "EdgeCurve"
	KindVertexPoint       NodeKind = "VertexPoint"

	KindUnit             NodeKind = "Unit"
	KindCoordinateSystem NodeKind = "CoordinateSystem"

	KindPMIEntity             NodeKind = "PMI_Entity"
	KindGeometricTolerance    NodeKind = "GeometricTolerance"
	KindDimensioningTolerance NodeKind = "DimensioningTolerance"

	KindValidationProperty NodeKind = "ValidationProperty"
	KindMaterialProperty   NodeKind = "MaterialProperty"
	KindSurfaceFinish      NodeKind = "SurfaceFinish"
)

var nodeFamilies = map[NodeKind]Family{
	KindAssembly:              FamilyHierarchy,
	KindPart:                  FamilyHierarchy,
	KindProduct:               FamilyHierarchy,
	KindManifoldSolidBrep:     FamilyTopology,
	KindAdvancedFace:          FamilyTopology,
	KindEdgeCurve:             FamilyTopology,
	KindVertexPoint:           FamilyTopology,
	KindUnit:                  FamilyMetadata,
	KindCoordinateSystem:      FamilyMetadata,
	KindPMIEntity:             FamilyPMI,
	KindGeometricTolerance:    FamilyPMI,
	KindDimensioningTolerance: FamilyPMI,
	KindValidationProperty:    FamilyProperty,
	KindMaterialProperty:      FamilyProperty,
	KindSurfaceFinish:         FamilyProperty,
}

// Valid reports whether k is a known node kind.
func (k NodeKind) Valid() bool {
	_, ok := nodeFamilies[k]
	return ok
}

// Family returns the family of k. Unknown kinds report ok == false.
func (k NodeKind) Family() (Family, bool) {
	f, ok := nodeFamilies[k]
	return f, ok
}

// IsGeometry reports whether k is a B-rep topology kind.
func (k NodeKind) IsGeometry() bool {
	f, ok := nodeFamilies[k]
	return ok && f == FamilyTopology
}

// IsContainer reports whether k is a hierarchical container kind.
func (k NodeKind) IsContainer() bool {
	f, ok := nodeFamilies[k]
	return ok && f == FamilyHierarchy
}

// ParseNodeKind converts a string into a NodeKind, rejecting unknown kinds.
func ParseNodeKind(s string) (NodeKind, error) {
	k := NodeKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown node type %q", s)
	}
	return k, nil
}

// NodeKinds returns every node kind in canonical order (family rank, then name).
func NodeKinds() []NodeKind {
	kinds := make([]NodeKind, 0, len(nodeFamilies))
	for k := range nodeFamilies {
		kinds = append(kinds, k)
	}
	slices.SortFunc(kinds, func(a, b NodeKind) int {
		if d := nodeFamilies[a].Rank() - nodeFamilies[b].Rank(); d != 0 {
			return d
		}
		return strings.Compare(string(a), string(b))
	})
	return kinds
}

// EdgeFamily groups edge kinds.
type EdgeFamily int

const (
	EdgeFamilyHierarchy EdgeFamily = iota // contains, part_of, instance_of
	EdgeFamilyTopology                    // bounded_by, adjacent_to, shares_*
	EdgeFamilySemantic                    // has_*, references
	EdgeFamilyUnits                       // measured_in, coordinate_system
)

// EdgeKind is the closed set of edge types.
type EdgeKind string

const (
	EdgeContains   EdgeKind = "contains"
	EdgePartOf     EdgeKind = "part_of"
	EdgeInstanceOf EdgeKind = "instance_of"

	EdgeBoundedBy    EdgeKind = "bounded_by"
	EdgeAdjacentTo   EdgeKind = "adjacent_to"
	EdgeSharesEdge   EdgeKind = "shares_edge"
	EdgeSharesVertex EdgeKind = "shares_vertex"

	EdgeHasPMI       EdgeKind = "has_pmi"
	EdgeHasMaterial  EdgeKind = "has_material"
	EdgeHasTolerance EdgeKind = "has_tolerance"
	EdgeReferences   EdgeKind = "references"

	EdgeMeasuredIn       EdgeKind = "measured_in"
	EdgeCoordinateSystem EdgeKind = "coordinate_system"
)

var edgeFamilies = map[EdgeKind]EdgeFamily{
	EdgeContains:         EdgeFamilyHierarchy,
	EdgePartOf:           EdgeFamilyHierarchy,
	EdgeInstanceOf:       EdgeFamilyHierarchy,
	EdgeBoundedBy:        EdgeFamilyTopology,
	EdgeAdjacentTo:       EdgeFamilyTopology,
	EdgeSharesEdge:       EdgeFamilyTopology,
	EdgeSharesVertex:     EdgeFamilyTopology,
	EdgeHasPMI:           EdgeFamilySemantic,
	EdgeHasMaterial:      EdgeFamilySemantic,
	EdgeHasTolerance:     EdgeFamilySemantic,
	EdgeReferences:       EdgeFamilySemantic,
	EdgeMeasuredIn:       EdgeFamilyUnits,
	EdgeCoordinateSystem: EdgeFamilyUnits,
}

// Valid reports whether k is a known edge kind.
func (k EdgeKind) Valid() bool {
	_, ok := edgeFamilies[k]
	return ok
}

// Family returns the family of k. Unknown kinds report ok == false.
func (k EdgeKind) Family() (EdgeFamily, bool) {
	f, ok := edgeFamilies[k]
	return f, ok
}

// ParseEdgeKind converts a string into an EdgeKind, rejecting unknown kinds.
func ParseEdgeKind(s string) (EdgeKind, error) {
	k := EdgeKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown edge type %q", s)
	}
	return k, nil
}

// EdgeKinds returns every edge kind sorted by name.
func EdgeKinds() []EdgeKind {
	kinds := make([]EdgeKind, 0, len(edgeFamilies))
	for k := range edgeFamilies {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Node is a geometric or semantic entity in the graph.
type Node struct {
	ID    string     `json:"id"`
	Kind  NodeKind   `json:"type"`
	Attrs AttrRecord `json:"attrs"`
}

// Edge is a directed relationship between two nodes.
type Edge struct {
	Src   string     `json:"src"`
	Dst   string     `json:"dst"`
	Kind  EdgeKind   `json:"type"`
	Attrs AttrRecord `json:"attrs"`
}

// ValidationInfo is the machine-readable validation report of an IR instance.
type ValidationInfo struct {
	SchemaVersion string    `json:"schema_version"`
	CreatedAt     time.Time `json:"created_at"` // UTC, microsecond precision
	NodeCount     int       `json:"node_count"`
	EdgeCount     int       `json:"edge_count"`
	Warnings      []string  `json:"warnings"`
	Errors        []string  `json:"errors"`
}

// IsValid reports whether the report has no errors. Warnings never count.
func (v ValidationInfo) IsValid() bool {
	return len(v.Errors) == 0
}

// IR is the root aggregate of the intermediate representation.
// An IR exclusively owns its nodes and edges.
type IR struct {
	ModelID     string            `json:"model_id"`
	Nodes       []Node            `json:"nodes"`
	Edges       []Edge            `json:"edges"`
	Units       map[string]string `json:"units"`
	Provenance  AttrRecord        `json:"provenance"`
	Validation  ValidationInfo    `json:"validation"`
	BoundingBox *BoundingBox      `json:"bounding_box"`
}

// Provenance keys written by the pipeline.
const (
	ProvenanceSourceFile        = "source_file"
	ProvenanceGenerator         = "generator"
	ProvenancePhase             = "phase"
	ProvenanceOriginalUnits     = "original_units"
	ProvenanceConversionFactors = "conversion_factors"
)

// NodeByID returns the first node with the given id.
func (x *IR) NodeByID(id string) (*Node, bool) {
	for i := range x.Nodes {
		if x.Nodes[i].ID == id {
			return &x.Nodes[i], true
		}
	}
	return nil, false
}

// NodesByKind returns all nodes of the given kind in instance order.
func (x *IR) NodesByKind(kind NodeKind) []Node {
	var out []Node
	for _, n := range x.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// EdgesFrom returns all edges originating at id.
func (x *IR) EdgesFrom(id string) []Edge {
	var out []Edge
	for _, e := range x.Edges {
		if e.Src == id {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns all edges terminating at id.
func (x *IR) EdgesTo(id string) []Edge {
	var out []Edge
	for _, e := range x.Edges {
		if e.Dst == id {
			out = append(out, e)
		}
	}
	return out
}

// ValidationStale reports whether the collections changed size since the
// validation report was produced.
func (x *IR) ValidationStale() bool {
	return x.Validation.NodeCount != len(x.Nodes) || x.Validation.EdgeCount != len(x.Edges)
}

// Clone returns a deep copy of the instance. No node, edge or attribute
// storage is shared with the original.
func (x *IR) Clone() *IR {
	out := &IR{
		ModelID:    x.ModelID,
		Nodes:      make([]Node, len(x.Nodes)),
		Edges:      make([]Edge, len(x.Edges)),
		Provenance: x.Provenance.Clone(),
		Validation: ValidationInfo{
			SchemaVersion: x.Validation.SchemaVersion,
			CreatedAt:     x.Validation.CreatedAt,
			NodeCount:     x.Validation.NodeCount,
			EdgeCount:     x.Validation.EdgeCount,
			Warnings:      slices.Clone(x.Validation.Warnings),
			Errors:        slices.Clone(x.Validation.Errors),
		},
	}
	for i, n := range x.Nodes {
		out.Nodes[i] = Node{ID: n.ID, Kind: n.Kind, Attrs: n.Attrs.Clone()}
	}
	for i, e := range x.Edges {
		out.Edges[i] = Edge{Src: e.Src, Dst: e.Dst, Kind: e.Kind, Attrs: e.Attrs.Clone()}
	}
	if x.Units != nil {
		out.Units = make(map[string]string, len(x.Units))
		for k, v := range x.Units {
			out.Units[k] = v
		}
	}
	if x.BoundingBox != nil {
		bb := *x.BoundingBox
		out.BoundingBox = &bb
	}
	return out
}

// NewAssemblyNode creates an assembly node with the conventional attributes.
func NewAssemblyNode(id, name string) Node {
	return Node{
		ID:   id,
		Kind: KindAssembly,
		Attrs: NewRecord(
			P("name", S(name)),
			P("description", S("Assembly: "+name)),
		),
	}
}

// NewPartNode creates a part node with the conventional attributes.
func NewPartNode(id, name string) Node {
	return Node{
		ID:   id,
		Kind: KindPart,
		Attrs: NewRecord(
			P("name", S(name)),
			P("description", S("Part: "+name)),
		),
	}
}

// NewUnitNode creates a unit declaration node, e.g. ("length", "mm").
func NewUnitNode(id, unitType, unit string) Node {
	return Node{
		ID:   id,
		Kind: KindUnit,
		Attrs: NewRecord(
			P("unit_type", S(unitType)),
			P("value", S(unit)),
		),
	}
}
