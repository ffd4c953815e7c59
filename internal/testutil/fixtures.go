package testutil

import (
	"math/rand/v2"

	"github.com/roach88/stepgraph/internal/ir"
)

// BracketNodes returns the nodes of a small, valid single-part model in
// canonical order: one assembly, one part, a solid with two faces, a length
// unit and a material.
func BracketNodes() []ir.Node {
	return []ir.Node{
		ir.NewAssemblyNode("asm-root", "Bracket"),
		{
			ID:   "part-plate",
			Kind: ir.KindPart,
			Attrs: ir.AttrRecord{
				"name":      ir.S("Plate"),
				"thickness": ir.N(0.25),
				"bbox":      ir.BoundingBox{MaxX: 4, MaxY: 2, MaxZ: 0.25}.Record(),
			},
		},
		{ID: "face-1", Kind: ir.KindAdvancedFace, Attrs: ir.AttrRecord{"area": ir.N(8), "surface_type": ir.S("plane")}},
		{ID: "face-2", Kind: ir.KindAdvancedFace, Attrs: ir.AttrRecord{"area": ir.N(1), "surface_type": ir.S("plane")}},
		{ID: "solid-1", Kind: ir.KindManifoldSolidBrep, Attrs: ir.AttrRecord{"volume": ir.N(2)}},
		ir.NewUnitNode("unit-length", "length", "inches"),
		{ID: "mat-1", Kind: ir.KindMaterialProperty, Attrs: ir.AttrRecord{"name": ir.S("6061-T6"), "density": ir.N(2.7)}},
	}
}

// BracketEdges returns the edges of the bracket model in canonical order.
func BracketEdges() []ir.Edge {
	return []ir.Edge{
		{Src: "asm-root", Dst: "part-plate", Kind: ir.EdgeContains, Attrs: ir.AttrRecord{}},
		{Src: "part-plate", Dst: "mat-1", Kind: ir.EdgeHasMaterial, Attrs: ir.AttrRecord{}},
		{Src: "part-plate", Dst: "solid-1", Kind: ir.EdgeContains, Attrs: ir.AttrRecord{}},
		{Src: "part-plate", Dst: "unit-length", Kind: ir.EdgeMeasuredIn, Attrs: ir.AttrRecord{}},
		{Src: "solid-1", Dst: "face-1", Kind: ir.EdgeBoundedBy, Attrs: ir.AttrRecord{}},
		{Src: "solid-1", Dst: "face-2", Kind: ir.EdgeBoundedBy, Attrs: ir.AttrRecord{}},
	}
}

// BracketUnits is the declared source unit table of the bracket model.
func BracketUnits() map[string]string {
	return map[string]string{"length": "inches"}
}

// Shuffled returns a copy of nodes and edges in a pseudo-random order fixed
// by seed.
func Shuffled(nodes []ir.Node, edges []ir.Edge, seed uint64) ([]ir.Node, []ir.Edge) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	n := append([]ir.Node(nil), nodes...)
	e := append([]ir.Edge(nil), edges...)
	rng.Shuffle(len(n), func(i, j int) { n[i], n[j] = n[j], n[i] })
	rng.Shuffle(len(e), func(i, j int) { e[i], e[j] = e[j], e[i] })
	return n, e
}
