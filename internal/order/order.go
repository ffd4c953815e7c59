// Package order imposes the canonical total order on IR nodes and edges.
//
// Nodes sort by family rank (hierarchy 0, topology 1, metadata 2, PMI 3,
// property 4) then by id. Edges sort by (src, dst, type). All string
// comparison is byte-wise. Sorting is stable, so duplicate edges keep their
// insertion order.
package order

import (
	"cmp"
	"slices"
	"strings"

	"github.com/roach88/stepgraph/internal/ir"
)

// unknownRank places nodes of unknown kind after every known family.
const unknownRank = 5

// Rank returns the canonical family rank of a node kind.
func Rank(k ir.NodeKind) int {
	f, ok := k.Family()
	if !ok {
		return unknownRank
	}
	return f.Rank()
}

// CompareNodes orders two nodes canonically.
func CompareNodes(a, b ir.Node) int {
	if c := cmp.Compare(Rank(a.Kind), Rank(b.Kind)); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// CompareEdges orders two edges canonically.
func CompareEdges(a, b ir.Edge) int {
	if c := strings.Compare(a.Src, b.Src); c != 0 {
		return c
	}
	if c := strings.Compare(a.Dst, b.Dst); c != 0 {
		return c
	}
	return strings.Compare(string(a.Kind), string(b.Kind))
}

// Nodes sorts nodes in place.
func Nodes(nodes []ir.Node) {
	slices.SortStableFunc(nodes, CompareNodes)
}

// Edges sorts edges in place.
func Edges(edges []ir.Edge) {
	slices.SortStableFunc(edges, CompareEdges)
}

// Apply orders both collections of x. The cached validation report is stale
// afterwards until the instance is validated again.
func Apply(x *ir.IR) {
	Nodes(x.Nodes)
	Edges(x.Edges)
}

// IsOrdered reports whether x is already in canonical order.
func IsOrdered(x *ir.IR) bool {
	return slices.IsSortedFunc(x.Nodes, CompareNodes) && slices.IsSortedFunc(x.Edges, CompareEdges)
}
