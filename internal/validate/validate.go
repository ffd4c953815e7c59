package validate

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/roach88/stepgraph/internal/ir"
	"github.com/roach88/stepgraph/internal/units"
)

// DefaultTolerance is the bounding box containment tolerance in canonical
// length units.
const DefaultTolerance = 1e-6

// maxListed bounds the number of component roots named in E205.
const maxListed = 5

// Clock supplies the report timestamp.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Options configures a validation run.
type Options struct {
	// Clock stamps created_at. Defaults to SystemClock.
	Clock Clock

	// Tolerance is used by the bounding box checks. Defaults to DefaultTolerance.
	Tolerance float64

	// ExtraWarnings are appended verbatim after the validator's own warnings,
	// e.g. analysis warnings reported by the producer.
	ExtraWarnings []string
}

// Result is the full outcome of a validation run.
type Result struct {
	Errors   []Issue
	Warnings []Issue
}

// Validate checks x and returns its report. x is not modified.
func Validate(x *ir.IR, opts Options) ir.ValidationInfo {
	res := Check(x, opts.tolerance())
	warnings := render(res.Warnings)
	for _, w := range opts.ExtraWarnings {
		warnings = append(warnings, Issue{Code: WarnProducer, Message: w}.String())
	}

	clock := opts.Clock
	if clock == nil {
		clock = SystemClock
	}
	return ir.ValidationInfo{
		SchemaVersion: ir.SchemaVersion,
		CreatedAt:     clock.Now().UTC().Truncate(time.Microsecond),
		NodeCount:     len(x.Nodes),
		EdgeCount:     len(x.Edges),
		Warnings:      warnings,
		Errors:        render(res.Errors),
	}
}

func (o Options) tolerance() float64 {
	if o.Tolerance > 0 {
		return o.Tolerance
	}
	return DefaultTolerance
}

// Check runs every structural and semantic check and returns the findings
// with their codes. Results are in a deterministic order for a given
// instance order.
func Check(x *ir.IR, tol float64) Result {
	c := &checker{x: x, tol: tol, byID: make(map[string]*ir.Node, len(x.Nodes))}
	c.indexNodes()
	c.checkKinds()
	c.checkEdges()
	c.checkConnectivity()
	c.checkAssemblies()
	c.checkParts()
	c.checkUnitScopes()
	c.checkBoundingBoxes()
	return Result{Errors: c.errors, Warnings: c.warnings}
}

type checker struct {
	x        *ir.IR
	tol      float64
	byID     map[string]*ir.Node
	dangling bool
	errors   []Issue
	warnings []Issue
}

func (c *checker) errorf(code, subject, format string, args ...any) {
	c.errors = append(c.errors, Issue{Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) warnf(code, subject, format string, args ...any) {
	c.warnings = append(c.warnings, Issue{Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)})
}

func nodeSubject(id string) string {
	return fmt.Sprintf("node %q", id)
}

func edgeSubject(i int, e ir.Edge) string {
	return fmt.Sprintf("edge[%d] %s -%s-> %s", i, e.Src, e.Kind, e.Dst)
}

// E201: ids are unique across the whole instance, not per type.
func (c *checker) indexNodes() {
	counts := make(map[string]int, len(c.x.Nodes))
	for i := range c.x.Nodes {
		n := &c.x.Nodes[i]
		counts[n.ID]++
		if counts[n.ID] == 1 {
			c.byID[n.ID] = n
		}
	}
	reported := make(map[string]bool)
	for _, n := range c.x.Nodes {
		if counts[n.ID] > 1 && !reported[n.ID] {
			reported[n.ID] = true
			c.errorf(ErrDuplicateNodeID, nodeSubject(n.ID), "id used by %d nodes", counts[n.ID])
		}
	}
}

// E206, E207
func (c *checker) checkKinds() {
	for _, n := range c.x.Nodes {
		if !n.Kind.Valid() {
			c.errorf(ErrUnknownNodeType, nodeSubject(n.ID), "unknown node type %q", n.Kind)
		}
	}
	for i, e := range c.x.Edges {
		if !e.Kind.Valid() {
			c.errorf(ErrUnknownEdgeType, edgeSubject(i, e), "unknown edge type %q", e.Kind)
		}
	}
}

// E202, E203, E204
func (c *checker) checkEdges() {
	for i, e := range c.x.Edges {
		if _, ok := c.byID[e.Src]; !ok {
			c.dangling = true
			c.errorf(ErrDanglingSrc, edgeSubject(i, e), "src %q does not reference an existing node", e.Src)
		}
		if _, ok := c.byID[e.Dst]; !ok {
			c.dangling = true
			c.errorf(ErrDanglingDst, edgeSubject(i, e), "dst %q does not reference an existing node", e.Dst)
		}
		if e.Src == e.Dst {
			c.errorf(ErrSelfLoop, edgeSubject(i, e), "self-loop on %q", e.Src)
		}
	}
}

// E205. Edges are treated as undirected. A graph with zero or one distinct
// node is connected. The check is skipped when dangling references exist,
// since those are already reported and make components ill-defined.
func (c *checker) checkConnectivity() {
	if c.dangling || len(c.byID) <= 1 {
		return
	}
	uf := newUnionFind(len(c.byID))
	index := make(map[string]int, len(c.byID))
	for _, n := range c.x.Nodes {
		if _, ok := index[n.ID]; !ok {
			index[n.ID] = len(index)
		}
	}
	for _, e := range c.x.Edges {
		uf.union(index[e.Src], index[e.Dst])
	}

	// Lowest id per component, for a stable message.
	roots := make(map[int]string)
	for id, i := range index {
		r := uf.find(i)
		if cur, ok := roots[r]; !ok || id < cur {
			roots[r] = id
		}
	}
	if len(roots) <= 1 {
		return
	}
	names := make([]string, 0, len(roots))
	for _, id := range roots {
		names = append(names, id)
	}
	slices.Sort(names)
	listed := strings.Join(quoteAll(names[:min(len(names), maxListed)]), ", ")
	if extra := len(names) - maxListed; extra > 0 {
		listed = fmt.Sprintf("%s and %d more", listed, extra)
	}
	c.errorf(ErrDisconnected, "graph", "not weakly connected: %d components containing %s", len(roots), listed)
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

// W301
func (c *checker) checkAssemblies() {
	hasContains := make(map[string]bool)
	for _, e := range c.x.Edges {
		if e.Kind == ir.EdgeContains {
			hasContains[e.Src] = true
		}
	}
	for _, n := range c.x.Nodes {
		if n.Kind == ir.KindAssembly && !hasContains[n.ID] {
			c.warnf(WarnAssemblyEmpty, nodeSubject(n.ID), "assembly has no outgoing contains edge")
		}
	}
}

// W302
func (c *checker) checkParts() {
	hasGeometry := make(map[string]bool)
	for _, e := range c.x.Edges {
		if dst, ok := c.byID[e.Dst]; ok && dst.Kind.IsGeometry() {
			hasGeometry[e.Src] = true
		}
	}
	for _, n := range c.x.Nodes {
		if n.Kind == ir.KindPart && !hasGeometry[n.ID] {
			c.warnf(WarnPartNoGeometry, nodeSubject(n.ID), "part has no geometry child")
		}
	}
}

// W303: a scope is the source of measured_in edges. Two Unit targets of one
// scope that declare the same unit_type with different units conflict.
func (c *checker) checkUnitScopes() {
	type key struct{ scope, unitType string }
	seen := make(map[key]string)
	reported := make(map[key]bool)
	for _, e := range c.x.Edges {
		if e.Kind != ir.EdgeMeasuredIn {
			continue
		}
		dst, ok := c.byID[e.Dst]
		if !ok || dst.Kind != ir.KindUnit {
			continue
		}
		unitType, ok1 := dst.Attrs.String("unit_type")
		value, ok2 := dst.Attrs.String("value")
		if !ok1 || !ok2 {
			continue
		}
		k := key{e.Src, unitType}
		name := units.NormalizeName(value)
		prev, ok := seen[k]
		if !ok {
			seen[k] = name
			continue
		}
		if prev != name && !reported[k] {
			reported[k] = true
			c.warnf(WarnUnitConflict, nodeSubject(e.Src), "conflicting %s units %q and %q", unitType, prev, name)
		}
	}
}

// nodeBBox reads a node's bounding box attribute, if any.
func nodeBBox(n *ir.Node) (ir.BoundingBox, bool) {
	for _, k := range []string{"bounding_box", "bbox"} {
		if rec, ok := n.Attrs.Record(k); ok {
			return ir.BoundingBoxFromRecord(rec)
		}
	}
	return ir.BoundingBox{}, false
}

// W304, W305
func (c *checker) checkBoundingBoxes() {
	children := make(map[string][]string)
	for _, e := range c.x.Edges {
		if e.Kind == ir.EdgeContains {
			children[e.Src] = append(children[e.Src], e.Dst)
		}
	}

	for i := range c.x.Nodes {
		parent := &c.x.Nodes[i]
		if c.byID[parent.ID] != parent {
			continue // duplicate, already an error
		}
		pb, ok := nodeBBox(parent)
		if !ok {
			continue
		}
		var (
			union ir.BoundingBox
			have  bool
		)
		for _, id := range children[parent.ID] {
			child, ok := c.byID[id]
			if !ok {
				continue
			}
			cb, ok := nodeBBox(child)
			if !ok {
				continue
			}
			if !have {
				union, have = cb, true
			} else {
				union = union.Union(cb)
			}
		}
		if have && !pb.Contains(union, c.tol) {
			c.warnf(WarnChildOutsideBBox, nodeSubject(parent.ID), "bounding box does not contain the union of its children")
		}
	}

	if c.x.BoundingBox == nil {
		return
	}
	for i := range c.x.Nodes {
		n := &c.x.Nodes[i]
		nb, ok := nodeBBox(n)
		if ok && !c.x.BoundingBox.Contains(nb, c.tol) {
			c.warnf(WarnNodeOutsideBBox, nodeSubject(n.ID), "bounding box extends beyond the instance bounding box")
		}
	}
}
