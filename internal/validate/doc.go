// Package validate checks an IR instance for structural and semantic
// soundness and produces its validation report.
//
// Findings are data, not failures: Validate always returns an
// ir.ValidationInfo, even for a badly broken graph, and never mutates the
// instance. Structural problems become errors (E2xx) and make the instance
// invalid; modeling-quality problems become warnings (W3xx) and never do.
//
// Error codes:
//   - E201 duplicate node id
//   - E202 edge src does not reference a node
//   - E203 edge dst does not reference a node
//   - E204 self-loop edge
//   - E205 graph is not weakly connected
//   - E206 unknown node type
//   - E207 unknown edge type
//
// Warning codes:
//   - W301 Assembly without an outgoing contains edge
//   - W302 Part without a geometry child
//   - W303 conflicting unit declarations in one scope
//   - W304 parent bounding box does not contain its children
//   - W305 instance bounding box does not contain a node
//   - W399 producer warning passed through
package validate
