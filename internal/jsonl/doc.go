// Package jsonl implements the canonical line-delimited wire format of the IR.
//
// Each line is one complete IR instance encoded as canonical JSON (see
// ir.MarshalCanonical) with the top-level keys bounding_box, edges,
// float_precision, model_id, nodes, provenance, schema_version, units and
// validation. Node and edge order is written as stored and never re-sorted,
// on either side of the boundary.
//
// Decoding is strict about what it understands and tolerant of what it does
// not: unknown keys are ignored, unknown schema majors are rejected with
// *SchemaVersionError, and any other malformed line yields a *DecodeError
// scoped to that line.
package jsonl
