// Package harness runs build scenarios: a raw input document, a set of
// assertions on the resulting instance, and a golden snapshot of its
// canonical shape.
//
// Every scenario run also checks the properties any build must have,
// whatever the input:
//   - decoding the record and encoding it again reproduces the same bytes
//   - the record conforms to the wire schema
//   - permuting the input's nodes and edges (one permutation per shuffle
//     seed) yields the byte-identical record
//
// Runs use a fixed clock so records are reproducible.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
