// Package ir provides the STEPGraph intermediate representation types.
//
// This package contains the entity model and the canonical JSON primitives
// shared by every other internal package. All other internal packages import
// ir; ir imports nothing internal.
//
// Key design constraints:
//   - Node and edge kinds are closed sets; unknown kinds are rejected
//   - Attribute values are a sealed union (string, number, bool, vector, record)
//   - Floats are quantized to FloatPrecision fractional digits on the wire
//   - Object keys are emitted in a single fixed order (RFC 8785)
//   - Timestamps are UTC with fixed microsecond precision
//   - All JSON keys use snake_case
package ir
