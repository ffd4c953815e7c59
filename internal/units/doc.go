// Package units converts heterogeneous source units into the canonical unit
// system of the IR.
//
// Canonical units:
//   - length: mm
//   - angle:  deg
//   - area:   mm² (derived)
//   - volume: mm³ (derived)
//   - mass:   kg
//
// Normalize rewrites every numeric attribute whose key names a physical
// quantity and records the original unit table and per-dimension conversion
// factors in provenance. An unknown or missing source unit is a *UnitError;
// values are never passed through silently.
package units
