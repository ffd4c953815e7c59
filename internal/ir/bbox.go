package ir

import "math"

// BoundingBox is an axis-aligned box in canonical length units.
type BoundingBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MinZ float64 `json:"min_z"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
	MaxZ float64 `json:"max_z"`
}

// bboxKeys are the record keys of a bounding box, in wire order.
var bboxKeys = [6]string{"max_x", "max_y", "max_z", "min_x", "min_y", "min_z"}

// Volume returns the box volume.
func (b BoundingBox) Volume() float64 {
	return (b.MaxX - b.MinX) * (b.MaxY - b.MinY) * (b.MaxZ - b.MinZ)
}

// Center returns the box center point.
func (b BoundingBox) Center() [3]float64 {
	return [3]float64{
		(b.MinX + b.MaxX) / 2,
		(b.MinY + b.MaxY) / 2,
		(b.MinZ + b.MaxZ) / 2,
	}
}

// Contains reports whether o lies inside b, allowing tol on every face.
func (b BoundingBox) Contains(o BoundingBox, tol float64) bool {
	return o.MinX >= b.MinX-tol && o.MinY >= b.MinY-tol && o.MinZ >= b.MinZ-tol &&
		o.MaxX <= b.MaxX+tol && o.MaxY <= b.MaxY+tol && o.MaxZ <= b.MaxZ+tol
}

// Union returns the smallest box containing both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MinZ: math.Min(b.MinZ, o.MinZ),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
		MaxZ: math.Max(b.MaxZ, o.MaxZ),
	}
}

// Scale returns b with every coordinate multiplied by f.
func (b BoundingBox) Scale(f float64) BoundingBox {
	return BoundingBox{
		MinX: b.MinX * f, MinY: b.MinY * f, MinZ: b.MinZ * f,
		MaxX: b.MaxX * f, MaxY: b.MaxY * f, MaxZ: b.MaxZ * f,
	}
}

// Quantized returns b with every coordinate rounded by RoundFloat.
func (b BoundingBox) Quantized() BoundingBox {
	return BoundingBox{
		MinX: RoundFloat(b.MinX), MinY: RoundFloat(b.MinY), MinZ: RoundFloat(b.MinZ),
		MaxX: RoundFloat(b.MaxX), MaxY: RoundFloat(b.MaxY), MaxZ: RoundFloat(b.MaxZ),
	}
}

// Record returns the box as an attribute record.
func (b BoundingBox) Record() AttrRecord {
	return NewRecord(
		P("min_x", N(b.MinX)), P("min_y", N(b.MinY)), P("min_z", N(b.MinZ)),
		P("max_x", N(b.MaxX)), P("max_y", N(b.MaxY)), P("max_z", N(b.MaxZ)),
	)
}

// BoundingBoxFromRecord reads a box from an attribute record.
// All six coordinates must be present as numbers.
func BoundingBoxFromRecord(rec AttrRecord) (BoundingBox, bool) {
	var vals [6]float64
	for i, k := range bboxKeys {
		n, ok := rec.Number(k)
		if !ok {
			return BoundingBox{}, false
		}
		vals[i] = n
	}
	return BoundingBox{
		MaxX: vals[0], MaxY: vals[1], MaxZ: vals[2],
		MinX: vals[3], MinY: vals[4], MinZ: vals[5],
	}, true
}
