package units

import (
	"slices"

	"github.com/roach88/stepgraph/internal/ir"
)

// Conversion is the resolved mapping from a declared source unit table to
// the canonical units.
type Conversion struct {
	// Original is the source unit table exactly as declared.
	Original map[string]string

	// Factors holds the multiplier to the canonical unit for every dimension.
	Factors map[Dimension]float64
}

// Identity reports whether every factor is 1.
func (c Conversion) Identity() bool {
	for _, f := range c.Factors {
		if f != 1 {
			return false
		}
	}
	return true
}

// Resolve builds the conversion for a declared source unit table.
//
// Undeclared dimensions are taken to be canonical, except that area and
// volume derive from a declared length unit when they are not declared
// themselves.
func Resolve(source map[string]string) (Conversion, error) {
	c := Conversion{
		Original: make(map[string]string, len(source)),
		Factors:  make(map[Dimension]float64, len(Canonical)),
	}
	for _, d := range Dimensions() {
		c.Factors[d] = 1
	}

	keys := make([]string, 0, len(source))
	for k := range source {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	declared := make(map[Dimension]bool, len(source))
	for _, k := range keys {
		dim, ok := ParseDimension(k)
		if !ok {
			return Conversion{}, &UnitError{Code: ErrCodeUnknownDimension, Dimension: k, Unit: source[k]}
		}
		f, err := Factor(dim, source[k])
		if err != nil {
			return Conversion{}, err
		}
		c.Original[k] = source[k]
		c.Factors[dim] = f
		declared[dim] = true
	}

	if lf := c.Factors[Length]; declared[Length] {
		if !declared[Area] {
			c.Factors[Area] = lf * lf
		}
		if !declared[Volume] {
			c.Factors[Volume] = lf * lf * lf
		}
	}
	return c, nil
}

// Normalize converts every quantity attribute of x into canonical units.
//
// On success x.Units holds the canonical table and x.Provenance records
// original_units and conversion_factors. On error x is left untouched.
func Normalize(x *ir.IR, source map[string]string) (Conversion, error) {
	c, err := Resolve(source)
	if err != nil {
		return Conversion{}, err
	}
	Apply(x, c)
	return c, nil
}

// Apply rewrites x with an already resolved conversion.
func Apply(x *ir.IR, c Conversion) {
	for i := range x.Nodes {
		x.Nodes[i].Attrs = c.convertRecord(x.Nodes[i].Attrs, "")
	}
	for i := range x.Edges {
		x.Edges[i].Attrs = c.convertRecord(x.Edges[i].Attrs, "")
	}
	if x.BoundingBox != nil {
		if f := c.Factors[Length]; f != 1 {
			bb := x.BoundingBox.Scale(f)
			x.BoundingBox = &bb
		}
	}

	if x.Provenance == nil {
		x.Provenance = ir.AttrRecord{}
	}
	orig := make(ir.AttrRecord, len(c.Original))
	for k, u := range c.Original {
		orig[k] = ir.S(u)
	}
	factors := make(ir.AttrRecord, len(c.Factors))
	for d, f := range c.Factors {
		factors[string(d)] = ir.N(f)
	}
	x.Provenance[ir.ProvenanceOriginalUnits] = orig
	x.Provenance[ir.ProvenanceConversionFactors] = factors
	x.Units = CanonicalTable()
}

// convertRecord returns a converted copy of rec. A non-empty inherit applies
// that dimension to every number below a quantity key, e.g. "center": {x,y,z}.
// Keys that name a quantity themselves keep their own dimension, so
// "position": {"angle": 90} stays in angle units.
func (c Conversion) convertRecord(rec ir.AttrRecord, inherit Dimension) ir.AttrRecord {
	if rec == nil {
		return ir.AttrRecord{}
	}
	out := make(ir.AttrRecord, len(rec))
	for k, v := range rec {
		dim, ok := QuantityOf(k)
		if !ok {
			dim = inherit
		}
		out[k] = c.convertValue(v, dim)
	}
	return out
}

func (c Conversion) convertValue(v ir.AttrValue, dim Dimension) ir.AttrValue {
	f := 1.0
	if dim != "" {
		f = c.Factors[dim]
	}
	switch val := v.(type) {
	case ir.AttrNumber:
		if f == 1 {
			return val
		}
		return ir.N(float64(val) * f)
	case ir.AttrVector:
		out := make(ir.AttrVector, len(val))
		for i, n := range val {
			if f == 1 {
				out[i] = n
			} else {
				out[i] = n * f
			}
		}
		return out
	case ir.AttrRecord:
		return c.convertRecord(val, dim)
	default:
		return v
	}
}
