package units

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Dimension names a physical quantity class.
type Dimension string

const (
	Length Dimension = "length"
	Angle  Dimension = "angle"
	Area   Dimension = "area"
	Volume Dimension = "volume"
	Mass   Dimension = "mass"
)

// Dimensions returns every supported dimension in wire order.
func Dimensions() []Dimension {
	return []Dimension{Angle, Area, Length, Mass, Volume}
}

// ParseDimension converts a unit-table key into a Dimension.
func ParseDimension(s string) (Dimension, bool) {
	switch d := Dimension(fold(s)); d {
	case Length, Angle, Area, Volume, Mass:
		return d, true
	}
	return "", false
}

// Canonical is the canonical unit symbol per dimension.
var Canonical = map[Dimension]string{
	Length: "mm",
	Angle:  "deg",
	Area:   "mm²",
	Volume: "mm³",
	Mass:   "kg",
}

// CanonicalTable returns a fresh copy of the canonical unit table keyed by
// dimension name.
func CanonicalTable() map[string]string {
	out := make(map[string]string, len(Canonical))
	for d, sym := range Canonical {
		out[string(d)] = sym
	}
	return out
}

// Factors to the canonical unit, keyed by normalized unit name.
var (
	lengthFactors = map[string]float64{
		"mm":   1,
		"m":    1000,
		"cm":   10,
		"km":   1e6,
		"μm":   1e-3,
		"nm":   1e-6,
		"in":   25.4,
		"ft":   304.8,
		"yd":   914.4,
		"mile": 1609344,
		"thou": 0.0254,
		"mil":  0.0254,
	}

	angleFactors = map[string]float64{
		"deg":  1,
		"rad":  180 / math.Pi,
		"grad": 0.9,
		"turn": 360,
	}

	// Area and volume units not derivable from a length unit.
	areaFactors = map[string]float64{
		"ha": 1e10,
	}
	volumeFactors = map[string]float64{
		"l":  1e6,
		"ml": 1e3,
		"cc": 1e3,
	}

	massFactors = map[string]float64{
		"kg": 1,
		"g":  1e-3,
		"mg": 1e-6,
		"t":  1000,
		"lb": 0.45359237,
		"oz": 0.028349523125,
	}
)

// aliases maps long, plural and STEP forms onto table names.
var aliases = map[string]string{
	"millimetre": "mm", "millimeter": "mm", "millimetres": "mm", "millimeters": "mm",
	"metre": "m", "meter": "m", "metres": "m", "meters": "m",
	"centimetre": "cm", "centimeter": "cm", "centimetres": "cm", "centimeters": "cm",
	"kilometre": "km", "kilometer": "km", "kilometres": "km", "kilometers": "km",
	"micrometre": "μm", "micrometer": "μm", "micron": "μm", "microns": "μm", "um": "μm",
	"nanometre": "nm", "nanometer": "nm",
	"inch": "in", "inches": "in",
	"foot": "ft", "feet": "ft",
	"yard": "yd", "yards": "yd",
	"miles": "mile",

	"degree": "deg", "degrees": "deg", "°": "deg",
	"radian": "rad", "radians": "rad",
	"gradian": "grad", "gradians": "grad", "gon": "grad",
	"turns": "turn", "revolution": "turn", "rev": "turn",

	"litre": "l", "liter": "l", "litres": "l", "liters": "l",
	"millilitre": "ml", "milliliter": "ml",
	"hectare": "ha",

	"kilogram": "kg", "kilograms": "kg",
	"gram": "g", "grams": "g",
	"milligram": "mg", "milligrams": "mg",
	"tonne": "t", "tonnes": "t",
	"pound": "lb", "pounds": "lb", "lbs": "lb",
	"ounce": "oz", "ounces": "oz",
}

// fold applies compatibility normalization and case folding, so that
// "MILLIMETRE", "µm" (micro sign) and "mm²" compare equal to their table keys.
func fold(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	return cases.Fold().String(s)
}

// NormalizeName returns the table name for a raw unit string.
func NormalizeName(unit string) string {
	u := fold(unit)
	if a, ok := aliases[u]; ok {
		return a
	}
	return u
}

// Factor returns the multiplier converting a value in unit to the canonical
// unit of dim.
func Factor(dim Dimension, unit string) (float64, error) {
	if strings.TrimSpace(unit) == "" {
		return 0, &UnitError{Code: ErrCodeMissingUnit, Dimension: string(dim)}
	}
	name := NormalizeName(unit)

	var (
		f  float64
		ok bool
	)
	switch dim {
	case Length:
		f, ok = lengthFactors[name]
	case Angle:
		f, ok = angleFactors[name]
	case Area:
		f, ok = poweredFactor(name, areaFactors, "2", 2)
	case Volume:
		f, ok = poweredFactor(name, volumeFactors, "3", 3)
	case Mass:
		f, ok = massFactors[name]
	default:
		return 0, &UnitError{Code: ErrCodeUnknownDimension, Dimension: string(dim), Unit: unit}
	}
	if !ok {
		return 0, &UnitError{Code: ErrCodeUnknownUnit, Dimension: string(dim), Unit: unit}
	}
	return f, nil
}

// poweredFactor resolves explicit area/volume units first, then squared or
// cubed length units such as "in2" (from "in²"), "sq in" or "cu ft".
func poweredFactor(name string, explicit map[string]float64, suffix string, power float64) (float64, bool) {
	if f, ok := explicit[name]; ok {
		return f, true
	}
	base := ""
	switch {
	case strings.HasSuffix(name, suffix):
		base = strings.TrimSuffix(name, suffix)
	case power == 2 && strings.HasPrefix(name, "sq "):
		base = strings.TrimPrefix(name, "sq ")
	case power == 3 && strings.HasPrefix(name, "cu "):
		base = strings.TrimPrefix(name, "cu ")
	default:
		return 0, false
	}
	lf, ok := lengthFactors[NormalizeName(base)]
	if !ok {
		return 0, false
	}
	return math.Pow(lf, power), true
}
