package units

import "strings"

// Attribute keys recognized as physical quantities. Matching is on the
// lower-cased key; keys not listed here pass through normalization unchanged.
var quantityKeys = map[string]Dimension{
	"length":    Length,
	"width":     Length,
	"height":    Length,
	"depth":     Length,
	"radius":    Length,
	"diameter":  Length,
	"thickness": Length,
	"distance":  Length,
	"offset":    Length,
	"perimeter": Length,
	"tolerance": Length,
	"x":         Length,
	"y":         Length,
	"z":         Length,
	"min_x":     Length,
	"min_y":     Length,
	"min_z":     Length,
	"max_x":     Length,
	"max_y":     Length,
	"max_z":     Length,
	"position":  Length,
	"origin":    Length,
	"center":    Length,
	"centroid":  Length,
	"point":     Length,

	"angle":    Angle,
	"rotation": Angle,

	"area":         Area,
	"surface_area": Area,

	"volume": Volume,

	"mass":   Mass,
	"weight": Mass,
}

var quantitySuffixes = []struct {
	suffix string
	dim    Dimension
}{
	{"_length", Length},
	{"_radius", Length},
	{"_diameter", Length},
	{"_distance", Length},
	{"_thickness", Length},
	{"_tolerance", Length},
	{"_angle", Angle},
	{"_area", Area},
	{"_volume", Volume},
	{"_mass", Mass},
}

// QuantityOf reports the dimension of an attribute key, if it names one.
func QuantityOf(key string) (Dimension, bool) {
	k := strings.ToLower(key)
	if d, ok := quantityKeys[k]; ok {
		return d, true
	}
	for _, s := range quantitySuffixes {
		if strings.HasSuffix(k, s.suffix) {
			return s.dim, true
		}
	}
	return "", false
}
