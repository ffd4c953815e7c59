package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"
)

// AttrValue is a sealed interface representing attribute value shapes.
// Only AttrString, AttrNumber, AttrBool, AttrVector, and AttrRecord implement it.
type AttrValue interface {
	attrValue() // Sealed - only these types implement it
}

// AttrString represents a string attribute value.
type AttrString string

func (AttrString) attrValue() {}

// AttrNumber represents a numeric attribute value.
// Quantized to FloatPrecision fractional digits on the wire.
type AttrNumber float64

func (AttrNumber) attrValue() {}

// AttrBool represents a boolean attribute value.
type AttrBool bool

func (AttrBool) attrValue() {}

// AttrVector represents an ordered sequence of numbers (points, directions, extents).
type AttrVector []float64

func (AttrVector) attrValue() {}

// AttrRecord represents a nested mapping of attribute names to values.
// Use SortedKeys() for deterministic iteration.
type AttrRecord map[string]AttrValue

func (AttrRecord) attrValue() {}

// S creates an AttrString value.
func S(s string) AttrString {
	return AttrString(s)
}

// N creates an AttrNumber value.
func N(f float64) AttrNumber {
	return AttrNumber(f)
}

// B creates an AttrBool value.
func B(b bool) AttrBool {
	return AttrBool(b)
}

// V creates an AttrVector from numbers. The result is never nil.
func V(vals ...float64) AttrVector {
	return append(AttrVector{}, vals...)
}

// AttrPair represents a key-value pair for typed AttrRecord construction.
type AttrPair struct {
	Key   string
	Value AttrValue
}

// P is a shorthand for AttrPair.
// Example: NewRecord(P("name", S("bracket")), P("radius", N(2.5)))
func P(key string, value AttrValue) AttrPair {
	return AttrPair{Key: key, Value: value}
}

// NewRecord creates an AttrRecord from typed key-value pairs.
func NewRecord(pairs ...AttrPair) AttrRecord {
	rec := make(AttrRecord, len(pairs))
	for _, p := range pairs {
		rec[p.Key] = p.Value
	}
	return rec
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 which produces a different order outside the BMP.
func (rec AttrRecord) SortedKeys() []string {
	return sortedKeys(rec)
}

// Clone returns a deep copy of the record.
func (rec AttrRecord) Clone() AttrRecord {
	if rec == nil {
		return nil
	}
	out := make(AttrRecord, len(rec))
	for k, v := range rec {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue returns a deep copy of an attribute value.
func CloneValue(v AttrValue) AttrValue {
	switch val := v.(type) {
	case AttrVector:
		return slices.Clone(val)
	case AttrRecord:
		return val.Clone()
	default:
		return v
	}
}

// Number returns the numeric value stored under key, if any.
func (rec AttrRecord) Number(key string) (float64, bool) {
	n, ok := rec[key].(AttrNumber)
	return float64(n), ok
}

// String returns the string value stored under key, if any.
func (rec AttrRecord) String(key string) (string, bool) {
	s, ok := rec[key].(AttrString)
	return string(s), ok
}

// Record returns the nested record stored under key, if any.
func (rec AttrRecord) Record(key string) (AttrRecord, bool) {
	r, ok := rec[key].(AttrRecord)
	return r, ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	// If all compared units are equal, shorter string comes first
	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}

// RoundFloat quantizes f to FloatPrecision fractional digits.
// The result is idempotent: RoundFloat(RoundFloat(f)) == RoundFloat(f).
// Negative zero collapses to zero. NaN and infinities are returned unchanged.
func RoundFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', FloatPrecision, 64), 64)
	if err != nil || r == 0 {
		return 0
	}
	return r
}

// Canonicalize returns a copy of v in wire form: numbers rounded by
// RoundFloat, strings NFC normalized.
func Canonicalize(v AttrValue) AttrValue {
	switch val := v.(type) {
	case AttrNumber:
		return AttrNumber(RoundFloat(float64(val)))
	case AttrString:
		return AttrString(NormalizeString(string(val)))
	case AttrVector:
		out := make(AttrVector, len(val))
		for i, f := range val {
			out[i] = RoundFloat(f)
		}
		return out
	case AttrRecord:
		return CanonicalizeRecord(val)
	default:
		return v
	}
}

// CanonicalizeRecord applies Canonicalize to every value of rec and NFC
// normalizes its keys. The result is never nil.
//
// Keys that normalize to the same form keep the value of the first raw key
// in canonical order. Use KeyCollision to reject such records instead.
func CanonicalizeRecord(rec AttrRecord) AttrRecord {
	out := make(AttrRecord, len(rec))
	for _, k := range rec.SortedKeys() {
		nk := NormalizeString(k)
		if _, dup := out[nk]; dup {
			continue
		}
		out[nk] = Canonicalize(rec[k])
	}
	return out
}

// KeyCollision reports the first key path of rec, in canonical order, whose
// NFC form equals that of another key at the same level. Nested records are
// searched too.
func KeyCollision(rec AttrRecord) (string, bool) {
	seen := make(map[string]bool, len(rec))
	for _, k := range rec.SortedKeys() {
		nk := NormalizeString(k)
		if seen[nk] {
			return nk, true
		}
		seen[nk] = true
		if sub, ok := rec[k].(AttrRecord); ok {
			if path, ok := KeyCollision(sub); ok {
				return nk + "." + path, true
			}
		}
	}
	return "", false
}

// FromAny converts a decoded Go value (from JSON or YAML) into an AttrValue.
// Lists must contain only numbers; null is rejected.
func FromAny(v any) (AttrValue, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is not an attribute value")
	case AttrValue:
		return val, nil
	case string:
		return AttrString(val), nil
	case bool:
		return AttrBool(val), nil
	case int:
		return AttrNumber(val), nil
	case int64:
		return AttrNumber(val), nil
	case uint64:
		return AttrNumber(val), nil
	case float32:
		return AttrNumber(val), nil
	case float64:
		return AttrNumber(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", val, err)
		}
		return AttrNumber(f), nil
	case []float64:
		return AttrVector(slices.Clone(val)), nil
	case []any:
		vec := make(AttrVector, len(val))
		for i, elem := range val {
			n, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			num, ok := n.(AttrNumber)
			if !ok {
				return nil, fmt.Errorf("[%d]: sequences may only contain numbers, got %T", i, elem)
			}
			vec[i] = float64(num)
		}
		return vec, nil
	case map[string]any:
		return RecordFromMap(val)
	default:
		return nil, fmt.Errorf("unsupported attribute type: %T", v)
	}
}

// RecordFromMap converts a decoded mapping into an AttrRecord.
func RecordFromMap(m map[string]any) (AttrRecord, error) {
	rec := make(AttrRecord, len(m))
	for k, elem := range m {
		val, err := FromAny(elem)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", k, err)
		}
		rec[k] = val
	}
	return rec, nil
}

// UnmarshalJSON implements json.Unmarshaler for AttrRecord.
func (rec *AttrRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*rec = make(AttrRecord, len(raw))
	for k, v := range raw {
		val, err := unmarshalAttrValue(v)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", k, err)
		}
		(*rec)[k] = val
	}
	return nil
}

// unmarshalAttrValue decodes a JSON value into the appropriate AttrValue type.
func unmarshalAttrValue(data []byte) (AttrValue, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return AttrString(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return AttrBool(b), nil

	case 'n':
		return nil, fmt.Errorf("null is not an attribute value")

	case '[':
		var nums []json.Number
		if err := json.Unmarshal(data, &nums); err != nil {
			return nil, fmt.Errorf("sequences may only contain numbers: %w", err)
		}
		vec := make(AttrVector, len(nums))
		for i, n := range nums {
			f, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			vec[i] = f
		}
		return vec, nil

	case '{':
		var rec AttrRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, err
		}
		return rec, nil

	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", n, err)
		}
		return AttrNumber(f), nil
	}
}

// MarshalJSON implements json.Marshaler for AttrRecord using canonical form.
func (rec AttrRecord) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(rec)
}
