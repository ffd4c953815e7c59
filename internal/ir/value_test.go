package ir

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrValueSealed(t *testing.T) {
	// Verify all types implement AttrValue (compile-time check via assignment)
	var _ AttrValue = AttrString("test")
	var _ AttrValue = AttrNumber(1.5)
	var _ AttrValue = AttrBool(true)
	var _ AttrValue = AttrVector{1, 2, 3}
	var _ AttrValue = AttrRecord{"key": AttrString("value")}
}

func TestAttrRecordSortedKeys(t *testing.T) {
	rec := AttrRecord{
		"zebra":  S("z"),
		"apple":  S("a"),
		"banana": S("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, rec.SortedKeys())
}

func TestAttrRecordSortedKeysCase(t *testing.T) {
	rec := AttrRecord{
		"a":  N(1),
		"A":  N(2),
		"aa": N(3),
		"aA": N(4),
		"Aa": N(5),
		"AA": N(6),
	}

	// 'A' = 65, 'a' = 97
	expected := []string{"A", "AA", "Aa", "a", "aA", "aa"}
	assert.Equal(t, expected, rec.SortedKeys())
}

func TestCompareKeysRFC8785(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a", 0},
		{"a", "ab", -1},
		{"", "a", -1},
		{"\U00010000", "\ue000", -1}, // surrogate 0xD800 < 0xE000
		{"\ue000", "\U00010000", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, compareKeysRFC8785(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord(P("name", S("bracket")), P("radius", N(2.5)), P("solid", B(true)))

	name, ok := rec.String("name")
	require.True(t, ok)
	assert.Equal(t, "bracket", name)

	r, ok := rec.Number("radius")
	require.True(t, ok)
	assert.Equal(t, 2.5, r)

	_, ok = rec.Number("name")
	assert.False(t, ok, "string attribute is not a number")

	_, ok = rec.Record("radius")
	assert.False(t, ok)
}

func TestAttrRecordClone(t *testing.T) {
	orig := AttrRecord{
		"origin": V(1, 2, 3),
		"nested": AttrRecord{"length": N(10)},
	}

	cp := orig.Clone()
	cp["origin"].(AttrVector)[0] = 99
	cp["nested"].(AttrRecord)["length"] = N(20)

	assert.Equal(t, V(1, 2, 3), orig["origin"])
	assert.Equal(t, N(10), orig["nested"].(AttrRecord)["length"])
	assert.Nil(t, AttrRecord(nil).Clone())
}

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"already canonical", 25.4, 25.4},
		{"ninth digit noise", 25.400000001, 25.4},
		{"rounds up", 0.1234567, 0.123457},
		{"negative zero", math.Copysign(0, -1), 0},
		{"tiny negative", -0.0000001, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundFloat(tt.in)
			assert.Equal(t, tt.want, got)
			assert.False(t, math.Signbit(got) && got == 0, "negative zero must collapse")
		})
	}
}

func TestRoundFloatIdempotent(t *testing.T) {
	for _, f := range []float64{1.0 / 3.0, 2.0 / 3.0, 25.4 * 0.3, 1e9 + 0.1234565, -7.0000005} {
		once := RoundFloat(f)
		assert.Equal(t, once, RoundFloat(once), "RoundFloat(%v)", f)
	}
}

func TestCanonicalizeRecord(t *testing.T) {
	rec := AttrRecord{
		"name":   S("cafe\u0301"),
		"length": N(1.0 / 3.0),
		"center": V(2.0/3.0, 0, 1),
		"bbox":   AttrRecord{"min_x": N(0.1234567)},
	}

	q := CanonicalizeRecord(rec)

	assert.Equal(t, S("caf\u00e9"), q["name"])
	assert.Equal(t, N(0.333333), q["length"])
	assert.Equal(t, V(0.666667, 0, 1), q["center"])
	assert.Equal(t, N(0.123457), q["bbox"].(AttrRecord)["min_x"])
	assert.Equal(t, N(1.0/3.0), rec["length"], "input must not be mutated")
	assert.NotNil(t, CanonicalizeRecord(nil))
}

func TestCanonicalizeRecordCollidingKeys(t *testing.T) {
	rec := AttrRecord{"\u00e9": N(1), "e\u0301": N(2)}

	for i := 0; i < 50; i++ {
		q := CanonicalizeRecord(rec)
		require.Len(t, q, 1)
		assert.Equal(t, N(2), q["\u00e9"], "first raw key in canonical order wins")
	}
}

func TestKeyCollision(t *testing.T) {
	tests := []struct {
		name string
		rec  AttrRecord
		path string
		ok   bool
	}{
		{"none", AttrRecord{"a": N(1), "b": AttrRecord{"c": N(2)}}, "", false},
		{"nil", nil, "", false},
		{"top level", AttrRecord{"\u00e9": N(1), "e\u0301": N(2)}, "\u00e9", true},
		{"nested", AttrRecord{"bbox": AttrRecord{"\u00e9": N(1), "e\u0301": N(2)}}, "bbox.\u00e9", true},
		{"same key in different records", AttrRecord{"\u00e9": N(1), "x": AttrRecord{"e\u0301": N(2)}}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := KeyCollision(tt.rec)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.path, path)
		})
	}
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want AttrValue
	}{
		{"string", "a", S("a")},
		{"bool", true, B(true)},
		{"int", 3, N(3)},
		{"int64", int64(-3), N(-3)},
		{"uint64", uint64(3), N(3)},
		{"float", 1.5, N(1.5)},
		{"json number", json.Number("2.25"), N(2.25)},
		{"list", []any{1, 2.5}, V(1, 2.5)},
		{"empty list", []any{}, V()},
		{"map", map[string]any{"x": 1}, AttrRecord{"x": N(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAnyRejects(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"null", nil},
		{"mixed list", []any{1, "a"}},
		{"nested null", map[string]any{"x": nil}},
		{"unsupported", struct{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromAny(tt.in)
			require.Error(t, err)
		})
	}
}

func TestAttrRecordUnmarshal(t *testing.T) {
	var rec AttrRecord
	err := json.Unmarshal([]byte(`{"name":"hub","radius":12.5,"solid":true,"origin":[0,1,2],"meta":{"k":"v"},"empty":[]}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, AttrRecord{
		"name":   S("hub"),
		"radius": N(12.5),
		"solid":  B(true),
		"origin": V(0, 1, 2),
		"meta":   AttrRecord{"k": S("v")},
		"empty":  V(),
	}, rec)
}

func TestAttrRecordUnmarshalRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"null value", `{"a":null}`},
		{"string in list", `{"a":[1,"x"]}`},
		{"nested list", `{"a":[[1]]}`},
		{"not an object", `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec AttrRecord
			err := json.Unmarshal([]byte(tt.input), &rec)
			require.Error(t, err)
		})
	}
}

func TestAttrRecordMarshalJSONIsCanonical(t *testing.T) {
	rec := AttrRecord{"b": N(0.1 + 0.2), "a": S("x")}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","b":0.3}`, string(data))
}
