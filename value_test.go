package cfgtree_test

import (
	"encoding/json"
	"math"
	"testing"

	cfgtree "github.com/reoring/cfgtree"
)

func TestMap_KeepsInsertionOrder(t *testing.T) {
	m := cfgtree.NewMap()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("c", 3)
	m.Set("a", 4) // replace keeps position

	keys := m.Keys()
	want := []string{"b", "a", "c"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected key %q at %d, got %q", want[i], i, keys[i])
		}
	}
	if v, _ := m.Get("a"); v != 4 {
		t.Fatalf("expected replaced value 4, got %v", v)
	}

	m.Delete("a")
	if m.Has("a") || m.Len() != 2 {
		t.Fatalf("expected a removed, got keys %v", m.Keys())
	}
}

func TestMap_ZeroValueUsable(t *testing.T) {
	var m cfgtree.Map
	if m.Has("k") || m.Len() != 0 {
		t.Fatalf("expected the zero value to read as empty")
	}
	m.Set("k", int64(1))
	if v, ok := m.Get("k"); !ok || v != int64(1) {
		t.Fatalf("expected value stored in zero map, got %v", v)
	}
}

func TestMap_CloneIsDeep(t *testing.T) {
	inner := cfgtree.NewMap()
	inner.Set("x", int64(1))
	m := cfgtree.NewMap()
	m.Set("nested", inner)
	m.Set("list", []any{"a"})

	cp := m.Clone()
	inner.Set("x", int64(99))

	got, _ := cp.Get("nested")
	if v, _ := got.(*cfgtree.Map).Get("x"); v != int64(1) {
		t.Fatalf("expected clone untouched, got %v", v)
	}
}

func TestMap_EqualComparesOrder(t *testing.T) {
	a := cfgtree.NewMap()
	a.Set("x", int64(1))
	a.Set("y", int64(2))

	b := cfgtree.NewMap()
	b.Set("y", int64(2))
	b.Set("x", int64(1))

	if a.Equal(b) {
		t.Fatalf("expected different key order to compare unequal")
	}
	if !a.Equal(a.Clone()) {
		t.Fatalf("expected clone to compare equal")
	}
}

func TestMap_MarshalJSONKeepsOrder(t *testing.T) {
	inner := cfgtree.NewMap()
	inner.Set("b", true)
	inner.Set("a", "s")

	m := cfgtree.NewMap()
	m.Set("zeta", int64(1))
	m.Set("alpha", []any{"x", inner.Clone()})
	m.Set("inner", inner)

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"zeta":1,"alpha":["x",{"b":true,"a":"s"}],"inner":{"b":true,"a":"s"}}`
	if string(data) != want {
		t.Fatalf("expected %s, got %s", want, data)
	}
}

func TestNormalizeValue_CanonicalScalars(t *testing.T) {
	if v := cfgtree.NormalizeValue(int(7)); v != int64(7) {
		t.Fatalf("expected int64, got %T", v)
	}
	if v := cfgtree.NormalizeValue(uint32(7)); v != int64(7) {
		t.Fatalf("expected int64, got %T", v)
	}
	if v := cfgtree.NormalizeValue(float32(1.5)); v != float64(1.5) {
		t.Fatalf("expected float64, got %T", v)
	}
	if v := cfgtree.NormalizeValue(json.Number("42")); v != int64(42) {
		t.Fatalf("expected int64 from number, got %T %v", v, v)
	}
	if v := cfgtree.NormalizeValue(json.Number("4.5")); v != float64(4.5) {
		t.Fatalf("expected float64 from number, got %T %v", v, v)
	}
}

func TestNormalizeValue_HugeUnsignedNotWrapped(t *testing.T) {
	if v := cfgtree.NormalizeValue(uint64(12)); v != int64(12) {
		t.Fatalf("expected small uint64 converted, got %T(%v)", v, v)
	}
	if v := cfgtree.NormalizeValue(uint64(math.MaxUint64)); v != uint64(math.MaxUint64) {
		t.Fatalf("expected out-of-range uint64 untouched, got %T(%v)", v, v)
	}
	if v := cfgtree.NormalizeValue(uint(7)); v != int64(7) {
		t.Fatalf("expected small uint converted, got %T(%v)", v, v)
	}
}

func TestNormalizeValue_MapsBecomeOrdered(t *testing.T) {
	v := cfgtree.NormalizeValue(map[string]any{
		"b": 1,
		"a": map[any]any{"inner": uint8(3)},
	})
	m, ok := v.(*cfgtree.Map)
	if !ok {
		t.Fatalf("expected *Map, got %T", v)
	}
	keys := m.Keys()
	if keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("expected sorted fallback order, got %v", keys)
	}
	av, _ := m.Get("a")
	iv, _ := av.(*cfgtree.Map).Get("inner")
	if iv != int64(3) {
		t.Fatalf("expected normalized inner int64, got %T", iv)
	}
}

func TestDeepEqual_KindsNeverCoerce(t *testing.T) {
	if cfgtree.DeepEqual(int64(1), float64(1)) {
		t.Fatalf("expected int64 and float64 to differ")
	}
	if !cfgtree.DeepEqual([]any{int64(1), "x"}, []any{int64(1), "x"}) {
		t.Fatalf("expected equal slices")
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		v    any
		want cfgtree.Kind
	}{
		{"s", cfgtree.KindString},
		{true, cfgtree.KindBool},
		{int64(1), cfgtree.KindInt},
		{1.5, cfgtree.KindFloat},
		{nil, cfgtree.KindInvalid},
		{[]any{}, cfgtree.KindInvalid},
	}
	for _, c := range cases {
		if got := cfgtree.KindOf(c.v); got != c.want {
			t.Fatalf("KindOf(%v): expected %v, got %v", c.v, c.want, got)
		}
	}
}
