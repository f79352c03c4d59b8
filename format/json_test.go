package format_test

import (
	"math"
	"strings"
	"testing"

	cfgtree "github.com/reoring/cfgtree"
	"github.com/reoring/cfgtree/format"
)

func TestJSON_ParsePreservesKeyOrder(t *testing.T) {
	doc, err := format.JSON{}.Parse([]byte(`{"zebra": 1, "alpha": 2, "mid": {"y": true, "x": false}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := doc.Keys()
	want := []string{"zebra", "alpha", "mid"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected document order %v, got %v", want, got)
		}
	}
	sub, _ := doc.Get("mid")
	if keys := sub.(*cfgtree.Map).Keys(); keys[0] != "y" || keys[1] != "x" {
		t.Fatalf("expected nested order kept, got %v", keys)
	}
}

func TestJSON_EmptyDocumentIsEmptyMapping(t *testing.T) {
	for _, src := range []string{"", "  \n"} {
		doc, err := format.JSON{}.Parse([]byte(src))
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", src, err)
		}
		if doc.Len() != 0 {
			t.Fatalf("expected empty mapping for %q, got %v", src, doc.Keys())
		}
	}
}

func TestJSON_NumbersKeepKind(t *testing.T) {
	doc, err := format.JSON{}.Parse([]byte(`{"i": 3, "f": 3.5, "whole": 2.0}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := doc.Get("i"); v != int64(3) {
		t.Fatalf("expected int64, got %T(%v)", v, v)
	}
	if v, _ := doc.Get("f"); v != 3.5 {
		t.Fatalf("expected float64, got %T(%v)", v, v)
	}
	if v, _ := doc.Get("whole"); v != float64(2) {
		t.Fatalf("expected 2.0 to stay a float, got %T(%v)", v, v)
	}
}

func TestJSON_WholeFloatsSerializeWithPoint(t *testing.T) {
	doc := cfgtree.NewMap()
	doc.Set("ratio", float64(2))
	data, err := format.JSON{}.Serialize(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), "2.0") {
		t.Fatalf("expected 2.0 in output, got %s", data)
	}
	back, err := format.JSON{}.Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := back.Get("ratio"); v != float64(2) {
		t.Fatalf("expected float across round trip, got %T(%v)", v, v)
	}
}

func TestJSON_RoundTripKeepsOrder(t *testing.T) {
	doc := cfgtree.NewMap()
	doc.Set("name", "svc")
	doc.Set("tags", []any{"a", "b"})
	sub := cfgtree.NewMap()
	sub.Set("z", int64(1))
	sub.Set("a", int64(2))
	doc.Set("limits", sub)

	data, err := format.JSON{}.Serialize(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := format.JSON{}.Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.Equal(doc) {
		t.Fatalf("round trip changed the document:\n%s", data)
	}
}

func TestJSON_TopLevelMustBeObject(t *testing.T) {
	if _, err := (format.JSON{}).Parse([]byte(`[1, 2]`)); err == nil {
		t.Fatalf("expected error for array document")
	}
}

func TestJSON_TrailingDataRejected(t *testing.T) {
	if _, err := (format.JSON{}).Parse([]byte(`{"a": 1} {"b": 2}`)); err == nil {
		t.Fatalf("expected error for trailing data")
	}
}

func TestJSON_RejectsNonFiniteFloats(t *testing.T) {
	doc := cfgtree.NewMap()
	doc.Set("f", math.Inf(1))
	if _, err := (format.JSON{}).Serialize(doc); err == nil {
		t.Fatalf("expected error for infinity")
	}
}
