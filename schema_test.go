package cfgtree_test

import (
	"testing"

	cfgtree "github.com/reoring/cfgtree"
)

func TestNewSchema_Direct(t *testing.T) {
	s, err := cfgtree.NewSchema("raw",
		cfgtree.Field{Name: "host", Spec: cfgtree.ScalarSpec{Kind: cfgtree.KindString, Default: "localhost"}},
		cfgtree.Field{Name: "port", Spec: cfgtree.ScalarSpec{Kind: cfgtree.KindInt}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tree := s.DefaultTree()
	if v, _ := tree.Get("host"); v != "localhost" {
		t.Fatalf("expected default, got %v", v)
	}
	if v, _ := tree.Get("port"); v != int64(0) {
		t.Fatalf("expected kind zero for omitted default, got %T(%v)", v, v)
	}
}

func TestNewSchema_RejectsBadDeclarations(t *testing.T) {
	_, err := cfgtree.NewSchema("bad",
		cfgtree.Field{Name: "", Spec: cfgtree.ScalarSpec{Kind: cfgtree.KindInt}},
		cfgtree.Field{Name: "x", Spec: cfgtree.ScalarSpec{Kind: cfgtree.KindInt}},
		cfgtree.Field{Name: "x", Spec: cfgtree.ScalarSpec{Kind: cfgtree.KindInt}},
		cfgtree.Field{Name: "y"},
		cfgtree.Field{Name: "z", Spec: cfgtree.ScalarSpec{Kind: cfgtree.KindInt, Default: "nope"}},
	)
	iss, ok := cfgtree.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	if len(iss) != 4 {
		t.Fatalf("expected every declaration problem collected, got %v", iss)
	}
	for _, it := range iss {
		if it.Code != cfgtree.CodeInvalidSchema {
			t.Fatalf("expected invalid_schema, got %v", it)
		}
	}
}

func TestMustSchema_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	cfgtree.MustSchema("bad", cfgtree.Field{Name: "x"})
}

func TestSchema_WithBindingCopies(t *testing.T) {
	s := cfgtree.MustSchema("s",
		cfgtree.Field{Name: "x", Spec: cfgtree.ScalarSpec{Kind: cfgtree.KindInt}},
	)
	bound := s.WithBinding(cfgtree.FormatJSON, "s.json")
	if _, ok := s.Binding(); ok {
		t.Fatalf("expected original unbound")
	}
	if b, ok := bound.Binding(); !ok || b.Path != "s.json" {
		t.Fatalf("expected copy bound, got %v %v", b, ok)
	}
	if _, ok := bound.WithBinding("", "").Binding(); ok {
		t.Fatalf("expected empty path to clear the binding")
	}
}
