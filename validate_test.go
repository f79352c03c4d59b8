package cfgtree_test

import (
	"context"
	"math"
	"testing"

	cfgtree "github.com/reoring/cfgtree"
	"github.com/reoring/cfgtree/dsl"
)

func serverSchema(t *testing.T) *cfgtree.Schema {
	t.Helper()
	s, err := dsl.Config("server").
		Field("host", dsl.String("127.0.0.1")).
		Field("port", dsl.Int(8080)).
		Field("debug", dsl.Bool(false)).
		Field("ratio", dsl.Float(0.5)).
		Field("mode", dsl.Choice("dev", "prod")).
		Field("plugins", dsl.List(dsl.StringElem)).
		Field("limits", dsl.Mapping().Key("burst", dsl.Int(10)).Wildcard(dsl.Int(0))).
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	return s
}

func doc(pairs ...any) *cfgtree.Map {
	m := cfgtree.NewMap()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1])
	}
	return m
}

func wantIssue(t *testing.T, err error, path, code string) {
	t.Helper()
	iss, ok := cfgtree.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	for _, it := range iss {
		if it.Path == path && it.Code == code {
			return
		}
	}
	t.Fatalf("expected %s at %s, got %v", code, path, iss)
}

func TestValidate_NilDocumentYieldsDefaults(t *testing.T) {
	ctx := context.Background()
	s := serverSchema(t)

	tree, err := cfgtree.Validate(ctx, s, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := tree.Get("host"); v != "127.0.0.1" {
		t.Fatalf("expected default host, got %v", v)
	}
	if v, _ := tree.Get("port"); v != int64(8080) {
		t.Fatalf("expected default port, got %v", v)
	}
	if v, _ := tree.Get("mode"); v != "dev" {
		t.Fatalf("expected first choice member as default, got %v", v)
	}
	limits, _ := tree.Get("limits")
	if v, _ := limits.(*cfgtree.Map).Get("burst"); v != int64(10) {
		t.Fatalf("expected mapping key default, got %v", v)
	}
	keys := tree.Keys()
	if len(keys) != 7 || keys[0] != "host" || keys[6] != "limits" {
		t.Fatalf("expected declaration order, got %v", keys)
	}
}

func TestValidate_TypeMismatchKeepsDefault(t *testing.T) {
	ctx := context.Background()
	s := serverSchema(t)

	tree, err := cfgtree.Validate(ctx, s, doc("port", "eighty", "host", "example.com"))
	wantIssue(t, err, "/port", cfgtree.CodeInvalidType)
	if v, _ := tree.Get("port"); v != int64(8080) {
		t.Fatalf("expected default after failure, got %v", v)
	}
	if v, _ := tree.Get("host"); v != "example.com" {
		t.Fatalf("expected accepted value to stick, got %v", v)
	}
}

func TestValidate_NoCoercionBetweenIntAndFloat(t *testing.T) {
	ctx := context.Background()
	s := serverSchema(t)

	_, err := cfgtree.Validate(ctx, s, doc("ratio", 2))
	wantIssue(t, err, "/ratio", cfgtree.CodeInvalidType)

	_, err = cfgtree.Validate(ctx, s, doc("port", 1.5))
	wantIssue(t, err, "/port", cfgtree.CodeInvalidType)
}

func TestValidate_UnsignedOverflowRejected(t *testing.T) {
	ctx := context.Background()
	s := serverSchema(t)

	tree, err := cfgtree.Validate(ctx, s, doc("port", uint64(math.MaxUint64)))
	wantIssue(t, err, "/port", cfgtree.CodeInvalidType)
	if v, _ := tree.Get("port"); v != int64(8080) {
		t.Fatalf("expected default instead of a wrapped value, got %v", v)
	}
}

func TestValidate_ChoiceEnforcesMembership(t *testing.T) {
	ctx := context.Background()
	s := serverSchema(t)

	tree, err := cfgtree.Validate(ctx, s, doc("mode", "staging"))
	wantIssue(t, err, "/mode", cfgtree.CodeInvalidEnum)
	if v, _ := tree.Get("mode"); v != "dev" {
		t.Fatalf("expected default mode, got %v", v)
	}

	tree, err = cfgtree.Validate(ctx, s, doc("mode", "prod"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := tree.Get("mode"); v != "prod" {
		t.Fatalf("expected prod, got %v", v)
	}
}

func TestValidate_ListElementsAddressedByIndex(t *testing.T) {
	ctx := context.Background()
	s := serverSchema(t)

	tree, err := cfgtree.Validate(ctx, s, doc("plugins", []any{"auth", 5, "cache"}))
	wantIssue(t, err, "/plugins/1", cfgtree.CodeInvalidType)
	if v, _ := tree.Get("plugins"); len(v.([]any)) != 0 {
		t.Fatalf("expected default list after element failure, got %v", v)
	}

	tree, err = cfgtree.Validate(ctx, s, doc("plugins", []any{"auth", "cache"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := tree.Get("plugins"); len(v.([]any)) != 2 {
		t.Fatalf("expected accepted list, got %v", v)
	}
}

func TestValidate_ListLiteralsNarrowValues(t *testing.T) {
	ctx := context.Background()
	s, err := dsl.Config("hooks").
		Field("on", dsl.List("reload", dsl.MapElem)).
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	_, err = cfgtree.Validate(ctx, s, doc("on", []any{"reload", doc("cmd", "restart")}))
	if err != nil {
		t.Fatalf("expected literal and mapping to pass, got %v", err)
	}

	_, err = cfgtree.Validate(ctx, s, doc("on", []any{"restart"}))
	wantIssue(t, err, "/on/0", cfgtree.CodeInvalidType)
}

func TestValidate_MappingWildcardAbsorbsUnknowns(t *testing.T) {
	ctx := context.Background()
	s := serverSchema(t)

	tree, err := cfgtree.Validate(ctx, s, doc("limits", doc("burst", 20, "extra", 7)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	limits, _ := tree.Get("limits")
	m := limits.(*cfgtree.Map)
	if v, _ := m.Get("burst"); v != int64(20) {
		t.Fatalf("expected fixed key accepted, got %v", v)
	}
	if v, _ := m.Get("extra"); v != int64(7) {
		t.Fatalf("expected wildcard key absorbed, got %v", v)
	}
}

func TestValidate_BadWildcardValueIsDropped(t *testing.T) {
	ctx := context.Background()
	s := serverSchema(t)

	tree, err := cfgtree.Validate(ctx, s, doc("limits", doc("extra", "lots")))
	wantIssue(t, err, "/limits/extra", cfgtree.CodeInvalidType)
	limits, _ := tree.Get("limits")
	m := limits.(*cfgtree.Map)
	if m.Has("extra") {
		t.Fatalf("expected failing wildcard key dropped, got %v", m.Keys())
	}
	if v, _ := m.Get("burst"); v != int64(10) {
		t.Fatalf("expected fixed key default, got %v", v)
	}
}

func TestValidate_UnknownKeysRejected(t *testing.T) {
	ctx := context.Background()
	s := serverSchema(t)

	_, err := cfgtree.Validate(ctx, s, doc("prot", 8080))
	wantIssue(t, err, "/prot", cfgtree.CodeUnknownKey)
}

func TestValidate_OpenMappingTakesContentVerbatim(t *testing.T) {
	ctx := context.Background()
	s, err := dsl.Config("svc").
		Field("name", dsl.StringType()).
		Field("meta", dsl.MapType()).
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	meta := doc("labels", []any{"a", int64(1)}, "owner", doc("team", "core"))
	tree, err := cfgtree.Validate(ctx, s, doc("meta", meta))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := tree.Get("meta")
	if !cfgtree.DeepEqual(got, meta) {
		t.Fatalf("expected verbatim content, got %v", got)
	}
	if gm, _ := got.(*cfgtree.Map); gm == meta {
		t.Fatalf("expected a copy, got the input mapping")
	}
	if v, _ := tree.Get("name"); v != "" {
		t.Fatalf("expected zero default for the bare string, got %#v", v)
	}

	tree, err = cfgtree.Validate(ctx, s, doc("meta", "nope"))
	wantIssue(t, err, "/meta", cfgtree.CodeInvalidType)
	got, _ = tree.Get("meta")
	if m, ok := got.(*cfgtree.Map); !ok || m.Len() != 0 {
		t.Fatalf("expected the empty default mapping, got %#v", got)
	}
}

func TestValidate_NestedIssuesCarryFullPath(t *testing.T) {
	ctx := context.Background()
	db, err := dsl.Config("db").
		Field("host", dsl.String("localhost")).
		Field("pool", dsl.Int(4)).
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	app, err := dsl.Config("app").
		Field("name", dsl.String("app")).
		Field("db", dsl.Section(db)).
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	tree, err := cfgtree.Validate(ctx, app, doc("db", doc("pool", "big")))
	wantIssue(t, err, "/db/pool", cfgtree.CodeInvalidType)
	sub, _ := tree.Get("db")
	if v, _ := sub.(*cfgtree.Map).Get("pool"); v != int64(4) {
		t.Fatalf("expected nested default, got %v", v)
	}
	if v, _ := sub.(*cfgtree.Map).Get("host"); v != "localhost" {
		t.Fatalf("expected nested default host, got %v", v)
	}
}

func TestValidate_CollectsAllIssues(t *testing.T) {
	ctx := context.Background()
	s := serverSchema(t)

	_, err := cfgtree.Validate(ctx, s, doc("port", "x", "mode", "nope", "debug", 1))
	iss, ok := cfgtree.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	if len(iss) != 3 {
		t.Fatalf("expected 3 issues, got %d: %v", len(iss), iss)
	}
}

func TestValidate_FailFastStopsAtFirstIssue(t *testing.T) {
	ctx := cfgtree.WithFailFast(context.Background())
	s := serverSchema(t)

	tree, err := cfgtree.Validate(ctx, s, doc("port", "x", "mode", "nope"))
	iss, ok := cfgtree.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	if len(iss) != 1 {
		t.Fatalf("expected a single issue, got %v", iss)
	}
	// the tree is still complete
	for _, f := range s.Fields() {
		if !treeHas(tree, f.Name) {
			t.Fatalf("expected field %q present", f.Name)
		}
	}
}

func TestValidate_TopLevelMustBeMapping(t *testing.T) {
	ctx := context.Background()
	s := serverSchema(t)

	tree, err := cfgtree.Validate(ctx, s, []any{"not", "a", "mapping"})
	wantIssue(t, err, "", cfgtree.CodeInvalidType)
	if v, _ := tree.Get("host"); v != "127.0.0.1" {
		t.Fatalf("expected default tree, got %v", v)
	}
}

func treeHas(m *cfgtree.Map, key string) bool {
	_, ok := m.Get(key)
	return ok
}
