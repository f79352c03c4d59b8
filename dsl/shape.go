package dsl

import (
	cfgtree "github.com/reoring/cfgtree"
)

// Shape describes one field's type, constraint and default. The helpers in
// this package (String, Choice, List, Mapping, Section) produce Shapes; the
// Go literal you pass picks the field's kind, the way a literal default
// picks the type in a declaration.
type Shape interface {
	buildSpec() (cfgtree.FieldSpec, cfgtree.Issues)
}

type scalarShape struct{ spec cfgtree.ScalarSpec }

func (s scalarShape) buildSpec() (cfgtree.FieldSpec, cfgtree.Issues) { return s.spec, nil }

// String declares a string field with the given default.
func String(def string) Shape {
	return scalarShape{cfgtree.ScalarSpec{Kind: cfgtree.KindString, Default: def}}
}

// Bool declares a bool field with the given default.
func Bool(def bool) Shape {
	return scalarShape{cfgtree.ScalarSpec{Kind: cfgtree.KindBool, Default: def}}
}

// Int declares an integer field with the given default.
func Int(def int64) Shape {
	return scalarShape{cfgtree.ScalarSpec{Kind: cfgtree.KindInt, Default: def}}
}

// Float declares a float field with the given default.
func Float(def float64) Shape {
	return scalarShape{cfgtree.ScalarSpec{Kind: cfgtree.KindFloat, Default: def}}
}

// StringType declares a string field defaulting to "". The bare type markers
// constrain the kind only; use the literal helpers to pick a default.
func StringType() Shape {
	return scalarShape{cfgtree.ScalarSpec{Kind: cfgtree.KindString}}
}

// BoolType declares a bool field defaulting to false.
func BoolType() Shape {
	return scalarShape{cfgtree.ScalarSpec{Kind: cfgtree.KindBool}}
}

// IntType declares an integer field defaulting to 0.
func IntType() Shape {
	return scalarShape{cfgtree.ScalarSpec{Kind: cfgtree.KindInt}}
}

// FloatType declares a float field defaulting to 0.0.
func FloatType() Shape {
	return scalarShape{cfgtree.ScalarSpec{Kind: cfgtree.KindFloat}}
}

// ListType declares a sequence field that admits any elements, defaulting to
// an empty list.
func ListType() Shape { return &ListBuilder{} }

// MapType declares a mapping field that admits any content verbatim,
// defaulting to an empty mapping. Unlike Mapping, nothing below the field is
// validated.
func MapType() Shape { return mapTypeShape{} }

type mapTypeShape struct{}

func (mapTypeShape) buildSpec() (cfgtree.FieldSpec, cfgtree.Issues) {
	return cfgtree.MappingSpec{Open: true}, nil
}

// Choice declares a field restricted to a closed set of scalar values. The
// first value is the default unless Default overrides it.
func Choice(values ...any) *ChoiceBuilder {
	norm := make([]any, len(values))
	for i, v := range values {
		norm[i] = cfgtree.NormalizeValue(v)
	}
	return &ChoiceBuilder{values: norm}
}

// ChoiceBuilder builds a choice field.
type ChoiceBuilder struct {
	values []any
	def    any
}

// Default picks the default member.
func (b *ChoiceBuilder) Default(v any) *ChoiceBuilder {
	b.def = cfgtree.NormalizeValue(v)
	return b
}

func (b *ChoiceBuilder) buildSpec() (cfgtree.FieldSpec, cfgtree.Issues) {
	return cfgtree.ChoiceSpec{Values: b.values, Default: b.def}, nil
}

type elemMarker struct {
	kind     cfgtree.Kind
	mapElem  bool
	listElem bool
}

// Kind markers for List declarations. A marker admits every element of its
// kind, where a plain literal admits only itself.
var (
	StringElem = elemMarker{kind: cfgtree.KindString}
	BoolElem   = elemMarker{kind: cfgtree.KindBool}
	IntElem    = elemMarker{kind: cfgtree.KindInt}
	FloatElem  = elemMarker{kind: cfgtree.KindFloat}
	MapElem    = elemMarker{mapElem: true}
	ListElem   = elemMarker{listElem: true}
)

// List declares a sequence field. Arguments mix literals and kind markers:
// List("reload", MapElem) admits the string "reload" and any mapping.
// The literal arguments double as the default sequence (markers contribute
// nothing) until Default overrides it. An empty List admits any element.
func List(elems ...any) *ListBuilder {
	b := &ListBuilder{}
	for _, e := range elems {
		if m, ok := e.(elemMarker); ok {
			switch {
			case m.mapElem:
				b.rule.AllowMap = true
			case m.listElem:
				b.rule.AllowList = true
			default:
				b.rule.Kinds = append(b.rule.Kinds, m.kind)
			}
			continue
		}
		lit := cfgtree.NormalizeValue(e)
		b.rule.Literals = append(b.rule.Literals, lit)
		b.lits = append(b.lits, lit)
	}
	return b
}

// ListBuilder builds a list field.
type ListBuilder struct {
	rule cfgtree.ElemRule
	lits []any
	def  []any
}

// Default sets the default sequence, replacing the literal arguments.
func (b *ListBuilder) Default(vals ...any) *ListBuilder {
	b.def = make([]any, len(vals))
	for i, v := range vals {
		b.def[i] = cfgtree.NormalizeValue(v)
	}
	return b
}

func (b *ListBuilder) buildSpec() (cfgtree.FieldSpec, cfgtree.Issues) {
	def := b.def
	if def == nil {
		def = b.lits
	}
	return cfgtree.ListSpec{Elems: b.rule, Default: def}, nil
}

// Mapping declares a string-keyed mapping field. Fixed keys come from Key;
// Wildcard admits arbitrary other keys. A mapping with only a wildcard is an
// open dictionary; one with only fixed keys rejects unknowns.
func Mapping() *MappingBuilder { return &MappingBuilder{} }

type mappingEntry struct {
	key   string
	shape Shape
}

// MappingBuilder builds a mapping field.
type MappingBuilder struct {
	entries     []mappingEntry
	wildcard    Shape
	wildcardSet bool
	iss         cfgtree.Issues
}

// Key declares a fixed key with its own shape. The name "*" is the wildcard
// slot, never a concrete key.
func (b *MappingBuilder) Key(name string, shape Shape) *MappingBuilder {
	if name == "*" {
		return b.Wildcard(shape)
	}
	b.entries = append(b.entries, mappingEntry{key: name, shape: shape})
	return b
}

// Wildcard declares the shape for keys not fixed by Key. Declaring it twice
// is an invalid_schema issue.
func (b *MappingBuilder) Wildcard(shape Shape) *MappingBuilder {
	if b.wildcardSet {
		b.iss = append(b.iss, cfgtree.Issue{
			Path:    "/*",
			Code:    cfgtree.CodeInvalidSchema,
			Message: "wildcard declared twice",
		})
		return b
	}
	b.wildcardSet = true
	b.wildcard = shape
	return b
}

func (b *MappingBuilder) buildSpec() (cfgtree.FieldSpec, cfgtree.Issues) {
	iss := append(cfgtree.Issues(nil), b.iss...)
	sp := cfgtree.MappingSpec{}
	for _, e := range b.entries {
		if e.shape == nil {
			sp.Fields = append(sp.Fields, cfgtree.MappingField{Key: e.key})
			continue
		}
		fs, sub := e.shape.buildSpec()
		iss = append(iss, prefixIssues("/"+e.key, sub)...)
		sp.Fields = append(sp.Fields, cfgtree.MappingField{Key: e.key, Spec: fs})
	}
	if b.wildcard != nil {
		fs, sub := b.wildcard.buildSpec()
		iss = append(iss, prefixIssues("/*", sub)...)
		sp.Wildcard = fs
	}
	return sp, iss
}

// Section embeds another schema as a nested field.
func Section(s *cfgtree.Schema) *SectionBuilder { return &SectionBuilder{schema: s} }

// SectionBuilder builds a nested-schema field.
type SectionBuilder struct {
	schema *cfgtree.Schema
	rebind *cfgtree.Binding
	inline bool
}

// At stores the section in its own file, overriding whatever binding the
// embedded schema carries. A bound section only works as a schema field;
// NewNode rejects one used as a mapping value.
func (b *SectionBuilder) At(f cfgtree.Format, path string) *SectionBuilder {
	b.rebind = &cfgtree.Binding{Format: f, Path: path}
	return b
}

// Inline keeps the section's data in the parent document even when the
// embedded schema carries its own binding.
func (b *SectionBuilder) Inline() *SectionBuilder {
	b.inline = true
	return b
}

func (b *SectionBuilder) buildSpec() (cfgtree.FieldSpec, cfgtree.Issues) {
	if b.schema == nil {
		return cfgtree.NestedSpec{}, nil
	}
	s := b.schema
	switch {
	case b.rebind != nil:
		s = s.WithBinding(b.rebind.Format, b.rebind.Path)
	case b.inline:
		s = s.WithBinding("", "")
	}
	return cfgtree.NestedSpec{Schema: s}, nil
}

func prefixIssues(base string, iss cfgtree.Issues) cfgtree.Issues {
	if len(iss) == 0 {
		return nil
	}
	out := make(cfgtree.Issues, 0, len(iss))
	for _, it := range iss {
		switch {
		case it.Path == "" || it.Path == "/":
			it.Path = base
		case it.Path[0] == '/':
			it.Path = base + it.Path
		default:
			it.Path = base + "/" + it.Path
		}
		out = append(out, it)
	}
	return out
}
