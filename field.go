package cfgtree

import "fmt"

// FieldSpec describes the shape of one configuration field. The concrete
// variants are ScalarSpec, ChoiceSpec, ListSpec, MappingSpec and NestedSpec;
// the dsl package builds them from declarations. The unexported verify method
// closes the set.
type FieldSpec interface {
	// DefaultValue returns the tree value a document receives when the
	// field is absent. The result is freshly built on each call.
	DefaultValue() any

	verify(path string) Issues
}

// ScalarSpec admits a single scalar of a fixed kind.
type ScalarSpec struct {
	Kind    Kind
	Default any // nil means the kind's zero value
}

func (s ScalarSpec) DefaultValue() any {
	if s.Default != nil {
		return s.Default
	}
	return s.Kind.Zero()
}

func (s ScalarSpec) verify(path string) Issues {
	var iss Issues
	if s.Kind == KindInvalid {
		iss = append(iss, Issue{Path: path, Code: CodeInvalidSchema, Message: "scalar field has no kind"})
		return iss
	}
	if s.Default != nil && KindOf(s.Default) != s.Kind {
		iss = append(iss, Issue{
			Path:    path,
			Code:    CodeInvalidSchema,
			Message: fmt.Sprintf("default %v is not %s", s.Default, s.Kind),
		})
	}
	return iss
}

// ChoiceSpec admits one scalar out of a closed set. When Default is nil the
// first member of the set is the default.
type ChoiceSpec struct {
	Values  []any
	Default any
}

func (s ChoiceSpec) DefaultValue() any {
	if s.Default != nil {
		return s.Default
	}
	if len(s.Values) > 0 {
		return s.Values[0]
	}
	return nil
}

func (s ChoiceSpec) contains(v any) bool {
	for _, allowed := range s.Values {
		if DeepEqual(v, allowed) {
			return true
		}
	}
	return false
}

func (s ChoiceSpec) verify(path string) Issues {
	var iss Issues
	if len(s.Values) == 0 {
		iss = append(iss, Issue{Path: path, Code: CodeInvalidSchema, Message: "choice field has no values"})
		return iss
	}
	kind := KindInvalid
	for _, v := range s.Values {
		k := KindOf(v)
		if k == KindInvalid {
			iss = append(iss, Issue{
				Path:    path,
				Code:    CodeInvalidSchema,
				Message: fmt.Sprintf("choice value %v is not a scalar", v),
			})
			continue
		}
		if kind == KindInvalid {
			kind = k
		} else if k != kind {
			iss = append(iss, Issue{
				Path:    path,
				Code:    CodeInvalidSchema,
				Message: fmt.Sprintf("choice values mix %s and %s", kind, k),
			})
			return iss
		}
	}
	if s.Default != nil && !s.contains(s.Default) {
		iss = append(iss, Issue{
			Path:    path,
			Code:    CodeInvalidSchema,
			Message: fmt.Sprintf("default %v is not among the choice values", s.Default),
		})
	}
	return iss
}

// ElemRule constrains the elements of a list. Literals admit exact values,
// Kinds admit whole scalar kinds, AllowMap and AllowList admit container
// elements. An element passes when any part of the rule admits it; the zero
// rule admits everything.
type ElemRule struct {
	Literals  []any
	Kinds     []Kind
	AllowMap  bool
	AllowList bool
}

func (r ElemRule) open() bool {
	return len(r.Literals) == 0 && len(r.Kinds) == 0 && !r.AllowMap && !r.AllowList
}

// Admits reports whether the rule accepts v as a list element.
func (r ElemRule) Admits(v any) bool {
	if r.open() {
		return true
	}
	for _, lit := range r.Literals {
		if DeepEqual(v, lit) {
			return true
		}
	}
	switch v.(type) {
	case *Map:
		return r.AllowMap
	case []any:
		return r.AllowList
	}
	k := KindOf(v)
	for _, allowed := range r.Kinds {
		if k == allowed {
			return true
		}
	}
	return false
}

// describe renders the rule for error messages, e.g. "string|'reload'|map".
func (r ElemRule) describe() string {
	if r.open() {
		return "any"
	}
	var parts []string
	for _, k := range r.Kinds {
		parts = append(parts, k.String())
	}
	for _, lit := range r.Literals {
		parts = append(parts, fmt.Sprintf("%v", lit))
	}
	if r.AllowMap {
		parts = append(parts, "map")
	}
	if r.AllowList {
		parts = append(parts, "list")
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "|"
		}
		out += p
	}
	return out
}

// ListSpec admits a sequence whose elements satisfy Elems.
type ListSpec struct {
	Elems   ElemRule
	Default []any
}

func (s ListSpec) DefaultValue() any {
	out := make([]any, len(s.Default))
	for i := range s.Default {
		out[i] = CloneValue(s.Default[i])
	}
	return out
}

func (s ListSpec) verify(path string) Issues {
	var iss Issues
	for _, lit := range s.Elems.Literals {
		if KindOf(lit) == KindInvalid {
			iss = append(iss, Issue{
				Path:    path,
				Code:    CodeInvalidSchema,
				Message: fmt.Sprintf("list literal %v is not a scalar", lit),
			})
		}
	}
	for i, v := range s.Default {
		if !s.Elems.Admits(v) {
			iss = append(iss, Issue{
				Path:    indexPath(path, i),
				Code:    CodeInvalidSchema,
				Message: fmt.Sprintf("default element %v violates the element rule", v),
			})
		}
	}
	return iss
}

// MappingField is one fixed key of a MappingSpec.
type MappingField struct {
	Key  string
	Spec FieldSpec
}

// MappingSpec admits a string-keyed mapping. Fixed keys validate against
// their own specs; other keys validate against Wildcard when set and are
// rejected as unknown otherwise. Open admits any content verbatim and must
// not be combined with Fields or Wildcard.
type MappingSpec struct {
	Fields   []MappingField
	Wildcard FieldSpec
	Open     bool
}

func (s MappingSpec) field(key string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f.Spec, true
		}
	}
	return nil, false
}

func (s MappingSpec) DefaultValue() any {
	out := NewMap()
	for _, f := range s.Fields {
		out.Set(f.Key, f.Spec.DefaultValue())
	}
	return out
}

func (s MappingSpec) verify(path string) Issues {
	var iss Issues
	if s.Open && (len(s.Fields) > 0 || s.Wildcard != nil) {
		iss = append(iss, Issue{Path: path, Code: CodeInvalidSchema, Message: "open mapping cannot declare keys"})
	}
	seen := map[string]bool{}
	for _, f := range s.Fields {
		if seen[f.Key] {
			iss = append(iss, Issue{
				Path:    childPath(path, f.Key),
				Code:    CodeInvalidSchema,
				Message: "duplicate mapping key",
			})
			continue
		}
		seen[f.Key] = true
		if f.Spec == nil {
			iss = append(iss, Issue{Path: childPath(path, f.Key), Code: CodeInvalidSchema, Message: "mapping key has no spec"})
			continue
		}
		iss = append(iss, f.Spec.verify(childPath(path, f.Key))...)
	}
	if s.Wildcard != nil {
		iss = append(iss, s.Wildcard.verify(childPath(path, "*"))...)
	}
	return iss
}

// NestedSpec embeds another schema as a field. The nested schema may carry
// its own file binding, in which case the parent stores only what the
// binding does not claim.
type NestedSpec struct {
	Schema *Schema
}

func (s NestedSpec) DefaultValue() any {
	if s.Schema == nil {
		return NewMap()
	}
	return s.Schema.DefaultTree()
}

func (s NestedSpec) verify(path string) Issues {
	if s.Schema == nil {
		return Issues{{Path: path, Code: CodeInvalidSchema, Message: "nested field has no schema"}}
	}
	return nil
}
