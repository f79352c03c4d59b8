package cfgtree

import (
	"context"
	"fmt"

	"github.com/reoring/cfgtree/i18n"
)

// Validate checks a raw document against a schema and returns the typed
// tree. The tree is always complete: absent fields take their defaults, and
// fields whose raw value fails validation keep their defaults while the
// failure is reported. All issues are collected unless the context carries
// WithFailFast. A nil document yields the schema's default tree and no
// error.
func Validate(ctx context.Context, s *Schema, raw any) (*Map, error) {
	c := &collector{failFast: failFast(ctx)}
	var doc *Map
	switch t := NormalizeValue(raw).(type) {
	case nil:
	case *Map:
		doc = t
	default:
		c.add(typeIssue("", "mapping", t))
		return s.DefaultTree(), c.err()
	}
	out := applySchema(c, "", s, doc)
	return out, c.err()
}

type collector struct {
	iss      Issues
	failFast bool
}

func (c *collector) add(iss ...Issue) {
	c.iss = append(c.iss, iss...)
}

func (c *collector) stop() bool {
	return c.failFast && len(c.iss) > 0
}

func (c *collector) err() error {
	if len(c.iss) == 0 {
		return nil
	}
	return c.iss
}

func typeIssue(path, expected string, got any) Issue {
	gotDesc := describeValue(got)
	return Issue{
		Path:    path,
		Code:    CodeInvalidType,
		Message: i18n.T(CodeInvalidType, map[string]string{"expected": expected, "got": gotDesc}),
		Params:  map[string]any{"expected": expected, "got": gotDesc},
	}
}

func unknownKeyIssue(path, key string) Issue {
	return Issue{
		Path:    path,
		Code:    CodeUnknownKey,
		Message: i18n.T(CodeUnknownKey, map[string]string{"key": key}),
		Params:  map[string]any{"key": key},
	}
}

// applySchema builds the typed tree for s from doc (which may be nil).
// Fields come out in declaration order; unknown document keys are reported
// in document order.
func applySchema(c *collector, base string, s *Schema, doc *Map) *Map {
	out := NewMap()
	for _, f := range s.fields {
		if c.stop() {
			out.Set(f.Name, f.Spec.DefaultValue())
			continue
		}
		var rv any
		present := false
		if doc != nil {
			rv, present = doc.Get(f.Name)
		}
		if !present {
			out.Set(f.Name, f.Spec.DefaultValue())
			continue
		}
		out.Set(f.Name, applyField(c, childPath(base, f.Name), f.Spec, rv))
	}
	if doc != nil {
		doc.Range(func(k string, _ any) bool {
			if c.stop() {
				return false
			}
			if _, known := s.index[k]; !known {
				c.add(unknownKeyIssue(childPath(base, k), k))
			}
			return true
		})
	}
	return out
}

// applyField validates one raw value against a spec. On failure it reports
// and returns the spec's default so the surrounding tree stays complete.
func applyField(c *collector, path string, spec FieldSpec, rv any) any {
	switch sp := spec.(type) {
	case ScalarSpec:
		if KindOf(rv) != sp.Kind {
			c.add(typeIssue(path, sp.Kind.String(), rv))
			return sp.DefaultValue()
		}
		return rv

	case ChoiceSpec:
		if !sp.contains(rv) {
			c.add(Issue{
				Path:    path,
				Code:    CodeInvalidEnum,
				Message: i18n.T(CodeInvalidEnum, map[string]string{"value": fmt.Sprint(rv)}),
				Hint:    "allowed: " + describeSet(sp.Values),
				Params:  map[string]any{"allowed": sp.Values},
			})
			return sp.DefaultValue()
		}
		return rv

	case ListSpec:
		seq, ok := rv.([]any)
		if !ok {
			c.add(typeIssue(path, "list", rv))
			return sp.DefaultValue()
		}
		enumOnly := len(sp.Elems.Literals) > 0 && len(sp.Elems.Kinds) == 0 &&
			!sp.Elems.AllowMap && !sp.Elems.AllowList
		bad := false
		for i, el := range seq {
			if c.stop() {
				break
			}
			if sp.Elems.Admits(el) {
				continue
			}
			bad = true
			if enumOnly {
				c.add(Issue{
					Path:    indexPath(path, i),
					Code:    CodeInvalidEnum,
					Message: i18n.T(CodeInvalidEnum, map[string]string{"value": fmt.Sprint(el)}),
					Hint:    "allowed: " + describeSet(sp.Elems.Literals),
					Params:  map[string]any{"allowed": sp.Elems.Literals},
				})
			} else {
				c.add(typeIssue(indexPath(path, i), sp.Elems.describe(), el))
			}
		}
		if bad {
			return sp.DefaultValue()
		}
		return CloneValue(seq)

	case MappingSpec:
		m, ok := rv.(*Map)
		if !ok {
			c.add(typeIssue(path, "mapping", rv))
			return sp.DefaultValue()
		}
		if sp.Open {
			return CloneValue(m)
		}
		out := NewMap()
		for _, f := range sp.Fields {
			if c.stop() {
				out.Set(f.Key, f.Spec.DefaultValue())
				continue
			}
			fv, present := m.Get(f.Key)
			if !present {
				out.Set(f.Key, f.Spec.DefaultValue())
				continue
			}
			out.Set(f.Key, applyField(c, childPath(path, f.Key), f.Spec, fv))
		}
		m.Range(func(k string, kv any) bool {
			if c.stop() {
				return false
			}
			if _, fixed := sp.field(k); fixed {
				return true
			}
			if sp.Wildcard == nil {
				c.add(unknownKeyIssue(childPath(path, k), k))
				return true
			}
			before := len(c.iss)
			v := applyField(c, childPath(path, k), sp.Wildcard, kv)
			if len(c.iss) == before {
				out.Set(k, v)
			}
			return true
		})
		return out

	case NestedSpec:
		m, ok := rv.(*Map)
		if !ok {
			c.add(typeIssue(path, "mapping", rv))
			return sp.DefaultValue()
		}
		return applySchema(c, path, sp.Schema, m)

	default:
		c.add(Issue{
			Path:    path,
			Code:    CodeInvalidSchema,
			Message: fmt.Sprintf("unsupported field spec %T", spec),
		})
		return nil
	}
}

func describeValue(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case *Map:
		return "mapping"
	case []any:
		return "list"
	}
	if k := KindOf(v); k != KindInvalid {
		return k.String()
	}
	return fmt.Sprintf("%T", v)
}

func describeSet(vals []any) string {
	out := ""
	for i, v := range vals {
		if i > 0 {
			out += "|"
		}
		out += fmt.Sprint(v)
	}
	return out
}
