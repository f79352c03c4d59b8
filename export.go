package cfgtree

import "github.com/reoring/cfgtree/jsonschema"

// ExportJSONSchema renders a schema as a JSON Schema document. Every field
// is optional (defaults make documents total), so nothing lands in required;
// unknown keys map to additionalProperties false, wildcards to a schema for
// the extra keys.
func ExportJSONSchema(s *Schema) *jsonschema.Schema {
	out := &jsonschema.Schema{
		Title:                s.name,
		Type:                 "object",
		Properties:           map[string]*jsonschema.Schema{},
		AdditionalProperties: false,
	}
	for _, f := range s.fields {
		p := specSchema(f.Spec)
		p.Description = f.Doc
		out.Properties[f.Name] = p
	}
	return out
}

func specSchema(spec FieldSpec) *jsonschema.Schema {
	switch sp := spec.(type) {
	case ScalarSpec:
		return &jsonschema.Schema{Type: jsonType(sp.Kind), Default: sp.DefaultValue()}
	case ChoiceSpec:
		return &jsonschema.Schema{
			Enum:    append([]any(nil), sp.Values...),
			Default: sp.DefaultValue(),
		}
	case ListSpec:
		out := &jsonschema.Schema{Type: "array", Items: ruleSchema(sp.Elems)}
		if scalarsOnly(sp.Default) {
			out.Default = sp.DefaultValue()
		}
		return out
	case MappingSpec:
		if sp.Open {
			return &jsonschema.Schema{Type: "object"}
		}
		out := &jsonschema.Schema{
			Type:                 "object",
			Properties:           map[string]*jsonschema.Schema{},
			AdditionalProperties: false,
		}
		for _, f := range sp.Fields {
			out.Properties[f.Key] = specSchema(f.Spec)
		}
		if sp.Wildcard != nil {
			out.AdditionalProperties = specSchema(sp.Wildcard)
		}
		return out
	case NestedSpec:
		return ExportJSONSchema(sp.Schema)
	}
	return &jsonschema.Schema{}
}

func ruleSchema(r ElemRule) *jsonschema.Schema {
	if r.open() {
		return nil
	}
	var alts []*jsonschema.Schema
	for _, k := range r.Kinds {
		alts = append(alts, &jsonschema.Schema{Type: jsonType(k)})
	}
	if len(r.Literals) > 0 {
		alts = append(alts, &jsonschema.Schema{Enum: append([]any(nil), r.Literals...)})
	}
	if r.AllowMap {
		alts = append(alts, &jsonschema.Schema{Type: "object"})
	}
	if r.AllowList {
		alts = append(alts, &jsonschema.Schema{Type: "array"})
	}
	if len(alts) == 1 {
		return alts[0]
	}
	return &jsonschema.Schema{AnyOf: alts}
}

func scalarsOnly(vals []any) bool {
	for _, v := range vals {
		if KindOf(v) == KindInvalid {
			return false
		}
	}
	return true
}

func jsonType(k Kind) string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	}
	return ""
}
