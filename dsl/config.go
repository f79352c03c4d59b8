// Package dsl declares cfgtree schemas with a fluent builder:
//
//	schema, err := dsl.Config("server").
//		Path(cfgtree.FormatYAML, "server.yaml").
//		Field("host", dsl.String("127.0.0.1")).
//		Field("port", dsl.Int(8080)).
//		Field("log", dsl.Section(logSchema)).
//		Build()
//
// Build compiles and verifies the declaration; MustBuild panics on a bad
// one, which suits package-level schema variables.
package dsl

import (
	cfgtree "github.com/reoring/cfgtree"
)

type configEntry struct {
	name  string
	shape Shape
	doc   string
}

// ConfigBuilder accumulates a schema declaration.
type ConfigBuilder struct {
	name    string
	binding *cfgtree.Binding
	entries []configEntry
}

// Config starts a schema declaration with the given name.
func Config(name string) *ConfigBuilder {
	return &ConfigBuilder{name: name}
}

// Path binds the schema to a file of the given format.
func (b *ConfigBuilder) Path(f cfgtree.Format, path string) *ConfigBuilder {
	b.binding = &cfgtree.Binding{Format: f, Path: path}
	return b
}

// Field declares a field with its shape.
func (b *ConfigBuilder) Field(name string, shape Shape) *FieldStep {
	b.entries = append(b.entries, configEntry{name: name, shape: shape})
	return &FieldStep{b: b, idx: len(b.entries) - 1}
}

// FieldStep continues the chain after Field, optionally attaching a doc
// string to the field just declared.
type FieldStep struct {
	b   *ConfigBuilder
	idx int
}

// Doc attaches a description; the JSON Schema export carries it.
func (f *FieldStep) Doc(text string) *ConfigBuilder {
	f.b.entries[f.idx].doc = text
	return f.b
}

func (f *FieldStep) Field(name string, shape Shape) *FieldStep {
	return f.b.Field(name, shape)
}
func (f *FieldStep) Path(fm cfgtree.Format, path string) *ConfigBuilder { return f.b.Path(fm, path) }
func (f *FieldStep) Build() (*cfgtree.Schema, error)                    { return f.b.Build() }
func (f *FieldStep) MustBuild() *cfgtree.Schema                         { return f.b.MustBuild() }

// Build compiles the declaration. All declaration problems come back
// together as Issues with code invalid_schema.
func (b *ConfigBuilder) Build() (*cfgtree.Schema, error) {
	var iss cfgtree.Issues
	fields := make([]cfgtree.Field, 0, len(b.entries))
	for _, e := range b.entries {
		var spec cfgtree.FieldSpec
		if e.shape != nil {
			var sub cfgtree.Issues
			spec, sub = e.shape.buildSpec()
			iss = append(iss, prefixIssues("/"+e.name, sub)...)
		}
		fields = append(fields, cfgtree.Field{Name: e.name, Spec: spec, Doc: e.doc})
	}
	s, err := cfgtree.NewSchema(b.name, fields...)
	if err != nil {
		more, ok := cfgtree.AsIssues(err)
		if !ok {
			return nil, err
		}
		iss = append(iss, more...)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	if b.binding != nil {
		s = s.WithBinding(b.binding.Format, b.binding.Path)
	}
	return s, nil
}

// MustBuild is Build that panics on declaration errors.
func (b *ConfigBuilder) MustBuild() *cfgtree.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
