package cfgtree

// Field is one named entry of a schema.
type Field struct {
	Name string
	Spec FieldSpec
	Doc  string
}

// Schema is a compiled configuration layout: an ordered list of fields, each
// with a shape, plus an optional file binding. Schemas are immutable after
// construction; the dsl package is the usual way to build one.
type Schema struct {
	name    string
	fields  []Field
	index   map[string]int
	binding *Binding
}

// Binding ties a schema to a file of a given format.
type Binding struct {
	Format Format
	Path   string
}

// NewSchema compiles fields into a schema. It verifies the declaration and
// returns Issues with code invalid_schema when defaults contradict shapes,
// names collide, or a field has no spec.
func NewSchema(name string, fields ...Field) (*Schema, error) {
	s := &Schema{
		name:   name,
		fields: append([]Field(nil), fields...),
		index:  make(map[string]int, len(fields)),
	}
	var iss Issues
	for i, f := range s.fields {
		if f.Name == "" {
			iss = append(iss, Issue{Path: "", Code: CodeInvalidSchema, Message: "field has no name"})
			continue
		}
		if _, dup := s.index[f.Name]; dup {
			iss = append(iss, Issue{Path: childPath("", f.Name), Code: CodeInvalidSchema, Message: "duplicate field name"})
			continue
		}
		s.index[f.Name] = i
		if f.Spec == nil {
			iss = append(iss, Issue{Path: childPath("", f.Name), Code: CodeInvalidSchema, Message: "field has no spec"})
			continue
		}
		iss = append(iss, f.Spec.verify(childPath("", f.Name))...)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return s, nil
}

// MustSchema is NewSchema that panics on a bad declaration. Intended for
// package-level schema variables.
func MustSchema(name string, fields ...Field) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns the fields in declaration order. The slice is a copy.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks a field up by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// WithBinding returns a copy of the schema bound to a file. The zero path
// clears the binding.
func (s *Schema) WithBinding(f Format, path string) *Schema {
	cp := *s
	if path == "" {
		cp.binding = nil
	} else {
		cp.binding = &Binding{Format: f, Path: path}
	}
	return &cp
}

// Binding returns the schema's own file binding, when it has one.
func (s *Schema) Binding() (Binding, bool) {
	if s.binding == nil {
		return Binding{}, false
	}
	return *s.binding, true
}

// DefaultTree builds the fully-defaulted document for the schema: every
// field present with its default value, in declaration order. Nested schemas
// contribute their own default trees whether or not they are bound to
// separate files.
func (s *Schema) DefaultTree() *Map {
	out := NewMap()
	for _, f := range s.fields {
		out.Set(f.Name, f.Spec.DefaultValue())
	}
	return out
}
