package cfgtree

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/reoring/cfgtree/i18n"
)

// ErrNoBinding is returned by Save when neither the node nor any descendant
// is bound to a file.
var ErrNoBinding = errors.New("cfgtree: node has no file binding")

// Node is a live configuration tree: a schema's typed values plus the file
// bindings that persist them. Every nested field gets a child node; a child
// bound to its own file loads and saves there, an unbound child stores its
// data inline in the parent document. Bindings resolve in three steps: a
// point-of-use override given to NewNode wins over the nested schema's own
// binding, which wins over inline storage.
type Node struct {
	name     string
	schema   *Schema
	parent   *Node
	children map[string]*Node

	values *Map

	format       Format
	path         string
	adapters     map[Format]Adapter
	skipDefaults bool
}

type nodeConfig struct {
	binding      *Binding
	overrides    map[string]Binding
	adapters     map[Format]Adapter
	skipDefaults bool
}

// NodeOption configures NewNode.
type NodeOption func(*nodeConfig)

// WithPath binds the root schema to a file, overriding any binding the
// schema itself carries.
func WithPath(f Format, path string) NodeOption {
	return func(c *nodeConfig) { c.binding = &Binding{Format: f, Path: path} }
}

// WithChildPath binds the nested field at a dotted path (such as "db" or
// "db.pool") to its own file, overriding the nested schema's binding.
func WithChildPath(field string, f Format, path string) NodeOption {
	return func(c *nodeConfig) { c.overrides[field] = Binding{Format: f, Path: path} }
}

// WithAdapter installs a format adapter for this node tree only, shadowing
// the global registry.
func WithAdapter(f Format, a Adapter) NodeOption {
	return func(c *nodeConfig) { c.adapters[f] = a }
}

// WithSkipDefaults makes Save omit fields whose value equals the schema
// default, so files carry only what was changed.
func WithSkipDefaults() NodeOption {
	return func(c *nodeConfig) { c.skipDefaults = true }
}

// NewNode builds the node tree for a schema. Values start out as the
// schema's defaults; call Load to pull in files. Binding overrides that do
// not address a nested field are reported as invalid_schema issues, and so is
// a file-bound section used as a mapping value, which no child node could
// load.
func NewNode(schema *Schema, opts ...NodeOption) (*Node, error) {
	if schema == nil {
		return nil, Issues{{Code: CodeInvalidSchema, Message: "nil schema"}}
	}
	cfg := &nodeConfig{
		overrides: map[string]Binding{},
		adapters:  map[Format]Adapter{},
	}
	for _, o := range opts {
		o(cfg)
	}
	var iss Issues
	for _, f := range schema.fields {
		iss = append(iss, buriedBindings(childPath("", f.Name), f.Spec, false)...)
	}
	consumed := map[string]bool{}
	n := buildNode(schema, "", "", nil, schema.DefaultTree(), cfg, consumed)
	if b := cfg.binding; b != nil {
		n.format, n.path = b.Format, b.Path
	} else if b, ok := schema.Binding(); ok {
		n.format, n.path = b.Format, b.Path
	}
	n.foldSharedBindings(nil)
	for field := range cfg.overrides {
		if !consumed[field] {
			iss = append(iss, Issue{
				Path:    "",
				Code:    CodeInvalidSchema,
				Message: fmt.Sprintf("binding override %q does not address a nested field", field),
			})
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return n, nil
}

// buriedBindings reports file bindings no child node can claim. Child nodes
// exist only for fields whose spec is a nested schema; a bound section placed
// as a mapping value would keep its data inline and never touch its file.
func buriedBindings(path string, spec FieldSpec, underMapping bool) Issues {
	var iss Issues
	switch sp := spec.(type) {
	case NestedSpec:
		if sp.Schema == nil {
			return nil
		}
		if underMapping {
			if _, ok := sp.Schema.Binding(); ok {
				iss = append(iss, Issue{
					Path:    path,
					Code:    CodeInvalidSchema,
					Message: "bound section under a mapping never loads its file; declare it inline",
				})
			}
		}
		for _, f := range sp.Schema.fields {
			iss = append(iss, buriedBindings(childPath(path, f.Name), f.Spec, underMapping)...)
		}
	case MappingSpec:
		for _, f := range sp.Fields {
			iss = append(iss, buriedBindings(childPath(path, f.Key), f.Spec, true)...)
		}
		if sp.Wildcard != nil {
			iss = append(iss, buriedBindings(childPath(path, "*"), sp.Wildcard, true)...)
		}
	}
	return iss
}

func buildNode(s *Schema, name, dotted string, parent *Node, values *Map, cfg *nodeConfig, consumed map[string]bool) *Node {
	n := &Node{
		name:         name,
		schema:       s,
		parent:       parent,
		children:     map[string]*Node{},
		values:       values,
		adapters:     cfg.adapters,
		skipDefaults: cfg.skipDefaults,
	}
	for _, f := range s.fields {
		ns, ok := f.Spec.(NestedSpec)
		if !ok {
			continue
		}
		sub, _ := values.Get(f.Name)
		subTree, _ := sub.(*Map)
		childDotted := f.Name
		if dotted != "" {
			childDotted = dotted + "." + f.Name
		}
		child := buildNode(ns.Schema, f.Name, childDotted, n, subTree, cfg, consumed)
		if b, ok := cfg.overrides[childDotted]; ok {
			consumed[childDotted] = true
			child.format, child.path = b.Format, b.Path
		} else if b, ok := ns.Schema.Binding(); ok {
			child.format, child.path = b.Format, b.Path
		}
		n.children[f.Name] = child
	}
	return n
}

func (n *Node) bound() bool { return n.path != "" }

// foldSharedBindings clears any binding that points at the same file as the
// nearest bound ancestor. Such a node stores its data inline in the shared
// document instead of writing the file a second time.
func (n *Node) foldSharedBindings(owner *Binding) {
	if n.bound() {
		if owner != nil && owner.Format == n.format && owner.Path == n.path {
			n.format, n.path = "", ""
		} else {
			owner = &Binding{Format: n.format, Path: n.path}
		}
	}
	for _, c := range n.children {
		c.foldSharedBindings(owner)
	}
}

// Schema returns the node's schema.
func (n *Node) Schema() *Schema { return n.schema }

// Child returns the node for a nested field.
func (n *Node) Child(name string) (*Node, bool) {
	c, ok := n.children[name]
	return c, ok
}

// Path returns the file path the node is bound to, or "".
func (n *Node) Path() string { return n.path }

// Format returns the bound file format; meaningful only when Path is set.
func (n *Node) Format() Format { return n.format }

func (n *Node) adapter(f Format) (Adapter, error) {
	if a, ok := n.adapters[f]; ok {
		return a, nil
	}
	if a, ok := AdapterFor(f); ok {
		return a, nil
	}
	return nil, fmt.Errorf("cfgtree: no adapter registered for format %q (import %s)", f, "github.com/reoring/cfgtree/format")
}

// stripBound removes keys claimed by file-bound descendants from a raw
// document; their data lives in their own files and inline copies are
// ignored.
func (n *Node) stripBound(raw *Map) {
	for _, c := range n.children {
		if c.bound() {
			raw.Delete(c.name)
			continue
		}
		if sub, ok := raw.Get(c.name); ok {
			if m, ok := sub.(*Map); ok {
				c.stripBound(m)
			}
		}
	}
}

// install replaces the node's tree and re-aliases descendants so parent and
// child views stay the same underlying maps.
func (n *Node) install(tree *Map) {
	n.values = tree
	if n.parent != nil {
		n.parent.values.Set(n.name, tree)
	}
	for _, f := range n.schema.fields {
		c, ok := n.children[f.Name]
		if !ok {
			continue
		}
		sub, _ := tree.Get(f.Name)
		if m, ok := sub.(*Map); ok {
			c.install(m)
		}
	}
}

// Load reads the node's file, validates it, and installs the typed tree,
// then loads every file-bound descendant. A missing file counts as an empty
// document, so the node comes back with pure defaults. Read errors return
// verbatim; unparsable files return Issues with code parse_error and the
// node keeps its previous values. Validation failures return Issues while
// the affected fields fall back to their defaults, keeping the tree complete.
func (n *Node) Load(ctx context.Context) error {
	var iss Issues
	if n.bound() {
		data, err := os.ReadFile(n.path)
		switch {
		case err == nil:
			a, aerr := n.adapter(n.format)
			if aerr != nil {
				return aerr
			}
			raw, perr := a.Parse(data)
			if perr != nil {
				return Issues{{
					Path:    "",
					Code:    CodeParseError,
					Message: i18n.T(CodeParseError, map[string]string{"file": n.path}),
					Cause:   perr,
				}}
			}
			n.stripBound(raw)
			tree, verr := Validate(ctx, n.schema, raw)
			if vis, ok := AsIssues(verr); ok {
				iss = AppendIssues(iss, vis...)
			}
			n.install(tree)
		case errors.Is(err, fs.ErrNotExist):
			n.install(n.schema.DefaultTree())
		default:
			return err
		}
	} else {
		n.install(n.schema.DefaultTree())
	}
	sub, err := n.loadChildren(ctx)
	if err != nil {
		return err
	}
	iss = append(iss, sub...)
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func (n *Node) loadChildren(ctx context.Context) (Issues, error) {
	var iss Issues
	for _, f := range n.schema.fields {
		c, ok := n.children[f.Name]
		if !ok {
			continue
		}
		if c.bound() {
			err := c.Load(ctx)
			if err == nil {
				continue
			}
			if cis, ok := AsIssues(err); ok {
				iss = append(iss, rebase(childPath("", c.name), cis)...)
				continue
			}
			return nil, err
		}
		sub, err := c.loadChildren(ctx)
		if err != nil {
			return nil, err
		}
		iss = append(iss, rebase(childPath("", c.name), sub)...)
	}
	return iss, nil
}

// Save writes the node's document and every file-bound descendant's. Data
// owned by a bound descendant is left out of the parent document. Returns
// ErrNoBinding when there is nowhere to write.
func (n *Node) Save(ctx context.Context) error {
	wrote, err := n.save(ctx)
	if err != nil {
		return err
	}
	if !wrote {
		return ErrNoBinding
	}
	return nil
}

func (n *Node) save(ctx context.Context) (bool, error) {
	wrote := false
	if n.bound() {
		a, err := n.adapter(n.format)
		if err != nil {
			return false, err
		}
		data, err := a.Serialize(n.exportDoc())
		if err != nil {
			return false, err
		}
		if err := os.WriteFile(n.path, data, 0o644); err != nil {
			return false, err
		}
		wrote = true
	}
	for _, f := range n.schema.fields {
		c, ok := n.children[f.Name]
		if !ok {
			continue
		}
		w, err := c.save(ctx)
		if err != nil {
			return false, err
		}
		wrote = wrote || w
	}
	return wrote, nil
}

// exportDoc renders the node's serializable document: bound children are
// stripped, inline children recurse, and with skipDefaults fields equal to
// their default are dropped.
func (n *Node) exportDoc() *Map {
	out := NewMap()
	for _, f := range n.schema.fields {
		if c, ok := n.children[f.Name]; ok {
			if c.bound() {
				continue
			}
			sub := c.exportDoc()
			if n.skipDefaults && sub.Len() == 0 {
				continue
			}
			out.Set(f.Name, sub)
			continue
		}
		v, _ := n.values.Get(f.Name)
		if n.skipDefaults && DeepEqual(v, f.Spec.DefaultValue()) {
			continue
		}
		out.Set(f.Name, CloneValue(v))
	}
	return out
}

// Tree returns a deep copy of the typed tree.
func (n *Node) Tree() *Map { return n.values.Clone() }

// Get navigates the tree by a dotted path such as "server.port" and returns
// the live value. Containers come back by reference; use Set to change
// values under validation.
func (n *Node) Get(path string) (any, bool) {
	cur := any(n.values)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(*Map)
		if !ok {
			return nil, false
		}
		cur, ok = m.Get(seg)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// GetString returns the string at a dotted path.
func (n *Node) GetString(path string) (string, bool) {
	v, ok := n.Get(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetBool returns the bool at a dotted path.
func (n *Node) GetBool(path string) (bool, bool) {
	v, ok := n.Get(path)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetInt returns the integer at a dotted path.
func (n *Node) GetInt(path string) (int64, bool) {
	v, ok := n.Get(path)
	if !ok {
		return 0, false
	}
	i, ok := v.(int64)
	return i, ok
}

// GetFloat returns the float at a dotted path.
func (n *Node) GetFloat(path string) (float64, bool) {
	v, ok := n.Get(path)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// GetList returns the sequence at a dotted path.
func (n *Node) GetList(path string) ([]any, bool) {
	v, ok := n.Get(path)
	if !ok {
		return nil, false
	}
	l, ok := v.([]any)
	return l, ok
}

// GetMap returns the mapping at a dotted path.
func (n *Node) GetMap(path string) (*Map, bool) {
	v, ok := n.Get(path)
	if !ok {
		return nil, false
	}
	m, ok := v.(*Map)
	return m, ok
}

// IsDefault reports whether the value at a dotted path equals the field's
// declared default, and whether the path addresses a present value with one.
// The empty path asks about the whole tree. Keys inside an open mapping have
// no declared default and report false.
func (n *Node) IsDefault(path string) (bool, bool) {
	if path == "" {
		return DeepEqual(n.values, n.schema.DefaultTree()), true
	}
	segs := strings.Split(path, ".")
	spec, err := specAt(n.schema, segs)
	if err != nil || spec == nil {
		return false, false
	}
	v, ok := n.Get(path)
	if !ok {
		return false, false
	}
	return DeepEqual(v, spec.DefaultValue()), true
}

// Set validates v against the field spec at a dotted path and writes it into
// the tree. New mapping keys are accepted where the spec has a wildcard, and
// anything goes below an open mapping. Failures return Issues and leave the
// tree untouched.
func (n *Node) Set(ctx context.Context, path string, v any) error {
	segs := strings.Split(path, ".")
	spec, err := specAt(n.schema, segs)
	if err != nil {
		return err
	}
	nv := NormalizeValue(v)
	if spec == nil {
		return n.setValue(segs, CloneValue(nv))
	}
	c := &collector{failFast: failFast(ctx)}
	nv = applyField(c, pointerPath(segs), spec, nv)
	if err := c.err(); err != nil {
		return err
	}
	return n.setValue(segs, nv)
}

func pointerPath(segs []string) string {
	p := ""
	for _, s := range segs {
		p = childPath(p, s)
	}
	return p
}

// specAt resolves the field spec addressed by dotted-path segments. A nil
// spec with a nil error means the path lands inside an open mapping, where
// any value is allowed.
func specAt(s *Schema, segs []string) (FieldSpec, error) {
	if len(segs) == 0 || segs[0] == "" {
		return nil, Issues{{Path: "", Code: CodeUnknownKey, Message: "empty path"}}
	}
	var spec FieldSpec
	for i, seg := range segs {
		at := pointerPath(segs[:i+1])
		switch {
		case i == 0 || spec == nil:
			f, ok := s.Field(seg)
			if !ok {
				return nil, Issues{unknownKeyIssue(at, seg)}
			}
			spec = f.Spec
		default:
			switch sp := spec.(type) {
			case NestedSpec:
				f, ok := sp.Schema.Field(seg)
				if !ok {
					return nil, Issues{unknownKeyIssue(at, seg)}
				}
				spec = f.Spec
			case MappingSpec:
				if sp.Open {
					return nil, nil
				}
				if fs, ok := sp.field(seg); ok {
					spec = fs
				} else if sp.Wildcard != nil {
					spec = sp.Wildcard
				} else {
					return nil, Issues{unknownKeyIssue(at, seg)}
				}
			default:
				return nil, Issues{{Path: at, Code: CodeUnknownKey, Message: fmt.Sprintf("%q does not address a container", segs[i-1])}}
			}
		}
	}
	return spec, nil
}

// setValue writes an already-validated value at the segments, re-aliasing
// child nodes when the path replaces a whole nested subtree.
func (n *Node) setValue(segs []string, v any) error {
	node := n
	i := 0
	for i < len(segs) {
		c, ok := node.children[segs[i]]
		if !ok {
			break
		}
		node = c
		i++
	}
	rest := segs[i:]
	if len(rest) == 0 {
		node.install(v.(*Map))
		return nil
	}
	cur := node.values
	for j := 0; j < len(rest)-1; j++ {
		next, ok := cur.Get(rest[j])
		if !ok {
			return Issues{{
				Path:    pointerPath(segs[:i+j+1]),
				Code:    CodeUnknownKey,
				Message: fmt.Sprintf("no value at %q; set the enclosing mapping first", rest[j]),
			}}
		}
		m, ok := next.(*Map)
		if !ok {
			return Issues{{
				Path:    pointerPath(segs[:i+j+1]),
				Code:    CodeInvalidType,
				Message: fmt.Sprintf("%q is not a mapping", rest[j]),
			}}
		}
		cur = m
	}
	cur.Set(rest[len(rest)-1], v)
	return nil
}
