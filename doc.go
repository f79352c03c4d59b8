// Package cfgtree provides:
//
//   - Declarative configuration schemas with literal-driven defaults
//     (scalar, choice, list, mapping and nested fields)
//   - Validation that never truncates the tree: absent or failing fields
//     fall back to defaults while every finding is reported as Issues
//     (pointer-style path, code, message)
//   - A persistence tree of Nodes, one file binding per node, with
//     recursive Load/Save and three-level binding precedence
//   - JSON, TOML and YAML adapters that keep mapping keys in document order
//
// Design policy:
//   - Keep only public APIs in the root package; the dsl package declares
//     schemas, the format package holds the adapters, cmd/cfgtree the CLI.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	schema := dsl.Config("app").
//		Path(cfgtree.FormatYAML, "app.yaml").
//		Field("host", dsl.String("127.0.0.1")).
//		Field("port", dsl.Int(8080)).
//		MustBuild()
//
//	node, err := cfgtree.NewNode(schema)
//	err = node.Load(ctx) // missing file: pure defaults, no error
//	host, _ := node.GetString("host")
//	err = node.Set(ctx, "port", 9090)
//	err = node.Save(ctx)
package cfgtree
