// Package format provides the JSON, TOML and YAML adapters that convert
// between file bytes and the cfgtree generic tree. Importing the package
// registers all three in the cfgtree adapter registry:
//
//	import _ "github.com/reoring/cfgtree/format"
//
// Each adapter keeps mapping keys in document order on parse and writes them
// back in tree order on serialize.
package format

import cfgtree "github.com/reoring/cfgtree"

func init() {
	cfgtree.RegisterAdapter(cfgtree.FormatJSON, JSON{})
	cfgtree.RegisterAdapter(cfgtree.FormatTOML, TOML{})
	cfgtree.RegisterAdapter(cfgtree.FormatYAML, YAML{})
}
