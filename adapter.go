package cfgtree

import (
	"path/filepath"
	"strings"
	"sync"
)

// Format names a configuration file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Adapter converts between file bytes and the generic tree. Parse returns an
// ordered mapping whose leaves are canonical scalars; Serialize renders one
// back, keeping key order. Implementations for JSON, TOML and YAML live in
// the format subpackage and register themselves on import.
type Adapter interface {
	Parse(data []byte) (*Map, error)
	Serialize(doc *Map) ([]byte, error)
}

var (
	adapterMu sync.RWMutex
	adapters  = map[Format]Adapter{}
)

// RegisterAdapter installs the adapter for a format, replacing any previous
// one. Safe for concurrent use.
func RegisterAdapter(f Format, a Adapter) {
	adapterMu.Lock()
	defer adapterMu.Unlock()
	adapters[f] = a
}

// AdapterFor returns the registered adapter for a format.
func AdapterFor(f Format) (Adapter, bool) {
	adapterMu.RLock()
	defer adapterMu.RUnlock()
	a, ok := adapters[f]
	return a, ok
}

// FormatForPath derives the format from a file extension: .json, .toml,
// .yaml and .yml are recognized.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".toml":
		return FormatTOML, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}
