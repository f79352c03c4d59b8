package format

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	j "github.com/goccy/go-json"

	cfgtree "github.com/reoring/cfgtree"
)

// TOML is the adapter for TOML documents. Decoding goes through
// BurntSushi/toml; MetaData.Keys supplies the document order the plain map
// result loses. Encoding is done here so tables come out in tree order,
// which the upstream encoder would sort.
type TOML struct{}

func (TOML) Parse(data []byte) (*cfgtree.Map, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}
	root := cfgtree.NewMap()
	for _, key := range md.Keys() {
		insertTOMLKey(root, raw, []string(key))
	}
	fillTOML(root, raw)
	return root, nil
}

// insertTOMLKey places the value at a metadata key path into the ordered
// tree, creating intermediate tables in encounter order.
func insertTOMLKey(root *cfgtree.Map, raw map[string]any, path []string) {
	if len(path) == 0 {
		return
	}
	cur := raw
	for i := 0; i < len(path)-1; i++ {
		next, ok := cur[path[i]].(map[string]any)
		if !ok {
			return // inside an array of tables; the array is set at its own key
		}
		cur = next
	}
	leaf := path[len(path)-1]
	v, ok := cur[leaf]
	if !ok {
		return
	}
	dst := root
	for i := 0; i < len(path)-1; i++ {
		got, ok := dst.Get(path[i])
		if !ok {
			m := cfgtree.NewMap()
			dst.Set(path[i], m)
			dst = m
			continue
		}
		m, ok := got.(*cfgtree.Map)
		if !ok {
			return
		}
		dst = m
	}
	if _, isTable := v.(map[string]any); isTable {
		if !dst.Has(leaf) {
			dst.Set(leaf, cfgtree.NewMap())
		}
		return
	}
	if !dst.Has(leaf) {
		dst.Set(leaf, cfgtree.NormalizeValue(v))
	}
}

// fillTOML adds whatever the metadata walk did not cover, such as inline
// table members, falling back to sorted key order.
func fillTOML(dst *cfgtree.Map, src map[string]any) {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := src[k]
		got, has := dst.Get(k)
		if !has {
			dst.Set(k, cfgtree.NormalizeValue(v))
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			if m, ok := got.(*cfgtree.Map); ok {
				fillTOML(m, sub)
			}
		}
	}
}

func (TOML) Serialize(doc *cfgtree.Map) ([]byte, error) {
	if doc == nil {
		doc = cfgtree.NewMap()
	}
	var buf bytes.Buffer
	if err := encodeTOMLTable(&buf, doc, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeTOMLTable writes scalar and array entries first, then one [table]
// block per nested mapping, so values stay attached to the right header.
func encodeTOMLTable(buf *bytes.Buffer, m *cfgtree.Map, path []string) error {
	var tables []string
	var werr error
	m.Range(func(k string, v any) bool {
		if _, ok := v.(*cfgtree.Map); ok {
			tables = append(tables, k)
			return true
		}
		s, err := encodeTOMLValue(v)
		if err != nil {
			werr = err
			return false
		}
		buf.WriteString(tomlKey(k))
		buf.WriteString(" = ")
		buf.WriteString(s)
		buf.WriteByte('\n')
		return true
	})
	if werr != nil {
		return werr
	}
	for _, k := range tables {
		v, _ := m.Get(k)
		full := append(append([]string{}, path...), k)
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteByte('[')
		for i, seg := range full {
			if i > 0 {
				buf.WriteByte('.')
			}
			buf.WriteString(tomlKey(seg))
		}
		buf.WriteString("]\n")
		if err := encodeTOMLTable(buf, v.(*cfgtree.Map), full); err != nil {
			return err
		}
	}
	return nil
}

func encodeTOMLValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return tomlString(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return tomlFloat(t), nil
	case []any:
		parts := make([]string, 0, len(t))
		for _, el := range t {
			s, err := encodeTOMLValue(el)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case *cfgtree.Map:
		// inline table; reached only for mappings inside arrays
		parts := make([]string, 0, t.Len())
		var werr error
		t.Range(func(k string, vv any) bool {
			s, err := encodeTOMLValue(vv)
			if err != nil {
				werr = err
				return false
			}
			parts = append(parts, tomlKey(k)+" = "+s)
			return true
		})
		if werr != nil {
			return "", werr
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	case nil:
		return "", fmt.Errorf("toml: cannot encode null")
	}
	return "", fmt.Errorf("toml: cannot encode %T", v)
}

func tomlFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// tomlString renders a TOML basic string. JSON string escaping emits only
// escapes TOML basic strings also accept, so the JSON encoder does the work.
func tomlString(s string) string {
	b, err := j.Marshal(s)
	if err != nil {
		return `"` + s + `"`
	}
	return string(b)
}

func tomlKey(k string) string {
	if k == "" {
		return `""`
	}
	for _, r := range k {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return tomlString(k)
		}
	}
	return k
}
