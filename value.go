package cfgtree

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// Map is the mapping variant of the generic tree: a string-keyed mapping that
// remembers insertion order. Format adapters produce and consume it so that a
// load/save round trip keeps keys where the document put them; the engine
// builds typed trees in schema declaration order. The zero value is an empty
// mapping ready for use.
type Map struct {
	keys  []string
	items map[string]any
}

// NewMap returns an empty ordered mapping.
func NewMap() *Map {
	return &Map{items: map[string]any{}}
}

// Set inserts or replaces the value for key. A replaced key keeps its
// original position; a new key appends.
func (m *Map) Set(key string, v any) {
	if m.items == nil {
		m.items = map[string]any{}
	}
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = v
}

// Get returns the value for key and whether it is present.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.items[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.items[key]
	return ok
}

// Delete removes key when present.
func (m *Map) Delete(key string) {
	if _, ok := m.items[key]; !ok {
		return
	}
	delete(m.items, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order. The slice is a copy.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key string, v any) bool) {
	for _, k := range m.keys {
		if !fn(k, m.items[k]) {
			return
		}
	}
}

// Clone returns a deep copy.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := NewMap()
	for _, k := range m.keys {
		out.Set(k, CloneValue(m.items[k]))
	}
	return out
}

// Equal reports deep equality including key order.
func (m *Map) Equal(o *Map) bool {
	if m == nil || o == nil {
		return m == nil && o == nil
	}
	if len(m.keys) != len(o.keys) {
		return false
	}
	for i, k := range m.keys {
		if o.keys[i] != k {
			return false
		}
		if !DeepEqual(m.items[k], o.items[k]) {
			return false
		}
	}
	return true
}

// MarshalJSON renders the mapping as a JSON object in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.items[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CloneValue deep-copies a generic tree value.
func CloneValue(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = CloneValue(t[i])
		}
		return out
	default:
		return v
	}
}

// DeepEqual reports deep equality of two generic tree values. Scalars compare
// by value after canonicalization; int64 and float64 never compare equal.
func DeepEqual(a, b any) bool {
	switch av := a.(type) {
	case *Map:
		bv, ok := b.(*Map)
		return ok && av.Equal(bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !DeepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// NormalizeValue converts values produced by foreign decoders into the
// canonical tree shapes: every integer width becomes int64, float32 becomes
// float64, json.Number resolves to int64 or float64, plain maps become *Map
// (keys sorted, since the decoder kept no document order), and sequences are
// normalized element-wise. Canonical values pass through unchanged, as do
// unsigned values above the int64 range, which no scalar kind accepts.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, bool, int64, float64:
		return t
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		if uint64(t) > math.MaxInt64 {
			return t
		}
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		if t > math.MaxInt64 {
			return t
		}
		return int64(t)
	case float32:
		return float64(t)
	case json.Number:
		if i, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(t.String(), 64); err == nil {
			return f
		}
		return t.String()
	case *Map:
		out := NewMap()
		t.Range(func(k string, vv any) bool {
			out.Set(k, NormalizeValue(vv))
			return true
		})
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := NewMap()
		for _, k := range keys {
			out.Set(k, NormalizeValue(t[k]))
		}
		return out
	case map[any]any:
		pairs := make(map[string]any, len(t))
		keys := make([]string, 0, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			pairs[ks] = vv
			keys = append(keys, ks)
		}
		sort.Strings(keys)
		out := NewMap()
		for _, k := range keys {
			out.Set(k, NormalizeValue(pairs[k]))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = NormalizeValue(t[i])
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = NormalizeValue(t[i])
		}
		return out
	default:
		return t
	}
}
