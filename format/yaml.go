package format

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	cfgtree "github.com/reoring/cfgtree"
)

// YAML is the adapter for YAML documents. It works on yaml.Node trees so
// mapping keys keep their document order, which plain map decoding would
// lose.
type YAML struct{}

const maxYAMLDepth = 10000

func (YAML) Parse(data []byte) (*cfgtree.Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return cfgtree.NewMap(), nil // empty document
	}
	v, err := yamlToValue(doc.Content[0], 0)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return cfgtree.NewMap(), nil // document holding a bare null
	}
	m, ok := v.(*cfgtree.Map)
	if !ok {
		return nil, fmt.Errorf("yaml: top-level value is not a mapping")
	}
	return m, nil
}

func yamlToValue(n *yaml.Node, depth int) (any, error) {
	if depth > maxYAMLDepth {
		return nil, fmt.Errorf("yaml: document nests too deep")
	}
	switch n.Kind {
	case yaml.MappingNode:
		m := cfgtree.NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			kn, vn := n.Content[i], n.Content[i+1]
			if kn.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("yaml: mapping key at line %d is not a scalar", kn.Line)
			}
			v, err := yamlToValue(vn, depth+1)
			if err != nil {
				return nil, err
			}
			m.Set(kn.Value, v)
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, el := range n.Content {
			v, err := yamlToValue(el, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return cfgtree.NormalizeValue(v), nil
	case yaml.AliasNode:
		return yamlToValue(n.Alias, depth+1)
	}
	return nil, fmt.Errorf("yaml: unsupported node kind %d at line %d", n.Kind, n.Line)
}

func (YAML) Serialize(doc *cfgtree.Map) ([]byte, error) {
	if doc == nil {
		doc = cfgtree.NewMap()
	}
	root, err := yamlFromValue(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yamlFromValue(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case *cfgtree.Map:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var werr error
		t.Range(func(k string, vv any) bool {
			vn, err := yamlFromValue(vv)
			if err != nil {
				werr = err
				return false
			}
			kn := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
			n.Content = append(n.Content, kn, vn)
			return true
		})
		if werr != nil {
			return nil, werr
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, el := range t {
			en, err := yamlFromValue(el)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, en)
		}
		return n, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}, nil
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(t, 10)}, nil
	case float64:
		return yamlFloatNode(t), nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	return nil, fmt.Errorf("yaml: cannot encode %T", v)
}

func yamlFloatNode(f float64) *yaml.Node {
	var s string
	switch {
	case math.IsInf(f, 1):
		s = ".inf"
	case math.IsInf(f, -1):
		s = "-.inf"
	case math.IsNaN(f):
		s = ".nan"
	default:
		s = strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}
}
