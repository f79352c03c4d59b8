package format

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"

	cfgtree "github.com/reoring/cfgtree"
)

// JSON is the adapter for JSON documents. Parse walks the token stream so
// object keys keep their document order; empty input parses as an empty
// document. Serialize writes two-space indented output with a trailing
// newline.
type JSON struct{}

func (JSON) Parse(data []byte) (*cfgtree.Map, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err == io.EOF {
		return cfgtree.NewMap(), nil
	}
	if err != nil {
		return nil, err
	}
	v, err := decodeJSONFrom(dec, tok)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("json: trailing data after top-level value")
	}
	m, ok := v.(*cfgtree.Map)
	if !ok {
		return nil, fmt.Errorf("json: top-level value is not an object")
	}
	return m, nil
}

func decodeJSONValue(dec *j.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeJSONFrom(dec, tok)
}

func decodeJSONFrom(dec *j.Decoder, tok j.Token) (any, error) {
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			m := cfgtree.NewMap()
			for dec.More() {
				ktok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := ktok.(string)
				if !ok {
					return nil, fmt.Errorf("json: object key is not a string")
				}
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return m, nil
		case '[':
			out := []any{}
			for dec.More() {
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return out, nil
		}
		return nil, fmt.Errorf("json: unexpected delimiter %v", v)
	case string:
		return v, nil
	case bool:
		return v, nil
	case j.Number:
		if i, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return nil, fmt.Errorf("json: bad number %q", v.String())
		}
		return f, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("json: unexpected token %v", tok)
}

func (JSON) Serialize(doc *cfgtree.Map) ([]byte, error) {
	if doc == nil {
		doc = cfgtree.NewMap()
	}
	var buf bytes.Buffer
	if err := encodeJSONValue(&buf, doc, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeJSONValue(buf *bytes.Buffer, v any, depth int) error {
	switch t := v.(type) {
	case *cfgtree.Map:
		if t.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		i := 0
		var werr error
		t.Range(func(k string, vv any) bool {
			if i > 0 {
				buf.WriteString(",\n")
			}
			i++
			writeIndent(buf, depth+1)
			kb, err := j.Marshal(k)
			if err != nil {
				werr = err
				return false
			}
			buf.Write(kb)
			buf.WriteString(": ")
			if err := encodeJSONValue(buf, vv, depth+1); err != nil {
				werr = err
				return false
			}
			return true
		})
		if werr != nil {
			return werr
		}
		buf.WriteByte('\n')
		writeIndent(buf, depth)
		buf.WriteByte('}')
		return nil
	case []any:
		if len(t) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, el := range t {
			if i > 0 {
				buf.WriteString(",\n")
			}
			writeIndent(buf, depth+1)
			if err := encodeJSONValue(buf, el, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte('\n')
		writeIndent(buf, depth)
		buf.WriteByte(']')
		return nil
	case float64:
		s, err := formatFloat(t)
		if err != nil {
			return err
		}
		buf.WriteString(s)
		return nil
	default:
		b, err := j.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
}

func writeIndent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}

// formatFloat renders a float so it reads back as a float: whole values get
// a ".0" suffix, keeping the field's kind stable across save and load.
func formatFloat(f float64) (string, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", fmt.Errorf("json: cannot encode %v", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}
