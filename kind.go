package cfgtree

// Kind identifies the primitive kind of a scalar configuration value.
type Kind int

const (
	KindInvalid Kind = iota // Not a recognized scalar.
	KindString
	KindBool
	KindInt
	KindFloat
)

// String returns the kind name used in issue messages and hints.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "invalid"
	}
}

// Zero returns the canonical zero value for the kind: "", false, int64(0), or
// float64(0). Bare type markers compile to fields defaulting to these.
func (k Kind) Zero() any {
	switch k {
	case KindString:
		return ""
	case KindBool:
		return false
	case KindInt:
		return int64(0)
	case KindFloat:
		return float64(0)
	default:
		return nil
	}
}

// KindOf classifies a canonical tree scalar. Values must already be
// normalized (see NormalizeValue); int64 and float64 are distinct kinds and
// never interchange.
func KindOf(v any) Kind {
	switch v.(type) {
	case string:
		return KindString
	case bool:
		return KindBool
	case int64:
		return KindInt
	case float64:
		return KindFloat
	default:
		return KindInvalid
	}
}
